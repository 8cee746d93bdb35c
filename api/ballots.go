package api

import (
	"net/http"

	"github.com/amarvote/evoting/ballot"
	"github.com/amarvote/evoting/benaloh"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/sanitize"
)

// encryptBallot encrypts a voter's selections and submits the result to the
// election's ballot box. CAST ballots are handed back with every nonce
// stripped; SPOILED ballots keep their nonces on the side so a later
// benaloh-challenge call can audit them.
func (a *API) encryptBallot(w http.ResponseWriter, r *http.Request) {
	var req encryptBallotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m, err := a.store.Manifest(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	ctx, err := a.store.Context(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	box, err := a.store.BallotBox(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}

	pb := &ballot.PlaintextBallot{BallotID: req.BallotID, StyleID: req.StyleID, Contests: req.Contests}
	cb, err := ballot.EncryptBallot(a.params, ctx, m, pb, nil)
	if err != nil {
		writeError(w, electionerr.Wrap(electionerr.KindProofInvalid, err))
		return
	}
	if err := box.Submit(cb, req.Status); err != nil {
		writeError(w, err)
		return
	}

	var status sanitize.Status
	switch req.Status {
	case "CAST":
		status = sanitize.StatusCast
	case "SPOILED":
		status = sanitize.StatusAudited
	default:
		writeError(w, electionerr.New(electionerr.KindManifestInvalid, "api: unknown ballot status %q", req.Status))
		return
	}
	sanitized, err := sanitize.Sanitize(cb, status)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := encryptBallotResponse{BallotHash: cb.Hash.Hex(), Ballot: sanitized.Ballot}
	if len(sanitized.Nonces) > 0 {
		resp.Nonces = make(map[string]string, len(sanitized.Nonces))
		for path, nonce := range sanitized.Nonces {
			resp.Nonces[path.ContestID+"/"+path.SelectionID] = nonce
		}
	}
	httpWriteJSON(w, resp)
}

// tally returns the ballot box's homomorphic tally, closing it first if
// the request asks for a final (rather than a point-in-time) tally.
func (a *API) tally(w http.ResponseWriter, r *http.Request) {
	var req tallyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Close {
		t, err := a.store.CloseElection(req.ElectionID)
		if err != nil {
			writeError(w, err)
			return
		}
		httpWriteJSON(w, tallyResponse{Tally: t})
		return
	}

	box, err := a.store.BallotBox(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpWriteJSON(w, tallyResponse{Tally: box.Snapshot()})
}

// benalohChallenge decrypts every real selection of a submitted ballot
// using its own retained nonces and compares the result to what the voter
// claims they selected.
func (a *API) benalohChallenge(w http.ResponseWriter, r *http.Request) {
	var req benalohChallengeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, err := a.store.Context(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	box, err := a.store.BallotBox(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	cb, err := box.Ciphertext(req.BallotID)
	if err != nil {
		writeError(w, err)
		return
	}

	results, err := benaloh.Challenge(a.params, ctx.JointPublicKey, cb, req.Claimed)
	if err != nil {
		writeError(w, err)
		return
	}
	httpWriteJSON(w, benalohChallengeResponse{Results: results})
}

package api

import (
	"net/http"

	"github.com/amarvote/evoting/decryption"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/elgamal"
)

// combine reconstructs any missing guardians' shares from the supplied
// compensation shares, folds every share into one decryption factor, and
// solves the ciphertext's plaintext exponent against it.
func (a *API) combine(w http.ResponseWriter, r *http.Request) {
	var req combineRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := a.params
	ctx, err := a.store.Context(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	announcements, err := a.store.Announcements(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}

	alpha, err := params.ElementPFromHex(req.AlphaHex)
	if err != nil {
		writeError(w, electionerr.Wrap(electionerr.KindInvalidElement, err))
		return
	}
	beta, err := params.ElementPFromHex(req.BetaHex)
	if err != nil {
		writeError(w, electionerr.Wrap(electionerr.KindInvalidElement, err))
		return
	}

	shares := make([]*decryption.PartialDecryption, len(req.Shares))
	for i, sw := range req.Shares {
		s, err := sw.toDomain(params)
		if err != nil {
			writeError(w, err)
			return
		}
		shares[i] = s
	}
	compensations := make([]*decryption.CompensationShare, len(req.Compensations))
	for i, cw := range req.Compensations {
		c, err := cw.toDomain(params)
		if err != nil {
			writeError(w, err)
			return
		}
		compensations[i] = c
	}

	med := decryption.NewMediator(params, ctx.CryptoExtendedBaseHash, ctx.Quorum, announcements)
	combined, err := med.Combine(alpha, shares, compensations, req.MissingGuardianIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	plaintext, err := decryption.Decrypt(params, &elgamal.Ciphertext{Alpha: alpha, Beta: beta}, combined, req.Bound)
	if err != nil {
		writeError(w, err)
		return
	}

	httpWriteJSON(w, combineResponse{Plaintext: plaintext})
}

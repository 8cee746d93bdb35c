// Package sanitize strips nonces from a ciphertext ballot before
// publication (C12). A CAST ballot's nonces are discarded outright, since
// anyone holding a selection's nonce can open it with decrypt_known_nonce
// and de-anonymize the voter; an AUDITED ballot keeps the same published
// artifact but additionally returns every stripped nonce on a side channel,
// keyed by a NoncePath of contest id and selection id, so an auditor can replay
// the Benaloh challenge.
package sanitize

import "github.com/amarvote/evoting/ballot"

// Status is the disposition under which a ballot is sanitized.
type Status string

const (
	StatusCast    Status = "CAST"
	StatusAudited Status = "AUDITED"
)

// NoncePath identifies where a stripped nonce came from: either the
// ballot-level nonce, a contest-level nonce, or a specific selection.
type NoncePath struct {
	ContestID   string // empty for the ballot-level nonce
	SelectionID string // empty for a contest-level nonce
}

// Result is a sanitized ballot plus, for AUDITED status, every nonce the
// sanitizer removed.
type Result struct {
	Ballot *ballot.CiphertextBallot
	Nonces map[NoncePath]string // hex-encoded nonces; nil unless AUDITED
}

// Sanitize deep-copies b and nils out every nonce field. Ciphertexts,
// proofs, and hashes are copied verbatim, so hashing the result reproduces
// b.Hash exactly (nonces never enter the hash chain). For StatusAudited the
// stripped nonces are also returned on Result.Nonces; for StatusCast they
// are discarded.
func Sanitize(b *ballot.CiphertextBallot, status Status) (*Result, error) {
	if status != StatusCast && status != StatusAudited {
		return nil, errInvalidStatus(status)
	}

	out := &ballot.CiphertextBallot{
		BallotID: b.BallotID,
		StyleID:  b.StyleID,
		Hash:     b.Hash,
	}

	var nonces map[NoncePath]string
	if status == StatusAudited {
		nonces = make(map[NoncePath]string)
		if b.Nonce != nil {
			nonces[NoncePath{}] = b.Nonce.Hex()
		}
	}

	out.Contests = make([]*ballot.CiphertextContest, len(b.Contests))
	for i, cc := range b.Contests {
		sc := &ballot.CiphertextContest{
			ContestID:          cc.ContestID,
			EncryptedAggregate: cc.EncryptedAggregate,
			RangeProof:         cc.RangeProof,
			Hash:               cc.Hash,
		}
		if status == StatusAudited && cc.Nonce != nil {
			nonces[NoncePath{ContestID: cc.ContestID}] = cc.Nonce.Hex()
		}

		sc.Selections = make([]*ballot.CiphertextSelection, len(cc.Selections))
		for j, s := range cc.Selections {
			ss := &ballot.CiphertextSelection{
				SelectionID:   s.SelectionID,
				SequenceOrder: s.SequenceOrder,
				IsPlaceholder: s.IsPlaceholder,
				Ciphertext:    s.Ciphertext,
				Hash:          s.Hash,
				Proof:         s.Proof,
			}
			if status == StatusAudited && s.Nonce != nil {
				nonces[NoncePath{ContestID: cc.ContestID, SelectionID: s.SelectionID}] = s.Nonce.Hex()
			}
			sc.Selections[j] = ss
		}
		out.Contests[i] = sc
	}

	return &Result{Ballot: out, Nonces: nonces}, nil
}

type errInvalidStatus Status

func (e errInvalidStatus) Error() string {
	return "sanitize: invalid status " + string(e)
}

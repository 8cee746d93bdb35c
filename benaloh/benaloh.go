// Package benaloh implements the Benaloh challenge: given a ballot's
// selection nonces, decrypt each selection directly (decrypt_known_nonce)
// and compare the decoded vector against a voter's claimed plaintext
// selections, without needing any guardian's secret key.
package benaloh

import (
	"github.com/amarvote/evoting/ballot"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/elgamal"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/log"
)

// selectionBound is the decode bound for a single 0/1 selection.
const selectionBound = 1

// ContestResult is the decoded outcome of challenging one contest.
type ContestResult struct {
	ContestID string
	Decoded   map[string]uint64 // selectionID -> decoded bit, real selections only
	Match     bool              // decoded reals equal the claimed votes
	Ambiguous bool              // more than one real selection decoded to 1
}

// ChallengeContest decrypts every real (non-placeholder) selection in cc
// using its stored nonce and compares the result against claimed, a map
// from selection id to the voter's claimed vote. If more than one selection
// decrypts to 1, the challenge fails closed: Ambiguous is set and Match is
// false, regardless of what claimed says.
func ChallengeContest(params *group.Params, publicKey *group.ElementP, cc *ballot.CiphertextContest, claimed map[string]int) (*ContestResult, error) {
	decoded := make(map[string]uint64)
	onesSeen := 0

	for _, s := range cc.Selections {
		if s.IsPlaceholder {
			continue
		}
		m, err := elgamal.DecryptKnownNonce(params, s.Ciphertext, s.Nonce, publicKey, selectionBound)
		if err != nil {
			log.Warnw("benaloh: selection failed to decode within bound", "contest", cc.ContestID, "selection", s.SelectionID)
			return nil, electionerr.Wrap(electionerr.KindProofInvalid, err)
		}
		decoded[s.SelectionID] = m
		if m == 1 {
			onesSeen++
		}
	}

	result := &ContestResult{ContestID: cc.ContestID, Decoded: decoded}
	if onesSeen > 1 {
		log.Warnw("benaloh: ambiguous challenge, failing closed", "contest", cc.ContestID, "ones_seen", onesSeen)
		result.Ambiguous = true
		return result, nil
	}

	match := true
	for id, want := range claimed {
		got, ok := decoded[id]
		if !ok || int(got) != want {
			match = false
			break
		}
	}
	for id, got := range decoded {
		if _, ok := claimed[id]; !ok && got != 0 {
			match = false
			break
		}
	}
	result.Match = match
	return result, nil
}

// Challenge decodes every contest in a ciphertext ballot and reports
// whether the decoded selections match claimed, a map from contest id to a
// map from selection id to claimed vote.
func Challenge(params *group.Params, publicKey *group.ElementP, cb *ballot.CiphertextBallot, claimed map[string]map[string]int) (map[string]*ContestResult, error) {
	out := make(map[string]*ContestResult, len(cb.Contests))
	for _, cc := range cb.Contests {
		r, err := ChallengeContest(params, publicKey, cc, claimed[cc.ContestID])
		if err != nil {
			return nil, err
		}
		out[cc.ContestID] = r
	}
	return out, nil
}

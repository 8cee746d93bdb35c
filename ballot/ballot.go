// Package ballot implements per-selection encryption with placeholder
// expansion, per-contest range proofs, and the hash chain binding a ciphertext
// ballot to its election context. Encrypting (and verifying) a batch of
// ballots is embarrassingly parallel and is exposed separately in batch.go
// over a bounded worker pool.
package ballot

import (
	"fmt"
	"math/big"

	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/elgamal"
	"github.com/amarvote/evoting/fshash"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/log"
	"github.com/amarvote/evoting/manifest"
	"github.com/amarvote/evoting/proof"
)

func bigFromInt(i int) *big.Int { return big.NewInt(int64(i)) }

// PlaintextContest is one contest's selections on a voter's filled-out
// ballot, in the same order as the manifest contest's Selections.
type PlaintextContest struct {
	ContestID  string
	Selections []int // vote (0 or 1) per real selection
}

// PlaintextBallot is a voter's filled-out ballot before encryption.
type PlaintextBallot struct {
	BallotID string
	StyleID  string
	Contests []PlaintextContest
}

// CiphertextSelection is one encrypted selection (real or placeholder)
// together with the nonce it was derived from and its 0/1 proof.
type CiphertextSelection struct {
	SelectionID   string
	SequenceOrder int
	IsPlaceholder bool
	Ciphertext    *elgamal.Ciphertext
	Nonce         *group.ElementQ
	Hash          *group.ElementQ
	Proof         *proof.SelectionProof
}

// CiphertextContest is one encrypted contest: every selection (including
// expanded placeholders) plus the homomorphic aggregate and its range proof.
type CiphertextContest struct {
	ContestID          string
	Nonce              *group.ElementQ // contest-level nonce seed, derives every selection nonce
	Selections         []*CiphertextSelection
	EncryptedAggregate *elgamal.Ciphertext
	AggregateNonce     *group.ElementQ
	RangeProof         *proof.ContestRangeProof
	Hash               *group.ElementQ
}

// CiphertextBallot is a fully encrypted ballot: every contest plus the
// ballot-level hash chain and the ballot nonce all selection nonces derive
// from.
type CiphertextBallot struct {
	BallotID string
	StyleID  string
	Contests []*CiphertextContest
	Nonce    *group.ElementQ
	Hash     *group.ElementQ
}

func findContest(m *manifest.Manifest, id string) (*manifest.Contest, error) {
	for i := range m.Contests {
		if m.Contests[i].ID == id {
			return &m.Contests[i], nil
		}
	}
	return nil, electionerr.New(electionerr.KindManifestInvalid, "ballot: unknown contest %q", id)
}

// EncryptBallot encrypts a plaintext ballot against ctx. If ballotNonce is
// nil, a fresh one is sampled; callers that need determinism (tests, E2E
// vectors) may supply one.
func EncryptBallot(params *group.Params, ctx *manifest.Context, m *manifest.Manifest, b *PlaintextBallot, ballotNonce *group.ElementQ) (*CiphertextBallot, error) {
	var err error
	if ballotNonce == nil {
		ballotNonce, err = params.RandomNonzeroQ()
		if err != nil {
			return nil, err
		}
	}

	contests := make([]*CiphertextContest, len(b.Contests))
	contestHashes := make([]any, len(b.Contests))
	for i, pc := range b.Contests {
		mc, err := findContest(m, pc.ContestID)
		if err != nil {
			return nil, err
		}
		cc, err := encryptContest(params, ctx, mc, pc, ballotNonce)
		if err != nil {
			return nil, err
		}
		contests[i] = cc
		contestHashes[i] = cc.Hash
	}

	hash := fshash.H(params, ctx.CryptoExtendedBaseHash, b.BallotID, b.StyleID, contestHashes)

	return &CiphertextBallot{
		BallotID: b.BallotID,
		StyleID:  b.StyleID,
		Contests: contests,
		Nonce:    ballotNonce,
		Hash:     hash,
	}, nil
}

func encryptContest(params *group.Params, ctx *manifest.Context, mc *manifest.Contest, pc PlaintextContest, ballotNonce *group.ElementQ) (*CiphertextContest, error) {
	if len(pc.Selections) != len(mc.Selections) {
		return nil, electionerr.New(electionerr.KindManifestInvalid, "ballot: contest %q expects %d selections, got %d", mc.ID, len(mc.Selections), len(pc.Selections))
	}

	realVotes := 0
	for _, v := range pc.Selections {
		if v != 0 && v != 1 {
			return nil, electionerr.New(electionerr.KindRangeExceeded, "ballot: contest %q selection vote %d not in {0,1}", mc.ID, v)
		}
		realVotes += v
	}
	if realVotes > mc.NumberElected {
		return nil, electionerr.New(electionerr.KindRangeExceeded, "ballot: contest %q selected %d of %d allowed", mc.ID, realVotes, mc.NumberElected)
	}

	contestNonce := fshash.H(params, ctx.CryptoExtendedBaseHash, mc.ID, ballotNonce)

	numPlaceholders := mc.NumberElected
	placeholderVotesOn := mc.NumberElected - realVotes

	totalSelections := len(mc.Selections) + numPlaceholders
	selections := make([]*CiphertextSelection, 0, totalSelections)
	selectionHashes := make([]any, 0, totalSelections)
	aggregate := elgamal.Identity(params)
	aggregateNonce := params.ZeroQ()

	encodeOne := func(selectionID string, sequenceOrder int, vote int, isPlaceholder bool) error {
		nonce := fshash.H(params, contestNonce, sequenceOrder)
		mVote, err := params.NewElementQ(bigFromInt(vote))
		if err != nil {
			return err
		}
		ct := elgamal.Encrypt(params, mVote, nonce, ctx.JointPublicKey)
		sp, err := proof.BuildSelectionProof(params, ctx.CryptoExtendedBaseHash, ctx.JointPublicKey, ct.Alpha, ct.Beta, nonce, vote)
		if err != nil {
			return err
		}
		h := fshash.H(params, ctx.CryptoExtendedBaseHash, selectionID, ct.Alpha, ct.Beta)

		selections = append(selections, &CiphertextSelection{
			SelectionID:   selectionID,
			SequenceOrder: sequenceOrder,
			IsPlaceholder: isPlaceholder,
			Ciphertext:    ct,
			Nonce:         nonce,
			Hash:          h,
			Proof:         sp,
		})
		selectionHashes = append(selectionHashes, h)
		aggregate = elgamal.Add(aggregate, ct)
		aggregateNonce = aggregateNonce.Add(nonce)
		return nil
	}

	for i, sel := range mc.Selections {
		if err := encodeOne(sel.ID, sel.SequenceOrder, pc.Selections[i], false); err != nil {
			return nil, err
		}
	}
	for j := 0; j < numPlaceholders; j++ {
		vote := 0
		if j < placeholderVotesOn {
			vote = 1
		}
		placeholderID := fmt.Sprintf("%s-placeholder-%d", mc.ID, j)
		if err := encodeOne(placeholderID, len(mc.Selections)+j, vote, true); err != nil {
			return nil, err
		}
	}

	rangeProof, err := proof.BuildContestRangeProof(params, ctx.CryptoExtendedBaseHash, ctx.JointPublicKey, aggregate.Alpha, aggregate.Beta, aggregateNonce, mc.NumberElected)
	if err != nil {
		return nil, err
	}

	hash := fshash.H(params, ctx.CryptoExtendedBaseHash, mc.ID, selectionHashes, aggregate.Alpha, aggregate.Beta)

	return &CiphertextContest{
		ContestID:          mc.ID,
		Nonce:              contestNonce,
		Selections:         selections,
		EncryptedAggregate: aggregate,
		AggregateNonce:     aggregateNonce,
		RangeProof:         rangeProof,
		Hash:               hash,
	}, nil
}

// VerifyBallot recomputes every hash and proof in a ciphertext ballot and
// reports whether the ballot is internally consistent.
func VerifyBallot(params *group.Params, ctx *manifest.Context, m *manifest.Manifest, b *CiphertextBallot) bool {
	contestHashes := make([]any, len(b.Contests))
	for i, cc := range b.Contests {
		mc, err := findContest(m, cc.ContestID)
		if err != nil {
			log.Warnw("ballot: verification failed, unknown contest", "ballot", b.BallotID, "contest", cc.ContestID)
			return false
		}
		if !verifyContest(params, ctx, mc, cc) {
			log.Warnw("ballot: contest verification failed", "ballot", b.BallotID, "contest", cc.ContestID)
			return false
		}
		contestHashes[i] = cc.Hash
	}
	hash := fshash.H(params, ctx.CryptoExtendedBaseHash, b.BallotID, b.StyleID, contestHashes)
	ok := hash.Equal(b.Hash)
	if !ok {
		log.Warnw("ballot: ballot hash mismatch", "ballot", b.BallotID)
	}
	return ok
}

func verifyContest(params *group.Params, ctx *manifest.Context, mc *manifest.Contest, cc *CiphertextContest) bool {
	selectionHashes := make([]any, len(cc.Selections))
	aggregate := elgamal.Identity(params)
	for i, s := range cc.Selections {
		if !proof.VerifySelectionProof(params, ctx.CryptoExtendedBaseHash, ctx.JointPublicKey, s.Ciphertext.Alpha, s.Ciphertext.Beta, s.Proof) {
			log.Warnw("ballot: selection proof invalid", "contest", mc.ID, "selection", s.SelectionID)
			return false
		}
		h := fshash.H(params, ctx.CryptoExtendedBaseHash, s.SelectionID, s.Ciphertext.Alpha, s.Ciphertext.Beta)
		if !h.Equal(s.Hash) {
			return false
		}
		selectionHashes[i] = s.Hash
		aggregate = elgamal.Add(aggregate, s.Ciphertext)
	}
	if !aggregate.Alpha.Equal(cc.EncryptedAggregate.Alpha) || !aggregate.Beta.Equal(cc.EncryptedAggregate.Beta) {
		return false
	}
	if !proof.VerifyContestRangeProof(params, ctx.CryptoExtendedBaseHash, ctx.JointPublicKey, cc.EncryptedAggregate.Alpha, cc.EncryptedAggregate.Beta, cc.RangeProof) {
		log.Warnw("ballot: contest range proof invalid", "contest", mc.ID)
		return false
	}
	hash := fshash.H(params, ctx.CryptoExtendedBaseHash, mc.ID, selectionHashes, cc.EncryptedAggregate.Alpha, cc.EncryptedAggregate.Beta)
	return hash.Equal(cc.Hash)
}

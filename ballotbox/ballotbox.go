// Package ballotbox implements the cast/spoil state machine and the
// homomorphic, contest-wise tally accumulation over cast ballots. A
// BallotBox is the per-election mutable collection described by the
// concurrency model: a single mutex serializes every transition and every
// contribution to the running accumulators.
package ballotbox

import (
	"fmt"
	"sync"

	"github.com/amarvote/evoting/ballot"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/elgamal"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/manifest"
)

// Status is a submitted ballot's terminal disposition.
type Status string

const (
	StatusCast    Status = "CAST"
	StatusSpoiled Status = "SPOILED"
)

// Tally is a point-in-time snapshot of the ballot box's homomorphic
// accumulators and the ballot ids that contributed to (or were excluded
// from) it.
type Tally struct {
	Accumulators     map[string]map[string]*elgamal.Ciphertext // contestID -> selectionID -> product
	CastBallotIDs    []string
	SpoiledBallotIDs []string
	Closed           bool
}

// BallotBox holds every submitted ballot for one election, the running
// homomorphic tally over CAST ballots, and the monotone closed flag.
type BallotBox struct {
	params   *group.Params
	manifest *manifest.Manifest

	mu               sync.Mutex
	statuses         map[string]Status
	ciphertexts      map[string]*ballot.CiphertextBallot
	accumulators     map[string]map[string]*elgamal.Ciphertext
	castBallotIDs    []string
	spoiledBallotIDs []string
	closed           bool
}

// New constructs an empty ballot box for the given manifest. Every
// selection a cast ballot could ever touch — the manifest's declared
// selections plus the placeholder selections EncryptBallot appends per
// contest — gets an elgamal.Identity accumulator up front, so a selection
// with zero cast votes still has a well-defined (1,1) ciphertext rather
// than a missing map entry.
func New(params *group.Params, m *manifest.Manifest) *BallotBox {
	accumulators := make(map[string]map[string]*elgamal.Ciphertext, len(m.Contests))
	for _, c := range m.Contests {
		sel := make(map[string]*elgamal.Ciphertext, len(c.Selections)+c.NumberElected)
		for _, s := range c.Selections {
			sel[s.ID] = elgamal.Identity(params)
		}
		for j := 0; j < c.NumberElected; j++ {
			sel[fmt.Sprintf("%s-placeholder-%d", c.ID, j)] = elgamal.Identity(params)
		}
		accumulators[c.ID] = sel
	}
	return &BallotBox{
		params:       params,
		manifest:     m,
		statuses:     make(map[string]Status),
		ciphertexts:  make(map[string]*ballot.CiphertextBallot),
		accumulators: accumulators,
	}
}

// Submit records a ciphertext ballot's disposition. A CAST ballot is folded
// into the running tally atomically with the closed-flag check; a SPOILED
// ballot is retained for later individual decryption but never tallied.
// Each ballot id may be submitted exactly once.
func (bb *BallotBox) Submit(cb *ballot.CiphertextBallot, status Status) error {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if status != StatusCast && status != StatusSpoiled {
		return electionerr.New(electionerr.KindManifestInvalid, "ballotbox: invalid status %q", status)
	}
	if _, exists := bb.statuses[cb.BallotID]; exists {
		return electionerr.New(electionerr.KindStateConflict, "ballotbox: ballot %q already submitted", cb.BallotID)
	}
	if status == StatusCast && bb.closed {
		return electionerr.New(electionerr.KindStateConflict, "ballotbox: tally is closed, cannot cast ballot %q", cb.BallotID)
	}

	bb.statuses[cb.BallotID] = status
	bb.ciphertexts[cb.BallotID] = cb

	switch status {
	case StatusCast:
		bb.castBallotIDs = append(bb.castBallotIDs, cb.BallotID)
		for _, contest := range cb.Contests {
			sel := bb.accumulators[contest.ContestID]
			for _, s := range contest.Selections {
				if sel[s.SelectionID] == nil {
					sel[s.SelectionID] = elgamal.Identity(bb.params)
				}
				sel[s.SelectionID] = elgamal.Add(sel[s.SelectionID], s.Ciphertext)
			}
		}
	case StatusSpoiled:
		bb.spoiledBallotIDs = append(bb.spoiledBallotIDs, cb.BallotID)
	}
	return nil
}

// Status returns a previously submitted ballot's disposition.
func (bb *BallotBox) Status(ballotID string) (Status, error) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	s, ok := bb.statuses[ballotID]
	if !ok {
		return "", electionerr.New(electionerr.KindUnknownGuardian, "ballotbox: unknown ballot %q", ballotID)
	}
	return s, nil
}

// Ciphertext returns a previously submitted ballot's ciphertext (needed to
// decrypt a SPOILED ballot's individual selections).
func (bb *BallotBox) Ciphertext(ballotID string) (*ballot.CiphertextBallot, error) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	cb, ok := bb.ciphertexts[ballotID]
	if !ok {
		return nil, electionerr.New(electionerr.KindUnknownGuardian, "ballotbox: unknown ballot %q", ballotID)
	}
	return cb, nil
}

// Close sets the monotone closed flag, preventing further CAST
// contributions, and returns a snapshot of the tally as it stands.
func (bb *BallotBox) Close() *Tally {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	bb.closed = true
	return bb.snapshotLocked()
}

// Snapshot returns the current tally state without closing the box.
func (bb *BallotBox) Snapshot() *Tally {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	return bb.snapshotLocked()
}

func (bb *BallotBox) snapshotLocked() *Tally {
	accumulators := make(map[string]map[string]*elgamal.Ciphertext, len(bb.accumulators))
	for contestID, sel := range bb.accumulators {
		copySel := make(map[string]*elgamal.Ciphertext, len(sel))
		for id, ct := range sel {
			copySel[id] = ct
		}
		accumulators[contestID] = copySel
	}
	return &Tally{
		Accumulators:     accumulators,
		CastBallotIDs:    append([]string(nil), bb.castBallotIDs...),
		SpoiledBallotIDs: append([]string(nil), bb.spoiledBallotIDs...),
		Closed:           bb.closed,
	}
}

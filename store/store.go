// Package store is the election-keyed state container (A4): per election,
// it holds the published manifest and context, each local guardian's secret
// key share, the ceremony announcements, and the ballot box. It is purely in-memory — there is no
// on-disk backend, matching persistence's place as an explicit non-goal —
// and every access to one election's mutable state goes through that
// election's own lock, so guardians and ballot submissions for different
// elections never contend with each other.
package store

import (
	"sync"

	"github.com/amarvote/evoting/ballotbox"
	"github.com/amarvote/evoting/ceremony"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/manifest"
)

// election is the per-election record. Guardian secret shares live in
// secrets and are dropped (map entry deleted) the instant a caller is done
// with them via WithGuardianSecret, rather than held for the life of the
// election.
type election struct {
	mu            sync.Mutex
	manifest      *manifest.Manifest
	context       *manifest.Context
	box           *ballotbox.BallotBox
	secrets       map[string]*group.ElementQ
	announcements []*ceremony.Announcement
}

// Store holds every election this process knows about, keyed by election
// id. There is no package-level mutable state outside of it: callers create
// one Store and thread it through.
type Store struct {
	mu        sync.RWMutex
	elections map[string]*election
}

// New returns an empty store.
func New() *Store {
	return &Store{elections: make(map[string]*election)}
}

// CreateElection registers a newly published election. It is an error to
// call this twice for the same id.
func (s *Store) CreateElection(id string, m *manifest.Manifest, ctx *manifest.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.elections[id]; exists {
		return electionerr.New(electionerr.KindStateConflict, "store: election %q already exists", id)
	}
	s.elections[id] = &election{
		manifest: m,
		context:  ctx,
		box:      ballotbox.New(ctx.JointPublicKey.Params(), m),
		secrets:  make(map[string]*group.ElementQ),
	}
	return nil
}

func (s *Store) lookup(id string) (*election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.elections[id]
	if !ok {
		return nil, electionerr.New(electionerr.KindStateConflict, "store: unknown election %q", id)
	}
	return e, nil
}

// Context returns the election's published context. The context is
// read-only after publication, so no lock is needed beyond the lookup.
func (s *Store) Context(electionID string) (*manifest.Context, error) {
	e, err := s.lookup(electionID)
	if err != nil {
		return nil, err
	}
	return e.context, nil
}

// Manifest returns the election's manifest.
func (s *Store) Manifest(electionID string) (*manifest.Manifest, error) {
	e, err := s.lookup(electionID)
	if err != nil {
		return nil, err
	}
	return e.manifest, nil
}

// BallotBox returns the election's ballot box. The box itself enforces its
// own single-writer-per-election locking; this accessor only needs the
// outer lookup.
func (s *Store) BallotBox(electionID string) (*ballotbox.BallotBox, error) {
	e, err := s.lookup(electionID)
	if err != nil {
		return nil, err
	}
	return e.box, nil
}

// SetAnnouncements records every guardian's public round-1 ceremony
// announcement, needed by the decryption mediator to verify partial and
// compensation shares.
func (s *Store) SetAnnouncements(electionID string, announcements []*ceremony.Announcement) error {
	e, err := s.lookup(electionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.announcements = announcements
	return nil
}

// Announcements returns the election's recorded ceremony announcements.
func (s *Store) Announcements(electionID string) ([]*ceremony.Announcement, error) {
	e, err := s.lookup(electionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.announcements, nil
}

// SetGuardianSecret stores a local guardian's secret polynomial evaluation
// (its share of the joint secret key) under the election's lock.
func (s *Store) SetGuardianSecret(electionID, guardianID string, secret *group.ElementQ) error {
	e, err := s.lookup(electionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.secrets[guardianID] = secret
	return nil
}

// WithGuardianSecret acquires guardianID's secret share under the
// election's lock, runs fn with it, and deletes the map entry before
// returning regardless of fn's outcome — the scoped-secret lifetime the
// key-ceremony design requires: a share computation call holds the secret
// for no longer than that one call, however many ciphertexts it covers.
func (s *Store) WithGuardianSecret(electionID, guardianID string, fn func(*group.ElementQ) error) error {
	e, err := s.lookup(electionID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	secret, ok := e.secrets[guardianID]
	if !ok {
		return electionerr.New(electionerr.KindUnknownGuardian, "store: no secret share held for guardian %q in election %q", guardianID, electionID)
	}
	err = fn(secret)
	delete(e.secrets, guardianID)
	return err
}

// CloseElection drops every guardian secret still held for electionID and
// closes its ballot box, returning the final tally.
func (s *Store) CloseElection(electionID string) (*ballotbox.Tally, error) {
	e, err := s.lookup(electionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for id := range e.secrets {
		delete(e.secrets, id)
	}
	return e.box.Close(), nil
}

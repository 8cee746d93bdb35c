// Package ceremony implements the three-round distributed key ceremony: each
// guardian announces a polynomial commitment and an auxiliary key, guardians
// exchange encrypted polynomial-evaluation backups, every backup is opened
// and verified, and only then is the joint public key published. A mediator
// coordinates the rounds without ever holding a guardian's secret
// polynomial or auxiliary secret key.
package ceremony

import (
	"sort"
	"sync"

	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/fshash"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/log"
	"github.com/amarvote/evoting/polynomial"
)

// State is one step of the ceremony's monotone state machine.
type State int

const (
	StateInit State = iota
	StateAnnounced
	StateBackupsShared
	StateBackupsVerified
	StatePublished
)

type guardianRecord struct {
	announcement *Announcement
	ejected      bool
}

type backupKey struct {
	from, to string
}

type backupRecord struct {
	backup   *Backup
	verified bool
	resolved bool // true once either verified or successfully challenged
}

// Result is the ceremony's public output once Publish succeeds.
type Result struct {
	JointPublicKey *group.ElementP
	CommitmentHash *group.ElementQ
	Included       []string // guardian ids whose key share is part of JointPublicKey, sorted
}

// Mediator coordinates an n-guardian, k-threshold ceremony. It is safe for
// concurrent use; every method takes the mediator's lock for its duration.
type Mediator struct {
	params   *group.Params
	baseHash *group.ElementQ
	n, k     int

	mu        sync.Mutex
	state     State
	order     []string
	guardians map[string]*guardianRecord
	backups   map[backupKey]*backupRecord
}

// NewMediator constructs a mediator for n guardians with threshold k.
func NewMediator(params *group.Params, baseHash *group.ElementQ, n, k int) (*Mediator, error) {
	if k < 1 || k > n {
		return nil, electionerr.New(electionerr.KindManifestInvalid, "ceremony: threshold k=%d out of range for n=%d", k, n)
	}
	return &Mediator{
		params:    params,
		baseHash:  baseHash,
		n:         n,
		k:         k,
		state:     StateInit,
		guardians: make(map[string]*guardianRecord, n),
		backups:   make(map[backupKey]*backupRecord),
	}, nil
}

// State returns the ceremony's current state.
func (m *Mediator) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Announce records guardian a's round-1 announcement, verifying its
// coefficient commitments.
func (m *Mediator) Announce(a *Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateInit && m.state != StateAnnounced {
		return electionerr.New(electionerr.KindStateConflict, "ceremony: cannot announce in state %d", m.state)
	}
	if _, exists := m.guardians[a.GuardianID]; exists {
		return electionerr.New(electionerr.KindStateConflict, "ceremony: guardian %s already announced", a.GuardianID)
	}
	if !polynomial.VerifyCommitments(m.params, m.baseHash, a.Commitments) {
		log.Warnw("ceremony: commitment proof invalid", "guardian", a.GuardianID)
		return electionerr.New(electionerr.KindProofInvalid, "ceremony: guardian %s commitment proof invalid", a.GuardianID)
	}

	m.guardians[a.GuardianID] = &guardianRecord{announcement: a}
	m.order = append(m.order, a.GuardianID)
	if len(m.order) == m.n {
		m.state = StateAnnounced
		log.Infow("ceremony: round transition", "state", "announced", "guardians", m.n)
	}
	return nil
}

// Announcement returns a previously recorded announcement.
func (m *Mediator) Announcement(id string) (*Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.guardians[id]
	if !ok {
		return nil, electionerr.New(electionerr.KindUnknownGuardian, "ceremony: unknown guardian %s", id)
	}
	return rec.announcement, nil
}

// SubmitBackup records the round-2 backup guardian `from` sends to `to`.
func (m *Mediator) SubmitBackup(backup *Backup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAnnounced && m.state != StateBackupsShared {
		return electionerr.New(electionerr.KindStateConflict, "ceremony: cannot submit backups in state %d", m.state)
	}
	if _, ok := m.guardians[backup.FromID]; !ok {
		return electionerr.New(electionerr.KindUnknownGuardian, "ceremony: unknown guardian %s", backup.FromID)
	}
	if _, ok := m.guardians[backup.ToID]; !ok {
		return electionerr.New(electionerr.KindUnknownGuardian, "ceremony: unknown guardian %s", backup.ToID)
	}
	m.backups[backupKey{backup.FromID, backup.ToID}] = &backupRecord{backup: backup}
	m.state = StateBackupsShared
	return nil
}

// Backup returns a previously submitted backup, so its recipient can open it.
func (m *Mediator) Backup(from, to string) (*Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.backups[backupKey{from, to}]
	if !ok {
		return nil, electionerr.New(electionerr.KindUnknownGuardian, "ceremony: no backup from %s to %s", from, to)
	}
	return rec.backup, nil
}

// SubmitVerification records round-3's outcome: whether recipient `to`
// successfully verified the backup it received from `from`.
func (m *Mediator) SubmitVerification(from, to string, ok bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.backups[backupKey{from, to}]
	if !exists {
		return electionerr.New(electionerr.KindUnknownGuardian, "ceremony: no backup from %s to %s", from, to)
	}
	if ok {
		rec.verified = true
		rec.resolved = true
	}
	return nil
}

// ChallengeBackup marks a backup as disputed by its recipient; the sender
// must call ResolveChallenge with the opened value to clear itself.
func (m *Mediator) ChallengeBackup(from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, exists := m.backups[backupKey{from, to}]
	if !exists {
		return electionerr.New(electionerr.KindUnknownGuardian, "ceremony: no backup from %s to %s", from, to)
	}
	rec.verified = false
	rec.resolved = false
	return nil
}

// ResolveChallenge lets the sender of a challenged backup clear itself by
// revealing the plaintext value. If the revealed value does not match the
// sender's own commitments, the sender is ejected.
func (m *Mediator) ResolveChallenge(from, to string, revealedValue *group.ElementQ) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	senderRec, ok := m.guardians[from]
	if !ok {
		return electionerr.New(electionerr.KindUnknownGuardian, "ceremony: unknown guardian %s", from)
	}
	recipientRec, ok := m.guardians[to]
	if !ok {
		return electionerr.New(electionerr.KindUnknownGuardian, "ceremony: unknown guardian %s", to)
	}
	backupRec, exists := m.backups[backupKey{from, to}]
	if !exists {
		return electionerr.New(electionerr.KindUnknownGuardian, "ceremony: no backup from %s to %s", from, to)
	}

	if VerifyBackup(m.params, senderRec.announcement.Commitments, recipientRec.announcement.SequenceOrder, revealedValue) {
		backupRec.verified = true
		backupRec.resolved = true
		return nil
	}
	senderRec.ejected = true
	backupRec.resolved = true
	log.Warnw("ceremony: guardian ejected after failed challenge", "guardian", from, "challenger", to)
	return electionerr.New(electionerr.KindProofInvalid, "ceremony: guardian %s failed to clear challenge, ejected", from)
}

// activeGuardians returns the non-ejected guardian ids, in announcement order.
func (m *Mediator) activeGuardians() []string {
	active := make([]string, 0, len(m.order))
	for _, id := range m.order {
		if !m.guardians[id].ejected {
			active = append(active, id)
		}
	}
	return active
}

// Advance checks that every backup among active guardians has resolved
// successfully and, if so, moves the ceremony to BackupsVerified.
func (m *Mediator) Advance() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateBackupsShared {
		return electionerr.New(electionerr.KindStateConflict, "ceremony: cannot advance in state %d", m.state)
	}

	active := m.activeGuardians()
	for _, from := range active {
		for _, to := range active {
			if from == to {
				continue
			}
			rec, ok := m.backups[backupKey{from, to}]
			if !ok || !rec.resolved || !rec.verified {
				log.Warnw("ceremony: backup proof invalid or unresolved", "from", from, "to", to)
				return electionerr.New(electionerr.KindProofInvalid, "ceremony: backup %s->%s not verified", from, to)
			}
		}
	}

	if len(active) < m.k {
		log.Warnw("ceremony: insufficient quorum to advance", "active", len(active), "n", m.n, "k", m.k)
		return electionerr.New(electionerr.KindInsufficientQuorum, "ceremony: only %d of %d guardians remain, need %d", len(active), m.n, m.k)
	}

	m.state = StateBackupsVerified
	log.Infow("ceremony: round transition", "state", "backups_verified", "active", len(active))
	return nil
}

// Publish computes the joint public key and commitment hash from the active
// guardians' constant-term commitments and advances to Published.
func (m *Mediator) Publish() (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateBackupsVerified {
		return nil, electionerr.New(electionerr.KindStateConflict, "ceremony: cannot publish in state %d", m.state)
	}

	active := m.activeGuardians()
	sorted := append([]string(nil), active...)
	sort.Strings(sorted)

	joint := m.params.OneP()
	transcript := make([]any, 0, len(sorted)+1)
	transcript = append(transcript, m.baseHash)
	for _, id := range sorted {
		share := m.guardians[id].announcement.PublicKeyShare()
		joint = joint.Mul(share)
		transcript = append(transcript, share)
	}
	commitmentHash := fshash.H(m.params, transcript...)

	m.state = StatePublished
	log.Infow("ceremony: round transition", "state", "published", "included", len(sorted))
	return &Result{JointPublicKey: joint, CommitmentHash: commitmentHash, Included: sorted}, nil
}

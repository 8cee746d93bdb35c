// Package receipt defines the narrow interface this engine uses to record
// a cast ballot's tracking code against a real transparency log. The log
// itself — a blockchain receipt service — is an out-of-scope external
// collaborator; this package only owns the interface boundary and an
// in-memory test double.
package receipt

import (
	"sync"

	"github.com/amarvote/evoting/electionerr"
)

// ReceiptLogger records that an election produced an artifact (typically a
// cast ballot) with the given tracking code and hash, so a voter can later
// confirm their ballot was included without the log operator learning their
// choice.
type ReceiptLogger interface {
	RecordReceipt(electionID string, trackingCode, artifactHash [32]byte) error
}

// MemoryReceiptLogger is an in-memory ReceiptLogger, useful in tests and as
// a local stand-in before a real transparency log is wired in.
type MemoryReceiptLogger struct {
	mu       sync.Mutex
	receipts map[string]map[[32]byte][32]byte // electionID -> trackingCode -> artifactHash
}

// NewMemoryReceiptLogger returns an empty in-memory logger.
func NewMemoryReceiptLogger() *MemoryReceiptLogger {
	return &MemoryReceiptLogger{receipts: make(map[string]map[[32]byte][32]byte)}
}

// RecordReceipt implements ReceiptLogger. Recording the same tracking code
// twice for the same election is rejected: a tracking code identifies one
// ballot, and a second hash under it would be a silent overwrite.
func (l *MemoryReceiptLogger) RecordReceipt(electionID string, trackingCode, artifactHash [32]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	byCode, ok := l.receipts[electionID]
	if !ok {
		byCode = make(map[[32]byte][32]byte)
		l.receipts[electionID] = byCode
	}
	if _, exists := byCode[trackingCode]; exists {
		return electionerr.New(electionerr.KindStateConflict, "receipt: tracking code already recorded for election %q", electionID)
	}
	byCode[trackingCode] = artifactHash
	return nil
}

// Lookup returns the artifact hash recorded for a tracking code, if any.
func (l *MemoryReceiptLogger) Lookup(electionID string, trackingCode [32]byte) ([32]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	byCode, ok := l.receipts[electionID]
	if !ok {
		return [32]byte{}, false
	}
	h, ok := byCode[trackingCode]
	return h, ok
}

package api

import (
	"github.com/amarvote/evoting/ballot"
	"github.com/amarvote/evoting/ballotbox"
	"github.com/amarvote/evoting/benaloh"
	"github.com/amarvote/evoting/decryption"
	"github.com/amarvote/evoting/manifest"
)

// setupGuardiansRequest drives an in-process, test-mode key ceremony: n
// guardians are created, run through every ceremony round locally, and
// published. There is no multi-party transport here, so this is only ever
// appropriate for integration tests and demos, never a real election.
type setupGuardiansRequest struct {
	ElectionID string             `json:"electionId"`
	N          int                `json:"n"`
	K          int                `json:"k"`
	Manifest   *manifest.Manifest `json:"manifest"`
}

type setupGuardiansResponse struct {
	JointPublicKey string            `json:"jointPublicKey"`
	CommitmentHash string            `json:"commitmentHash"`
	GuardianIDs    []string          `json:"guardianIds"`
	GuardianShares map[string]string `json:"guardianSecretShares"`
}

// encryptBallotRequest is a voter's filled-out ballot plus its disposition.
// Both StatusCast and StatusSpoiled ballots are published with every nonce
// stripped; for StatusSpoiled ballots the stripped nonces are also returned
// in the response's separate nonces map, and the ballot box keeps the full
// ciphertext so a later benaloh-challenge call can audit it.
type encryptBallotRequest struct {
	ElectionID string                    `json:"electionId"`
	BallotID   string                    `json:"ballotId"`
	StyleID    string                    `json:"styleId"`
	Contests   []ballot.PlaintextContest `json:"contests"`
	Status     ballotbox.Status          `json:"status"`
}

type encryptBallotResponse struct {
	BallotHash string                   `json:"ballotHash"`
	Ballot     *ballot.CiphertextBallot `json:"ballot"`
	Nonces     map[string]string        `json:"nonces,omitempty"`
}

type tallyRequest struct {
	ElectionID string `json:"electionId"`
	Close      bool   `json:"close"`
}

type tallyResponse struct {
	Tally *ballotbox.Tally `json:"tally"`
}

// partialDecryptRequest asks one guardian to compute its share of every
// named target ciphertext in a single pass, so the guardian's secret share
// is read from the store exactly once (see store.WithGuardianSecret).
type partialDecryptRequest struct {
	ElectionID string            `json:"electionId"`
	Targets    map[string]string `json:"targets"` // name -> alpha hex
}

type partialDecryptResponse struct {
	GuardianID string                                    `json:"guardianId"`
	Shares     map[string]*decryption.PartialDecryption `json:"shares"`
}

// compensateRequest asks a present guardian to stand in for an absent one
// against every named target. openedValue is the backup value the
// compensator already recovered out of band during the key ceremony
// (ceremony.OpenBackup) for the missing guardian.
type compensateRequest struct {
	ElectionID        string            `json:"electionId"`
	MissingGuardianID string            `json:"missingGuardianId"`
	OpenedValueHex    string            `json:"openedValueHex"`
	Targets           map[string]string `json:"targets"` // name -> alpha hex
}

type compensateResponse struct {
	MissingGuardianID string                                    `json:"missingGuardianId"`
	CompensatorID     string                                    `json:"compensatorId"`
	Shares            map[string]*decryption.CompensationShare `json:"shares"`
}

// equalityWire is the hex-string wire form of a proof.Equality: the domain
// type's group elements have no JSON unmarshaler (decoding one needs a
// *group.Params, which a bare JSON body doesn't carry), so inbound proofs
// travel as plain hex fields and are converted with the election's params
// once the handler has looked them up.
type equalityWire struct {
	CommitmentA string `json:"commitmentA"`
	CommitmentB string `json:"commitmentB"`
	Challenge   string `json:"challenge"`
	Response    string `json:"response"`
}

type partialDecryptionWire struct {
	GuardianID string       `json:"guardianId"`
	Share      string       `json:"share"`
	Proof      equalityWire `json:"proof"`
}

type compensationShareWire struct {
	MissingGuardianID string       `json:"missingGuardianId"`
	CompensatorID     string       `json:"compensatorId"`
	Share             string       `json:"share"`
	Proof             equalityWire `json:"proof"`
}

// combineRequest carries the full ciphertext (alpha, beta) being decrypted:
// alpha is needed to verify and combine shares, beta to solve the final
// discrete log once the combined factor is known.
type combineRequest struct {
	ElectionID         string                  `json:"electionId"`
	Bound              uint64                  `json:"bound"`
	AlphaHex           string                  `json:"alphaHex"`
	BetaHex            string                  `json:"betaHex"`
	Shares             []partialDecryptionWire `json:"shares"`
	Compensations      []compensationShareWire `json:"compensations"`
	MissingGuardianIDs []string                `json:"missingGuardianIds"`
}

type combineResponse struct {
	Plaintext uint64 `json:"plaintext"`
}

type benalohChallengeRequest struct {
	ElectionID string                     `json:"electionId"`
	BallotID   string                     `json:"ballotId"`
	Claimed    map[string]map[string]int `json:"claimed"`
}

type benalohChallengeResponse struct {
	Results map[string]*benaloh.ContestResult `json:"results"`
}

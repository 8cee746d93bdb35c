package ceremony

import (
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/elgamal"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/polynomial"
)

// Guardian is one guardian's local state across the ceremony: its secret
// polynomial, its auxiliary key-agreement keypair, and the identity values
// it was configured with. Only the exported getters leave the guardian's
// process; Polynomial and AuxKeyPair.SecretKey never cross a SubmitX call.
type Guardian struct {
	ID            string
	SequenceOrder *group.ElementQ
	Polynomial    *polynomial.Polynomial
	AuxKeyPair    *elgamal.KeyPair
}

// NewGuardian samples a fresh degree-(k-1) polynomial and auxiliary key
// exchange keypair for a guardian identified by id at sequence order s.
func NewGuardian(params *group.Params, id string, sequenceOrder *group.ElementQ, k int) (*Guardian, error) {
	if sequenceOrder.IsZero() {
		return nil, electionerr.New(electionerr.KindInvalidElement, "ceremony: guardian %s sequence order must be nonzero", id)
	}
	poly, err := polynomial.Generate(params, k, nil)
	if err != nil {
		return nil, err
	}
	aux, err := elgamal.GenerateKey(params)
	if err != nil {
		return nil, err
	}
	return &Guardian{ID: id, SequenceOrder: sequenceOrder, Polynomial: poly, AuxKeyPair: aux}, nil
}

// Announcement is the public data a guardian broadcasts in round 1.
type Announcement struct {
	GuardianID    string
	SequenceOrder *group.ElementQ
	Commitments   []*polynomial.Commitment
	AuxPublicKey  *group.ElementP
}

// Announce builds the guardian's round-1 announcement.
func (g *Guardian) Announce(params *group.Params, baseHash *group.ElementQ) (*Announcement, error) {
	commitments, err := g.Polynomial.Commit(params, baseHash)
	if err != nil {
		return nil, err
	}
	return &Announcement{
		GuardianID:    g.ID,
		SequenceOrder: g.SequenceOrder,
		Commitments:   commitments,
		AuxPublicKey:  g.AuxKeyPair.PublicKey,
	}, nil
}

// PublicKeyShare returns this guardian's contribution K_i,0 = g^{a_i,0} to
// the joint public key.
func (a *Announcement) PublicKeyShare() *group.ElementP {
	return a.Commitments[0].Value
}

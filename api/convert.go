package api

import (
	"github.com/amarvote/evoting/decryption"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/proof"
)

func (w equalityWire) toDomain(params *group.Params) (*proof.Equality, error) {
	a, err := params.ElementPFromHex(w.CommitmentA)
	if err != nil {
		return nil, electionerr.Wrap(electionerr.KindInvalidElement, err)
	}
	b, err := params.ElementPFromHex(w.CommitmentB)
	if err != nil {
		return nil, electionerr.Wrap(electionerr.KindInvalidElement, err)
	}
	challenge, err := params.ElementQFromHex(w.Challenge)
	if err != nil {
		return nil, electionerr.Wrap(electionerr.KindInvalidElement, err)
	}
	response, err := params.ElementQFromHex(w.Response)
	if err != nil {
		return nil, electionerr.Wrap(electionerr.KindInvalidElement, err)
	}
	return &proof.Equality{CommitmentA: a, CommitmentB: b, Challenge: challenge, Response: response}, nil
}

func (w partialDecryptionWire) toDomain(params *group.Params) (*decryption.PartialDecryption, error) {
	share, err := params.ElementPFromHex(w.Share)
	if err != nil {
		return nil, electionerr.Wrap(electionerr.KindInvalidElement, err)
	}
	p, err := w.Proof.toDomain(params)
	if err != nil {
		return nil, err
	}
	return &decryption.PartialDecryption{GuardianID: w.GuardianID, Share: share, Proof: p}, nil
}

func (w compensationShareWire) toDomain(params *group.Params) (*decryption.CompensationShare, error) {
	share, err := params.ElementPFromHex(w.Share)
	if err != nil {
		return nil, electionerr.Wrap(electionerr.KindInvalidElement, err)
	}
	p, err := w.Proof.toDomain(params)
	if err != nil {
		return nil, err
	}
	return &decryption.CompensationShare{
		MissingGuardianID: w.MissingGuardianID,
		CompensatorID:     w.CompensatorID,
		Share:             share,
		Proof:             p,
	}, nil
}

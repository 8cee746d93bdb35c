// Package decryption implements the threshold decryption mediator (C10):
// collecting partial decryption shares from present guardians, compensation
// shares standing in for absent guardians, Lagrange-reconstructing each
// missing share, combining everything into one decryption factor, and
// solving the final discrete log over the tally's known bound.
package decryption

import (
	"sort"

	"github.com/amarvote/evoting/ceremony"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/elgamal"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/log"
	"github.com/amarvote/evoting/polynomial"
	"github.com/amarvote/evoting/proof"
)

// PartialDecryption is guardian i's share of decrypting a ciphertext
// (alpha, beta): M_i = alpha^{P_i(0)}, with a proof that its exponent
// matches the guardian's known public key share g^{P_i(0)}.
type PartialDecryption struct {
	GuardianID string
	Share      *group.ElementP
	Proof      *proof.Equality
}

// ComputeShare builds guardian id's partial decryption of alpha, given its
// secret key share P_i(0) and the corresponding public commitment
// g^{P_i(0)} known to every other party.
func ComputeShare(params *group.Params, baseHash *group.ElementQ, guardianID string, secretKeyShare *group.ElementQ, publicKeyShare, alpha *group.ElementP) (*PartialDecryption, error) {
	m := alpha.Pow(secretKeyShare)
	p, err := proof.BuildEquality(params, baseHash, secretKeyShare, alpha, publicKeyShare, m)
	if err != nil {
		return nil, err
	}
	return &PartialDecryption{GuardianID: guardianID, Share: m, Proof: p}, nil
}

// VerifyShare checks a partial decryption's proof against the guardian's
// known public key share.
func VerifyShare(params *group.Params, baseHash *group.ElementQ, publicKeyShare, alpha *group.ElementP, share *PartialDecryption) bool {
	return proof.VerifyEquality(params, baseHash, alpha, publicKeyShare, share.Share, share.Proof)
}

// CompensationShare is the value a present guardian j computes in place of
// an absent guardian i, from the backup it received from i during the
// ceremony: alpha^{P_i(s_j)}.
type CompensationShare struct {
	MissingGuardianID string
	CompensatorID     string
	Share             *group.ElementP
	Proof             *proof.Equality
}

// ComputeCompensationShare builds compensator j's stand-in share for
// missing guardian i, given the opened backup value P_i(s_j) and the value
// g^{P_i(s_j)} evaluated from i's public coefficient commitments.
func ComputeCompensationShare(params *group.Params, baseHash *group.ElementQ, missingGuardianID, compensatorID string, openedBackupValue *group.ElementQ, evaluatedCommitment, alpha *group.ElementP) (*CompensationShare, error) {
	share := alpha.Pow(openedBackupValue)
	p, err := proof.BuildEquality(params, baseHash, openedBackupValue, alpha, evaluatedCommitment, share)
	if err != nil {
		return nil, err
	}
	return &CompensationShare{MissingGuardianID: missingGuardianID, CompensatorID: compensatorID, Share: share, Proof: p}, nil
}

// VerifyCompensationShare checks a compensation share's proof against the
// missing guardian's public coefficient commitments, evaluated at the
// compensator's sequence order.
func VerifyCompensationShare(params *group.Params, baseHash *group.ElementQ, evaluatedCommitment, alpha *group.ElementP, share *CompensationShare) bool {
	return proof.VerifyEquality(params, baseHash, alpha, evaluatedCommitment, share.Share, share.Proof)
}

// Mediator combines partial and compensation shares into the single
// decryption factor a ciphertext is solved against. It holds only public
// ceremony announcements; it never sees a guardian's secret key share.
type Mediator struct {
	params        *group.Params
	baseHash      *group.ElementQ
	k             int
	announcements map[string]*ceremony.Announcement
}

// NewMediator constructs a decryption mediator for a k-threshold ceremony
// whose public round-1 announcements are given.
func NewMediator(params *group.Params, baseHash *group.ElementQ, k int, announcements []*ceremony.Announcement) *Mediator {
	m := &Mediator{params: params, baseHash: baseHash, k: k, announcements: make(map[string]*ceremony.Announcement, len(announcements))}
	for _, a := range announcements {
		m.announcements[a.GuardianID] = a
	}
	return m
}

// Combine verifies and folds present guardians' partial shares and, for
// every id in missingGuardianIDs, reconstructs the missing share by
// Lagrange-interpolating k verified compensation shares at zero, which
// yields alpha^{P_i(0)}. It returns the combined decryption factor M such that
// m = discrete_log(beta * M^-1).
func (med *Mediator) Combine(alpha *group.ElementP, shares []*PartialDecryption, compensations []*CompensationShare, missingGuardianIDs []string) (*group.ElementP, error) {
	combined := med.params.OneP()

	validPresent := 0
	for _, s := range shares {
		ann, ok := med.announcements[s.GuardianID]
		if !ok {
			return nil, electionerr.New(electionerr.KindUnknownGuardian, "decryption: unknown guardian %q", s.GuardianID)
		}
		if !VerifyShare(med.params, med.baseHash, ann.PublicKeyShare(), alpha, s) {
			log.Warnw("decryption: partial decryption proof invalid", "guardian", s.GuardianID)
			continue
		}
		combined = combined.Mul(s.Share)
		validPresent++
	}
	if validPresent < med.k {
		log.Warnw("decryption: insufficient quorum of present shares", "valid", validPresent, "k", med.k)
		return nil, electionerr.New(electionerr.KindInsufficientQuorum, "decryption: only %d of %d required present shares verified", validPresent, med.k)
	}

	byMissing := make(map[string][]*CompensationShare)
	for _, c := range compensations {
		byMissing[c.MissingGuardianID] = append(byMissing[c.MissingGuardianID], c)
	}

	for _, missingID := range missingGuardianIDs {
		missingAnn, ok := med.announcements[missingID]
		if !ok {
			return nil, electionerr.New(electionerr.KindUnknownGuardian, "decryption: unknown guardian %q", missingID)
		}

		var valid []*CompensationShare
		for _, comp := range byMissing[missingID] {
			compAnn, ok := med.announcements[comp.CompensatorID]
			if !ok {
				continue
			}
			evaluated := polynomial.EvaluateCommitment(med.params, missingAnn.Commitments, compAnn.SequenceOrder)
			if VerifyCompensationShare(med.params, med.baseHash, evaluated, alpha, comp) {
				valid = append(valid, comp)
			} else {
				log.Warnw("decryption: compensation share proof invalid", "missing", missingID, "compensator", comp.CompensatorID)
			}
		}
		if len(valid) < med.k {
			log.Warnw("decryption: insufficient quorum of compensation shares", "missing", missingID, "valid", len(valid), "k", med.k)
			return nil, electionerr.New(electionerr.KindInsufficientQuorum, "decryption: only %d of %d required compensation shares verified for guardian %q", len(valid), med.k, missingID)
		}
		sort.Slice(valid, func(i, j int) bool { return valid[i].CompensatorID < valid[j].CompensatorID })
		valid = valid[:med.k]

		points := make([]*group.ElementQ, len(valid))
		for i, comp := range valid {
			points[i] = med.announcements[comp.CompensatorID].SequenceOrder
		}

		reconstructed := med.params.OneP()
		for i, comp := range valid {
			w, err := polynomial.LagrangeCoefficientAtZero(med.params, points[i], points)
			if err != nil {
				return nil, err
			}
			reconstructed = reconstructed.Mul(comp.Share.Pow(w))
		}
		combined = combined.Mul(reconstructed)
	}

	return combined, nil
}

// Decrypt solves for the plaintext exponent given a ciphertext and an
// already-combined decryption factor.
func Decrypt(params *group.Params, c *elgamal.Ciphertext, combinedFactor *group.ElementP, bound uint64) (uint64, error) {
	return elgamal.DecryptKnownProduct(params, c, combinedFactor, bound)
}

// -----------------------------------------------------------------------------
//  Chaum-Pedersen non-interactive proof of equal discrete logs
//
//  Goal: prove that log_g(A) == log_B(C), i.e. A = g^x and C = B^x for the
//  same secret x, without revealing x. This is the workhorse proof of the
//  decryption mediator (C10): a guardian's share M = alpha^{P(0)} is
//  accompanied by a proof that the same exponent P(0) produced both the
//  public commitment g^{P(0)} and the share itself.
//
//  Prover (BuildEquality), given x with A = g^x and C = B^x:
//    1. Pick r <- Zq.
//    2. a = g^r, b = B^r                          (commitments)
//    3. c = H(baseHash, A, B, C, a, b)             (Fiat-Shamir challenge)
//    4. v = r + c*x mod q                          (response)
//
//  Verifier (VerifyEquality):
//    Recompute c, then check g^v == a * A^c  AND  B^v == b * C^c.
// -----------------------------------------------------------------------------

package proof

import (
	"github.com/amarvote/evoting/fshash"
	"github.com/amarvote/evoting/group"
)

// Equality is a non-interactive proof that log_g(A) == log_B(C).
type Equality struct {
	CommitmentA *group.ElementP // a = g^r
	CommitmentB *group.ElementP // b = B^r
	Challenge   *group.ElementQ
	Response    *group.ElementQ
}

// BuildEquality proves log_g(A) == log_B(C) == x.
func BuildEquality(params *group.Params, baseHash *group.ElementQ, x *group.ElementQ, base, a, c *group.ElementP) (*Equality, error) {
	r, err := params.RandomNonzeroQ()
	if err != nil {
		return nil, err
	}
	commitA := params.GPowP(r)
	commitB := base.Pow(r)
	challenge := fshash.H(params, baseHash, a, base, c, commitA, commitB)
	response := r.Add(challenge.Mul(x))
	return &Equality{CommitmentA: commitA, CommitmentB: commitB, Challenge: challenge, Response: response}, nil
}

// VerifyEquality checks a proof that log_g(a) == log_base(c).
func VerifyEquality(params *group.Params, baseHash *group.ElementQ, base, a, c *group.ElementP, p *Equality) bool {
	challenge := fshash.H(params, baseHash, a, base, c, p.CommitmentA, p.CommitmentB)
	if !challenge.Equal(p.Challenge) {
		return false
	}
	lhs1 := params.GPowP(p.Response)
	rhs1 := p.CommitmentA.Mul(a.Pow(p.Challenge))
	if !lhs1.Equal(rhs1) {
		return false
	}
	lhs2 := base.Pow(p.Response)
	rhs2 := p.CommitmentB.Mul(c.Pow(p.Challenge))
	return lhs2.Equal(rhs2)
}

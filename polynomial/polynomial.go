// Package polynomial implements the degree-(k-1) secret-sharing polynomial
// over Z_q used by the key ceremony (C6): sampling, evaluation, per-
// coefficient commitments with Schnorr proofs, and Lagrange interpolation
// coefficients at zero for reconstructing a polynomial's constant term from
// any sufficiently large set of evaluation points.
package polynomial

import (
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/proof"
)

// Polynomial is a secret polynomial of degree len(Coefficients)-1 over Z_q,
// P(x) = sum_i Coefficients[i] * x^i.
type Polynomial struct {
	Coefficients []*group.ElementQ
}

// Commitment is the public commitment to one coefficient: K_i = g^{a_i}
// with a Schnorr proof of knowledge of a_i.
type Commitment struct {
	Value *group.ElementP
	Proof *proof.Schnorr
}

// Generate samples a degree-(k-1) polynomial. If constantTerm is non-nil it
// is used as the coefficient a_0 (the guardian's share of the joint secret
// key must be exactly the value committed to during keygen); otherwise a_0
// is drawn uniformly at random like every other coefficient.
func Generate(params *group.Params, k int, constantTerm *group.ElementQ) (*Polynomial, error) {
	coeffs := make([]*group.ElementQ, k)
	for i := 0; i < k; i++ {
		if i == 0 && constantTerm != nil {
			coeffs[i] = constantTerm
			continue
		}
		c, err := params.RandomQ()
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}
	return &Polynomial{Coefficients: coeffs}, nil
}

// Degree returns the polynomial's degree.
func (p *Polynomial) Degree() int { return len(p.Coefficients) - 1 }

// Evaluate computes P(x) mod q using Horner's method.
func (p *Polynomial) Evaluate(params *group.Params, x *group.ElementQ) *group.ElementQ {
	result := params.ZeroQ()
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.Coefficients[i])
	}
	return result
}

// Commit builds the public commitments and Schnorr proofs for every
// coefficient, bound to baseHash.
func (p *Polynomial) Commit(params *group.Params, baseHash *group.ElementQ) ([]*Commitment, error) {
	out := make([]*Commitment, len(p.Coefficients))
	for i, a := range p.Coefficients {
		k := params.GPowP(a)
		sp, err := proof.BuildSchnorr(params, baseHash, a, k)
		if err != nil {
			return nil, err
		}
		out[i] = &Commitment{Value: k, Proof: sp}
	}
	return out, nil
}

// VerifyCommitments checks every coefficient commitment's Schnorr proof.
func VerifyCommitments(params *group.Params, baseHash *group.ElementQ, commitments []*Commitment) bool {
	for _, c := range commitments {
		if !proof.VerifySchnorr(params, baseHash, c.Value, c.Proof) {
			return false
		}
	}
	return true
}

// EvaluateCommitment computes g^{P(x)} from the public coefficient
// commitments alone: Product_l K_l^{x^l}, without needing the polynomial's
// secret coefficients. This is what a recipient checks a received share
// P(s_j) against.
func EvaluateCommitment(params *group.Params, commitments []*Commitment, x *group.ElementQ) *group.ElementP {
	result := params.OneP()
	xPow := params.OneQ()
	for _, c := range commitments {
		result = result.Mul(c.Value.Pow(xPow))
		xPow = xPow.Mul(x)
	}
	return result
}

// LagrangeCoefficientAtZero computes w_j = Product_{m in points, m != at}
// m / (m - at) mod q, the weight guardian `at` contributes to reconstructing
// P(0) from the evaluation points `points` (which must include `at`).
func LagrangeCoefficientAtZero(params *group.Params, at *group.ElementQ, points []*group.ElementQ) (*group.ElementQ, error) {
	return LagrangeCoefficient(params, params.ZeroQ(), at, points)
}

// LagrangeCoefficient computes the Lagrange basis weight w_at(x) =
// Product_{m in points, m != at} (x - m) / (at - m) mod q: the weight
// guardian `at`'s evaluation point contributes to reconstructing P(x) from
// the evaluation points `points` (which must include `at`). Reconstructing
// at x=0 recovers the polynomial's constant term (LagrangeCoefficientAtZero),
// which is how the decryption mediator rebuilds a missing guardian's share
// alpha^{P_i(0)} from compensation shares computed at present guardians'
// sequence orders.
func LagrangeCoefficient(params *group.Params, x, at *group.ElementQ, points []*group.ElementQ) (*group.ElementQ, error) {
	numerator := params.OneQ()
	denominator := params.OneQ()
	for _, m := range points {
		if m.Equal(at) {
			continue
		}
		numerator = numerator.Mul(x.Sub(m))
		denominator = denominator.Mul(at.Sub(m))
	}
	denInv, err := denominator.Inv()
	if err != nil {
		return nil, err
	}
	return numerator.Mul(denInv), nil
}

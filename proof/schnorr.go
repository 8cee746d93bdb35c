// -----------------------------------------------------------------------------
//  Schnorr non-interactive proof of knowledge of a discrete log
//
//  Goal: prove that the prover knows x such that h = g^x, without revealing x.
//  Used by the key ceremony (C6) to accompany every polynomial coefficient
//  commitment, so a guardian cannot announce a commitment it does not hold
//  the corresponding secret for.
//
//  Prover (BuildSchnorr):
//    1. Pick r <- Zq.
//    2. u = g^r                         (commitment)
//    3. c = H(baseHash, h, u)           (Fiat-Shamir challenge)
//    4. v = r + c*x mod q               (response)
//
//  Verifier (VerifySchnorr):
//    Recompute c, then check g^v == u * h^c.
// -----------------------------------------------------------------------------

package proof

import (
	"github.com/amarvote/evoting/fshash"
	"github.com/amarvote/evoting/group"
)

// Schnorr is a non-interactive proof of knowledge of x such that H = g^x.
type Schnorr struct {
	Commitment *group.ElementP // u = g^r
	Challenge  *group.ElementQ // c = H(baseHash, h, u)
	Response   *group.ElementQ // v = r + c*x mod q
}

// BuildSchnorr proves knowledge of x for h = g^x, binding the proof to
// baseHash so it cannot be replayed under a different election context.
func BuildSchnorr(params *group.Params, baseHash *group.ElementQ, x *group.ElementQ, h *group.ElementP) (*Schnorr, error) {
	r, err := params.RandomNonzeroQ()
	if err != nil {
		return nil, err
	}
	u := params.GPowP(r)
	c := fshash.H(params, baseHash, h, u)
	v := r.Add(c.Mul(x))
	return &Schnorr{Commitment: u, Challenge: c, Response: v}, nil
}

// VerifySchnorr checks a Schnorr proof that h = g^x for some x the prover
// knows, without learning x.
func VerifySchnorr(params *group.Params, baseHash *group.ElementQ, h *group.ElementP, p *Schnorr) bool {
	c := fshash.H(params, baseHash, h, p.Commitment)
	if !c.Equal(p.Challenge) {
		return false
	}
	lhs := params.GPowP(p.Response)
	rhs := p.Commitment.Mul(h.Pow(p.Challenge))
	return lhs.Equal(rhs)
}

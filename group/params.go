// Package group implements the multiplicative group arithmetic the rest of
// the election engine is built on: a large prime field Z_p with a prime
// order-q subgroup generated by a fixed element g. Every other package that
// needs a scalar or a group element imports this package instead of reaching
// for math/big directly, so that validation (range checks, subgroup
// membership) happens exactly once, at construction time.
package group

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Params bundles one instantiation of the group: the field prime P, the
// subgroup order Q, the generator G of the order-Q subgroup, and the
// cofactor R = (P-1)/Q. Params is immutable once constructed and safe for
// concurrent use.
type Params struct {
	P *big.Int
	Q *big.Int
	G *big.Int
	R *big.Int

	pByteLen int
	qByteLen int
}

// NewParams validates and constructs a Params. It checks that g generates a
// subgroup of order exactly q inside Z_p*; it does not verify that p and q
// are prime, since that is infeasible to check cheaply at construction time
// for production-sized moduli. Callers should only build Params from trusted,
// pre-vetted constants (see the config package) or from values that have
// already passed an out-of-band primality check.
func NewParams(p, q, g *big.Int) (*Params, error) {
	if p == nil || q == nil || g == nil {
		return nil, fmt.Errorf("group: nil parameter")
	}
	if p.Sign() <= 0 || q.Sign() <= 0 {
		return nil, fmt.Errorf("group: p and q must be positive")
	}
	r := new(big.Int).Sub(p, big.NewInt(1))
	if new(big.Int).Mod(r, q).Sign() != 0 {
		return nil, fmt.Errorf("group: q does not divide p-1")
	}
	r.Div(r, q)

	if g.Cmp(big.NewInt(1)) <= 0 || g.Cmp(p) >= 0 {
		return nil, fmt.Errorf("group: generator out of range")
	}
	gq := new(big.Int).Exp(g, q, p)
	if gq.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("group: generator does not have order q")
	}

	return &Params{
		P:        p,
		Q:        q,
		G:        g,
		R:        r,
		pByteLen: (p.BitLen() + 7) / 8,
		qByteLen: (q.BitLen() + 7) / 8,
	}, nil
}

// PByteLen is the fixed byte width used to canonically encode elements of Z_p.
func (params *Params) PByteLen() int { return params.pByteLen }

// QByteLen is the fixed byte width used to canonically encode scalars mod q.
func (params *Params) QByteLen() int { return params.qByteLen }

// Generator returns g as an ElementP.
func (params *Params) Generator() *ElementP {
	return &ElementP{params: params, v: new(big.Int).Set(params.G)}
}

// OneP returns the multiplicative identity of Z_p.
func (params *Params) OneP() *ElementP {
	return &ElementP{params: params, v: big.NewInt(1)}
}

// ZeroQ returns the additive identity mod q.
func (params *Params) ZeroQ() *ElementQ {
	return &ElementQ{params: params, v: big.NewInt(0)}
}

// OneQ returns the multiplicative identity mod q.
func (params *Params) OneQ() *ElementQ {
	return &ElementQ{params: params, v: big.NewInt(1)}
}

// RandomQ draws a uniformly random scalar in [0, q).
func (params *Params) RandomQ() (*ElementQ, error) {
	v, err := rand.Int(rand.Reader, params.Q)
	if err != nil {
		return nil, fmt.Errorf("group: random scalar: %w", err)
	}
	return &ElementQ{params: params, v: v}, nil
}

// RandomNonzeroQ draws a uniformly random scalar in [1, q).
func (params *Params) RandomNonzeroQ() (*ElementQ, error) {
	for {
		v, err := params.RandomQ()
		if err != nil {
			return nil, err
		}
		if !v.IsZero() {
			return v, nil
		}
	}
}

// GPowP computes g^x mod p.
func (params *Params) GPowP(x *ElementQ) *ElementP {
	v := new(big.Int).Exp(params.G, x.v, params.P)
	return &ElementP{params: params, v: v}
}

// GPowInt computes g^x mod p for a raw, non-negative exponent that is not
// necessarily reduced mod q. It is used by the discrete-log table builder,
// which walks a counting exponent 0, 1, 2, ... past q only in pathological
// configurations but must not silently wrap.
func (params *Params) GPowInt(x *big.Int) *ElementP {
	v := new(big.Int).Exp(params.G, x, params.P)
	return &ElementP{params: params, v: v}
}

// Equal reports whether two Params describe the same group.
func (params *Params) Equal(other *Params) bool {
	if params == other {
		return true
	}
	if params == nil || other == nil {
		return false
	}
	return params.P.Cmp(other.P) == 0 && params.Q.Cmp(other.Q) == 0 && params.G.Cmp(other.G) == 0
}

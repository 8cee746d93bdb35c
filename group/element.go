package group

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

// ElementQ is a scalar in [0, q), validated at construction time. The zero
// value is not meaningful; always obtain an ElementQ through a Params
// constructor method.
type ElementQ struct {
	params *Params
	v      *big.Int
}

// NewElementQ validates v and wraps it. v must satisfy 0 <= v < q.
func (params *Params) NewElementQ(v *big.Int) (*ElementQ, error) {
	if v == nil || v.Sign() < 0 || v.Cmp(params.Q) >= 0 {
		return nil, ErrInvalidElement
	}
	return &ElementQ{params: params, v: new(big.Int).Set(v)}, nil
}

// ElementQFromBytes decodes a fixed-width big-endian scalar.
func (params *Params) ElementQFromBytes(b []byte) (*ElementQ, error) {
	return params.NewElementQ(new(big.Int).SetBytes(b))
}

// ElementQFromHex decodes a hex-encoded fixed-width scalar, the only wire
// form accepted for scalars: plain JSON numbers are rejected by callers
// upstream of this function.
func (params *Params) ElementQFromHex(s string) (*ElementQ, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("group: invalid hex scalar: %w", err)
	}
	return params.ElementQFromBytes(b)
}

// Int returns a copy of the underlying value. Callers must not mutate it
// through any alias obtained this way; it is always a fresh copy.
func (x *ElementQ) Int() *big.Int { return new(big.Int).Set(x.v) }

// Params returns the group this element belongs to.
func (x *ElementQ) Params() *Params { return x.params }

// Add returns x + y mod q.
func (x *ElementQ) Add(y *ElementQ) *ElementQ {
	z := new(big.Int).Add(x.v, y.v)
	z.Mod(z, x.params.Q)
	return &ElementQ{params: x.params, v: z}
}

// Sub returns x - y mod q.
func (x *ElementQ) Sub(y *ElementQ) *ElementQ {
	z := new(big.Int).Sub(x.v, y.v)
	z.Mod(z, x.params.Q)
	return &ElementQ{params: x.params, v: z}
}

// Mul returns x * y mod q.
func (x *ElementQ) Mul(y *ElementQ) *ElementQ {
	z := new(big.Int).Mul(x.v, y.v)
	z.Mod(z, x.params.Q)
	return &ElementQ{params: x.params, v: z}
}

// Neg returns -x mod q.
func (x *ElementQ) Neg() *ElementQ {
	z := new(big.Int).Neg(x.v)
	z.Mod(z, x.params.Q)
	return &ElementQ{params: x.params, v: z}
}

// Inv returns the multiplicative inverse of x mod q. x must be nonzero.
func (x *ElementQ) Inv() (*ElementQ, error) {
	if x.v.Sign() == 0 {
		return nil, fmt.Errorf("group: cannot invert zero scalar")
	}
	z := new(big.Int).ModInverse(x.v, x.params.Q)
	if z == nil {
		return nil, fmt.Errorf("group: no modular inverse exists")
	}
	return &ElementQ{params: x.params, v: z}, nil
}

// Equal reports whether x and y hold the same value.
func (x *ElementQ) Equal(y *ElementQ) bool {
	if y == nil {
		return false
	}
	return x.v.Cmp(y.v) == 0
}

// IsZero reports whether x is the additive identity.
func (x *ElementQ) IsZero() bool { return x.v.Sign() == 0 }

// Bytes returns the fixed-width big-endian encoding of x.
func (x *ElementQ) Bytes() []byte { return fixedWidth(x.v, x.params.qByteLen) }

// Hex returns the fixed-width encoding of x as a lowercase hex string.
func (x *ElementQ) Hex() string { return hex.EncodeToString(x.Bytes()) }

// String implements fmt.Stringer.
func (x *ElementQ) String() string { return x.Hex() }

// MarshalJSON encodes x as a JSON hex string.
func (x *ElementQ) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.Hex() + `"`), nil
}

// ElementP is a validated element of the order-q subgroup of Z_p*.
type ElementP struct {
	params *Params
	v      *big.Int
}

// NewElementP validates that v lies in [1, p) and is a member of the
// order-q subgroup (v^q == 1 mod p), rejecting elements of the full Z_p*
// that fall outside the subgroup the rest of the system relies on.
func (params *Params) NewElementP(v *big.Int) (*ElementP, error) {
	if v == nil || v.Sign() <= 0 || v.Cmp(params.P) >= 0 {
		return nil, ErrInvalidElement
	}
	check := new(big.Int).Exp(v, params.Q, params.P)
	if check.Cmp(big.NewInt(1)) != 0 {
		return nil, ErrInvalidElement
	}
	return &ElementP{params: params, v: new(big.Int).Set(v)}, nil
}

// ElementPFromBytes decodes a fixed-width big-endian group element.
func (params *Params) ElementPFromBytes(b []byte) (*ElementP, error) {
	return params.NewElementP(new(big.Int).SetBytes(b))
}

// ElementPFromHex decodes a hex-encoded fixed-width group element.
func (params *Params) ElementPFromHex(s string) (*ElementP, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("group: invalid hex element: %w", err)
	}
	return params.ElementPFromBytes(b)
}

// Int returns a copy of the underlying value.
func (y *ElementP) Int() *big.Int { return new(big.Int).Set(y.v) }

// Params returns the group this element belongs to.
func (y *ElementP) Params() *Params { return y.params }

// Mul returns y * z mod p.
func (y *ElementP) Mul(z *ElementP) *ElementP {
	v := new(big.Int).Mul(y.v, z.v)
	v.Mod(v, y.params.P)
	return &ElementP{params: y.params, v: v}
}

// Pow returns y^x mod p.
func (y *ElementP) Pow(x *ElementQ) *ElementP {
	v := new(big.Int).Exp(y.v, x.v, y.params.P)
	return &ElementP{params: y.params, v: v}
}

// Inv returns the multiplicative inverse of y mod p.
func (y *ElementP) Inv() *ElementP {
	v := new(big.Int).ModInverse(y.v, y.params.P)
	return &ElementP{params: y.params, v: v}
}

// Equal reports whether y and z hold the same value.
func (y *ElementP) Equal(z *ElementP) bool {
	if z == nil {
		return false
	}
	return y.v.Cmp(z.v) == 0
}

// Bytes returns the fixed-width big-endian encoding of y.
func (y *ElementP) Bytes() []byte { return fixedWidth(y.v, y.params.pByteLen) }

// Hex returns the fixed-width encoding of y as a lowercase hex string.
func (y *ElementP) Hex() string { return hex.EncodeToString(y.Bytes()) }

// String implements fmt.Stringer.
func (y *ElementP) String() string { return y.Hex() }

// MarshalJSON encodes y as a JSON hex string.
func (y *ElementP) MarshalJSON() ([]byte, error) {
	return []byte(`"` + y.Hex() + `"`), nil
}

func fixedWidth(v *big.Int, width int) []byte {
	b := v.Bytes()
	if len(b) > width {
		// Should never happen for values already range-checked against p or q.
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	out := make([]byte, width)
	copy(out[width-len(b):], b)
	return out
}

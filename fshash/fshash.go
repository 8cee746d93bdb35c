// Package fshash implements the Fiat-Shamir transform's challenge hash: the
// single function every NIZK proof in package proof, and the key ceremony
// and decryption mediators, call to turn an interactive Sigma-protocol
// challenge into a non-interactive one. One H function, called with the
// full transcript of what a verifier would otherwise have needed to see
// first, is what makes every proof in this system non-interactive and
// replay-bound to its inputs.
package fshash

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/amarvote/evoting/group"
)

// domainSeparator is prepended to every transcript before hashing, so that
// a challenge hash can never collide with a manifest or ballot content hash
// produced by package serialize, even if the same bytes happened to appear
// in both.
const domainSeparator byte = 0x42

// H canonicalizes args and returns SHA-256(domainSeparator || canonical
// transcript) reduced modulo q. Supported argument types: *group.ElementP,
// *group.ElementQ, int/uint64, []byte, string, nil (encoded as the four
// bytes "null"), and []any, whose elements are canonicalized individually
// and joined with a '|' separator byte. A *group.ElementP/Q argument is
// encoded at its group's fixed byte width; a number is encoded as 8
// big-endian bytes with no length prefix (its width is already fixed); a
// plain []byte or string is length-prefixed so that two different argument
// lists can never canonicalize to the same bytes by accident of
// concatenation.
func H(params *group.Params, args ...any) *group.ElementQ {
	var buf []byte
	buf = append(buf, domainSeparator)
	for _, a := range args {
		buf = append(buf, canonicalize(a)...)
	}
	digest := sha256.Sum256(buf)
	i := new(big.Int).SetBytes(digest[:])
	i.Mod(i, params.Q)
	// i is already reduced mod q so NewElementQ cannot fail.
	q, err := params.NewElementQ(i)
	if err != nil {
		panic("fshash: reduced digest out of range, should be unreachable: " + err.Error())
	}
	return q
}

func canonicalize(a any) []byte {
	switch v := a.(type) {
	case nil:
		return []byte("null")
	case *group.ElementP:
		return v.Bytes()
	case *group.ElementQ:
		return v.Bytes()
	case int:
		return fixedWidthUint64(uint64(v))
	case uint64:
		return fixedWidthUint64(v)
	case []byte:
		return lengthPrefixed(v)
	case string:
		return lengthPrefixed([]byte(v))
	case []any:
		out := make([]byte, 0)
		for i, e := range v {
			if i > 0 {
				out = append(out, '|')
			}
			out = append(out, canonicalize(e)...)
		}
		return out
	default:
		panic(fmt.Sprintf("fshash: unsupported argument type %T", a))
	}
}

// fixedWidthUint64 encodes v as 8 big-endian bytes, the "number" category's
// own fixed-width encoding, distinct from lengthPrefixed's byte-string
// category.
func fixedWidthUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func lengthPrefixed(b []byte) []byte {
	out := make([]byte, 0, len(b)+4)
	n := uint32(len(b))
	out = append(out, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	out = append(out, b...)
	return out
}

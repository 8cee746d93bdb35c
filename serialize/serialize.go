// Package serialize implements the canonical byte encoding used everywhere
// an artifact (a manifest, a ballot, a guardian key set) needs a
// deterministic representation: for computing its content hash, for storing
// it, or for including it inside a Fiat-Shamir transcript built by package
// fshash. One encoder means two honest implementations never disagree about
// what a manifest hashes to.
package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"
)

// FixedInt pairs a big.Int with the exact byte width it must encode to.
// Group elements and scalars are always serialized at fixed width (the
// width of p or q respectively); callers get that width from
// group.Params.PByteLen/QByteLen.
type FixedInt struct {
	V     *big.Int
	Width int
}

// Option wraps a value that may be canonically absent. A Some with a nil
// Value is not the same as None.
type Option struct {
	Present bool
	Value   any
}

// Some wraps a present value.
func Some(v any) Option { return Option{Present: true, Value: v} }

// None is the canonically absent value.
var None = Option{Present: false}

// KV is a single key/value pair for canonical mapping encoding. Key is
// itself already-canonical bytes (e.g. a UTF-8 field name); Value is
// recursively encoded.
type KV struct {
	Key   []byte
	Value any
}

// Encode canonically serializes a heterogeneous argument list and
// concatenates the result. Supported element types: nil, FixedInt, []byte,
// string, uint64, int, Option, []any (a length-prefixed sequence), []KV (a
// mapping, sorted by key before encoding).
func Encode(args ...any) []byte {
	var buf bytes.Buffer
	for _, a := range args {
		encodeOne(&buf, a)
	}
	return buf.Bytes()
}

func encodeOne(buf *bytes.Buffer, a any) {
	switch v := a.(type) {
	case nil:
		buf.WriteByte(0x00)
	case FixedInt:
		writeLengthPrefixed(buf, fixedWidthBytes(v.V, v.Width))
	case []byte:
		writeLengthPrefixed(buf, v)
	case string:
		writeLengthPrefixed(buf, []byte(v))
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, v)
		writeLengthPrefixed(buf, b)
	case int:
		encodeOne(buf, uint64(v))
	case Option:
		if !v.Present {
			buf.WriteByte(0x00)
			return
		}
		buf.WriteByte(0x01)
		encodeOne(buf, v.Value)
	case []any:
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(v)))
		buf.Write(lenBuf)
		for _, e := range v {
			encodeOne(buf, e)
		}
	case []KV:
		sorted := make([]KV, len(v))
		copy(sorted, v)
		sort.Slice(sorted, func(i, j int) bool {
			return bytes.Compare(sorted[i].Key, sorted[j].Key) < 0
		})
		lenBuf := make([]byte, 4)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(sorted)))
		buf.Write(lenBuf)
		for _, kv := range sorted {
			writeLengthPrefixed(buf, kv.Key)
			encodeOne(buf, kv.Value)
		}
	default:
		panic(fmt.Sprintf("serialize: unsupported type %T", a))
	}
}

func writeLengthPrefixed(buf *bytes.Buffer, b []byte) {
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(b)))
	buf.Write(lenBuf)
	buf.Write(b)
}

func fixedWidthBytes(v *big.Int, width int) []byte {
	b := v.Bytes()
	if len(b) > width {
		panic("serialize: value exceeds its declared fixed width")
	}
	out := make([]byte, width)
	copy(out[width-len(b):], b)
	return out
}

package serialize_test

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/amarvote/evoting/serialize"
)

func TestEncodeDeterministic(t *testing.T) {
	c := qt.New(t)

	a := serialize.Encode("hello", serialize.FixedInt{V: big.NewInt(42), Width: 4}, nil)
	b := serialize.Encode("hello", serialize.FixedInt{V: big.NewInt(42), Width: 4}, nil)
	c.Assert(a, qt.DeepEquals, b)
}

func TestEncodeDistinguishesStructure(t *testing.T) {
	c := qt.New(t)

	flat := serialize.Encode("ab", "cd")
	nested := serialize.Encode("abcd")
	c.Assert(flat, qt.Not(qt.DeepEquals), nested)
}

func TestEncodeOption(t *testing.T) {
	c := qt.New(t)

	some := serialize.Encode(serialize.Some("x"))
	none := serialize.Encode(serialize.None)
	c.Assert(some, qt.Not(qt.DeepEquals), none)
}

func TestEncodeMappingOrderIndependent(t *testing.T) {
	c := qt.New(t)

	m1 := []serialize.KV{{Key: []byte("b"), Value: "2"}, {Key: []byte("a"), Value: "1"}}
	m2 := []serialize.KV{{Key: []byte("a"), Value: "1"}, {Key: []byte("b"), Value: "2"}}
	c.Assert(serialize.Encode(m1), qt.DeepEquals, serialize.Encode(m2))
}

func TestEncodeSequence(t *testing.T) {
	c := qt.New(t)

	s1 := serialize.Encode([]any{"a", "b", "c"})
	s2 := serialize.Encode([]any{"a", "b"}, "c")
	c.Assert(s1, qt.Not(qt.DeepEquals), s2)
}

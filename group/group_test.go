package group_test

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/amarvote/evoting/config"
	"github.com/amarvote/evoting/group"
)

func testParams(c *qt.C) *group.Params {
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	return profile.Params
}

func TestNewParamsRejectsBadGenerator(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)

	_, err := group.NewParams(params.P, params.Q, big.NewInt(1))
	c.Assert(err, qt.ErrorMatches, ".*generator.*")
}

func TestElementQArithmetic(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)

	a, err := params.NewElementQ(big.NewInt(5))
	c.Assert(err, qt.IsNil)
	b, err := params.NewElementQ(big.NewInt(7))
	c.Assert(err, qt.IsNil)

	sum := a.Add(b)
	want := new(big.Int).Mod(big.NewInt(12), params.Q)
	c.Assert(sum.Int().Cmp(want), qt.Equals, 0)

	diff := a.Sub(b)
	wantDiff := new(big.Int).Mod(big.NewInt(-2), params.Q)
	c.Assert(diff.Int().Cmp(wantDiff), qt.Equals, 0)

	inv, err := b.Inv()
	c.Assert(err, qt.IsNil)
	one := b.Mul(inv)
	c.Assert(one.Equal(params.OneQ()), qt.IsTrue)
}

func TestElementQRejectsOutOfRange(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)

	_, err := params.NewElementQ(new(big.Int).Set(params.Q))
	c.Assert(err, qt.Equals, group.ErrInvalidElement)

	_, err = params.NewElementQ(big.NewInt(-1))
	c.Assert(err, qt.Equals, group.ErrInvalidElement)
}

func TestElementPMembership(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)

	g := params.Generator()
	x, err := params.RandomQ()
	c.Assert(err, qt.IsNil)

	y := params.GPowP(x)
	// g^x is always a member of the order-q subgroup.
	roundTrip, err := params.NewElementP(y.Int())
	c.Assert(err, qt.IsNil)
	c.Assert(roundTrip.Equal(y), qt.IsTrue)

	// The generator itself must validate.
	_, err = params.NewElementP(g.Int())
	c.Assert(err, qt.IsNil)
}

func TestElementPHomomorphism(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)

	x, err := params.RandomQ()
	c.Assert(err, qt.IsNil)
	y, err := params.RandomQ()
	c.Assert(err, qt.IsNil)

	gx := params.GPowP(x)
	gy := params.GPowP(y)
	gxy := params.GPowP(x.Add(y))

	c.Assert(gx.Mul(gy).Equal(gxy), qt.IsTrue)
}

func TestElementPBytesRoundTrip(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)

	x, err := params.RandomQ()
	c.Assert(err, qt.IsNil)
	y := params.GPowP(x)

	back, err := params.ElementPFromBytes(y.Bytes())
	c.Assert(err, qt.IsNil)
	c.Assert(back.Equal(y), qt.IsTrue)
	c.Assert(len(y.Bytes()), qt.Equals, params.PByteLen())

	hexBack, err := params.ElementPFromHex(y.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(hexBack.Equal(y), qt.IsTrue)
}

package dlogcache_test

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/amarvote/evoting/config"
	"github.com/amarvote/evoting/dlogcache"
)

func TestSolveFindsKnownExponent(t *testing.T) {
	c := qt.New(t)
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	params := profile.Params

	for _, m := range []uint64{0, 1, 7, 1000} {
		target := params.GPowInt(new(big.Int).SetUint64(m))
		got, err := dlogcache.Solve(params, 5000, target)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, m)
	}
}

func TestSolveFailsBeyondBound(t *testing.T) {
	c := qt.New(t)
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	params := profile.Params

	target := params.GPowInt(new(big.Int).SetUint64(9999))
	_, err = dlogcache.Solve(params, 100, target)
	c.Assert(err, qt.Equals, dlogcache.ErrNotFound)
}

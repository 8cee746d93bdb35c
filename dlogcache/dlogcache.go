// Package dlogcache solves the discrete logarithm m such that g^m == target
// for m in [0, bound], via baby-step giant-step, and caches the baby-step
// table so that repeatedly decrypting many selections against the same
// bound (a tally combine, a ballot decryption batch) builds the table once
// and reuses it. The table depends only on the group's generator and the
// bound, never on a particular public key or ciphertext — a cache miss
// builds it, a hit just does the giant-step walk.
package dlogcache

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/amarvote/evoting/group"
)

const defaultCacheSize = 64

type tableKey struct {
	g     string
	p     string
	bound uint64
}

type table struct {
	babySteps map[string]uint64
	mSqrt     uint64
}

var cache *lru.Cache[tableKey, *table]

func init() {
	c, err := lru.New[tableKey, *table](defaultCacheSize)
	if err != nil {
		panic("dlogcache: failed to construct LRU cache: " + err.Error())
	}
	cache = c
}

// SetCacheSize replaces the global cache with one of the given capacity,
// discarding any tables already built. Intended to be called once at
// process start from configuration (A3); a size of 0 is rejected.
func SetCacheSize(size int) error {
	c, err := lru.New[tableKey, *table](size)
	if err != nil {
		return err
	}
	cache = c
	return nil
}

// Solve returns the unique m in [0, bound] such that g^m == target in the
// group described by params, or an error if no such m exists within the
// bound.
func Solve(params *group.Params, bound uint64, target *group.ElementP) (uint64, error) {
	t := getOrBuildTable(params, bound)

	mSqrt := t.mSqrt
	// giantStride = g^(-mSqrt)
	giantStride := params.GPowInt(new(big.Int).SetUint64(mSqrt)).Inv()

	giant := target
	for i := uint64(0); i <= mSqrt; i++ {
		if j, ok := t.babySteps[giant.Hex()]; ok {
			m := i*mSqrt + j
			if m <= bound {
				return m, nil
			}
		}
		giant = giant.Mul(giantStride)
	}
	return 0, ErrNotFound
}

func getOrBuildTable(params *group.Params, bound uint64) *table {
	key := tableKey{g: params.G.Text(16), p: params.P.Text(16), bound: bound}
	if t, ok := cache.Get(key); ok {
		return t
	}

	mSqrt := isqrt(bound) + 1
	babySteps := make(map[string]uint64, mSqrt+1)
	step := params.OneP()
	g := params.Generator()
	for j := uint64(0); j <= mSqrt; j++ {
		if _, exists := babySteps[step.Hex()]; !exists {
			babySteps[step.Hex()] = j
		}
		step = step.Mul(g)
	}
	t := &table{babySteps: babySteps, mSqrt: mSqrt}
	cache.Add(key, t)
	return t
}

func isqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

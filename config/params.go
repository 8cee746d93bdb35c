// Package config holds the fixed, baked-in parameters the rest of the
// engine is instantiated against: the group (Z_p, Z_q, g) an election runs
// in, and the sizing knobs for the discrete-log cache and worker pools.
// There is no dynamic parameter negotiation; an election picks one named
// Profile at creation time and every guardian, ballot, and tally in that
// election is fixed to it for its lifetime.
package config

import (
	"fmt"
	"math/big"

	"github.com/amarvote/evoting/group"
)

// Profile name.
type ProfileName string

const (
	// Production is the 2048-bit/256-bit group used for real elections.
	Production ProfileName = "production"
	// Test is a small group used by the test suite so that discrete-log
	// recovery and key-ceremony simulations run in milliseconds instead of
	// minutes; it must never be selected for a real election.
	Test ProfileName = "test"
)

// Profile bundles a group instantiation with the operational limits that
// depend on it: the largest tally value the discrete-log cache must cover,
// and default worker-pool sizing.
type Profile struct {
	Name ProfileName

	Params *group.Params

	// MaxTallyValue bounds the magnitude of message*generator discrete logs
	// the decryption mediator is willing to search for. It must be set to
	// at least the maximum possible per-selection tally (number of cast
	// ballots) for the election.
	MaxTallyValue uint64

	// DefaultWorkers is the default worker-pool width for batch ballot
	// encryption, verification and partial-decryption share computation.
	DefaultWorkers int
}

var profiles = map[ProfileName]*Profile{}

func register(p *Profile) {
	profiles[p.Name] = p
}

// Lookup returns the named profile, or an error if it is unknown.
func Lookup(name ProfileName) (*Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown profile %q", name)
	}
	return p, nil
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("config: invalid hex constant " + s)
	}
	return v
}

func init() {
	prodParams, err := group.NewParams(
		mustHex("b5bd0f9585d7813f6d8c3514f88c2d5a509e45bad5505e5f6509eb28a3f74a4cde1edffd997610789109322a4854bf5960fe664ed6e7c4ad4c7862993c5c1e7c86c7e9a174c00925b136dcd2a8066f25ba3713d310dcbc07a7eb244df8ed264481cd4baea1bcf1bd9e8394b279dcf5b16b4f842de8e9e18efa275978359d7b460818a170d93f1743e50b497fd5256f795717b782b0b742011713176ae2227bd3f5f9d150de7a2cc56eabbbe21cc5d891d23e8b910a2f216e511e195b07c6f6b3d1770b960464011b4734490695a6f6572b7c99b9439ec66bcb8557dafafbde129e9117f383375361d596afd6bc1e417ee9e860ffd34430775e485ea73b52384b"),
		mustHex("ea25413a5a8cc4e44226ef4b95ade6a2b9963db992c6045ad35f301659a9cf1b"),
		mustHex("a3a90e1bfd7d265a46ee544254cb3627c59e65073327d184313baabe747e5c457a42a77c2e3fc05eaebe490f8c9e6a633fa7cc1ddc5a74ab9b9f4d57775b4be8aff45d872a0e76a7240c3a504f64107a3f4a5b08ffcf93e0c95b70a10c956dd92d51632f5635c8ad2f471598b293fa1b51405d604da99522ffb0b2ed20f7665e9aabb5fdf3b78010e8b1c3954d6ab32455ebd3cbc42f81e8af027bc6aaa7952df17d2045b9e562cb2ba7e4f5a815c6f62a6854b8eb8e22347bbb9834dc37cae9c6b54cdd0d6d6c7a71a99c55e1816fdd2f596342e3acab1056bcde9bb50ad90b51e8d57778ee3a0a77946de2e4ecb5aa31a9fb17138b531db5f19705172063a4"),
	)
	if err != nil {
		panic("config: invalid production group parameters: " + err.Error())
	}
	register(&Profile{
		Name:           Production,
		Params:         prodParams,
		MaxTallyValue:  100_000_000,
		DefaultWorkers: 32,
	})

	testParams, err := group.NewParams(
		mustHex("2efb83f"),
		mustHex("1c805"),
		mustHex("1bb9417"),
	)
	if err != nil {
		panic("config: invalid test group parameters: " + err.Error())
	}
	register(&Profile{
		Name:           Test,
		Params:         testParams,
		MaxTallyValue:  50_000,
		DefaultWorkers: 8,
	})
}

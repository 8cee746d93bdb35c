package store_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/amarvote/evoting/config"
	"github.com/amarvote/evoting/elgamal"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/manifest"
	"github.com/amarvote/evoting/store"
)

func testParams(c *qt.C) *group.Params {
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	return profile.Params
}

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		ElectionScopeID:   "t",
		GeopoliticalUnits: []manifest.GeopoliticalUnit{{ID: "d1"}},
		Candidates:        []manifest.Candidate{{ID: "c1"}},
		Contests: []manifest.Contest{
			{ID: "mayor", GeopoliticalUnitID: "d1", NumberElected: 1, VotesAllowed: 1,
				Selections: []manifest.Selection{{ID: "s1", CandidateID: "c1", SequenceOrder: 0}}},
		},
	}
}

func testContext(c *qt.C, params *group.Params, m *manifest.Manifest) *manifest.Context {
	kp, err := elgamal.GenerateKey(params)
	c.Assert(err, qt.IsNil)
	ctx, err := manifest.NewContext(params, m, 1, 1, kp.PublicKey, params.OneQ())
	c.Assert(err, qt.IsNil)
	return ctx
}

func TestCreateElectionRejectsDuplicateID(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)

	s := store.New()
	c.Assert(s.CreateElection("e1", m, ctx), qt.IsNil)
	c.Assert(s.CreateElection("e1", m, ctx), qt.Not(qt.IsNil))
}

func TestContextAndBallotBoxRoundTrip(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)

	s := store.New()
	c.Assert(s.CreateElection("e1", m, ctx), qt.IsNil)

	gotCtx, err := s.Context("e1")
	c.Assert(err, qt.IsNil)
	c.Assert(gotCtx, qt.Equals, ctx)

	box, err := s.BallotBox("e1")
	c.Assert(err, qt.IsNil)
	c.Assert(box, qt.Not(qt.IsNil))
}

func TestUnknownElectionErrors(t *testing.T) {
	c := qt.New(t)
	s := store.New()
	_, err := s.Context("missing")
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestWithGuardianSecretDropsEntryAfterUse(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)

	s := store.New()
	c.Assert(s.CreateElection("e1", m, ctx), qt.IsNil)

	secret, err := params.RandomQ()
	c.Assert(err, qt.IsNil)
	c.Assert(s.SetGuardianSecret("e1", "A", secret), qt.IsNil)

	var seen *group.ElementQ
	err = s.WithGuardianSecret("e1", "A", func(x *group.ElementQ) error {
		seen = x
		return nil
	})
	c.Assert(err, qt.IsNil)
	c.Assert(seen.Equal(secret), qt.IsTrue)

	// The secret is dropped after first use; a second call must fail.
	err = s.WithGuardianSecret("e1", "A", func(*group.ElementQ) error { return nil })
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestCloseElectionClosesBallotBoxAndDropsSecrets(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)

	s := store.New()
	c.Assert(s.CreateElection("e1", m, ctx), qt.IsNil)

	secret, err := params.RandomQ()
	c.Assert(err, qt.IsNil)
	c.Assert(s.SetGuardianSecret("e1", "A", secret), qt.IsNil)

	tally, err := s.CloseElection("e1")
	c.Assert(err, qt.IsNil)
	c.Assert(tally.Closed, qt.IsTrue)

	err = s.WithGuardianSecret("e1", "A", func(*group.ElementQ) error { return nil })
	c.Assert(err, qt.Not(qt.IsNil))
}

package ballotbox_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/amarvote/evoting/ballot"
	"github.com/amarvote/evoting/ballotbox"
	"github.com/amarvote/evoting/config"
	"github.com/amarvote/evoting/elgamal"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/manifest"
)

func testParams(c *qt.C) *group.Params {
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	return profile.Params
}

func testManifest() *manifest.Manifest {
	return &manifest.Manifest{
		ElectionScopeID: "t",
		GeopoliticalUnits: []manifest.GeopoliticalUnit{
			{ID: "d1"},
		},
		Candidates: []manifest.Candidate{{ID: "c1"}, {ID: "c2"}},
		Contests: []manifest.Contest{
			{
				ID:                 "mayor",
				GeopoliticalUnitID: "d1",
				NumberElected:      1,
				VotesAllowed:       1,
				Selections: []manifest.Selection{
					{ID: "s1", CandidateID: "c1", SequenceOrder: 0},
					{ID: "s2", CandidateID: "c2", SequenceOrder: 1},
				},
			},
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

func encryptFor(c *qt.C, params *group.Params, ctx *manifest.Context, m *manifest.Manifest, ballotID string, vote1 int) *ballot.CiphertextBallot {
	pb := &ballot.PlaintextBallot{
		BallotID: ballotID,
		StyleID:  "style-1",
		Contests: []ballot.PlaintextContest{
			{ContestID: "mayor", Selections: []int{vote1, 1 - vote1}},
		},
	}
	cb, err := ballot.EncryptBallot(params, ctx, m, pb, nil)
	c.Assert(err, qt.IsNil)
	return cb
}

func TestSubmitCastAccumulatesTally(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)
	box := ballotbox.New(params, m)

	b1 := encryptFor(c, params, ctx, m, "b1", 1)
	b2 := encryptFor(c, params, ctx, m, "b2", 0)

	c.Assert(box.Submit(b1, ballotbox.StatusCast), qt.IsNil)
	c.Assert(box.Submit(b2, ballotbox.StatusCast), qt.IsNil)

	tally := box.Snapshot()
	c.Assert(len(tally.CastBallotIDs), qt.Equals, 2)
	c.Assert(tally.Accumulators["mayor"]["s1"], qt.Not(qt.IsNil))
}

func TestSubmitRejectsDuplicateBallotID(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)
	box := ballotbox.New(params, m)

	b1 := encryptFor(c, params, ctx, m, "b1", 1)
	c.Assert(box.Submit(b1, ballotbox.StatusCast), qt.IsNil)
	c.Assert(box.Submit(b1, ballotbox.StatusCast), qt.Not(qt.IsNil))
}

func TestSpoiledBallotDoesNotContributeToTally(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)
	box := ballotbox.New(params, m)

	b1 := encryptFor(c, params, ctx, m, "b1", 1)
	c.Assert(box.Submit(b1, ballotbox.StatusSpoiled), qt.IsNil)

	tally := box.Snapshot()
	c.Assert(len(tally.CastBallotIDs), qt.Equals, 0)
	c.Assert(len(tally.SpoiledBallotIDs), qt.Equals, 1)
	identity := elgamal.Identity(params)
	s1 := tally.Accumulators["mayor"]["s1"]
	c.Assert(s1, qt.Not(qt.IsNil))
	c.Assert(s1.Alpha.Equal(identity.Alpha), qt.IsTrue)
	c.Assert(s1.Beta.Equal(identity.Beta), qt.IsTrue)
}

func TestNewSeedsIdentityForEveryDeclaredAndPlaceholderSelection(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	box := ballotbox.New(params, m)

	identity := elgamal.Identity(params)
	tally := box.Snapshot()
	mayor := tally.Accumulators["mayor"]
	for _, id := range []string{"s1", "s2", "mayor-placeholder-0"} {
		ct, ok := mayor[id]
		c.Assert(ok, qt.IsTrue, qt.Commentf("missing accumulator slot for %q", id))
		c.Assert(ct.Alpha.Equal(identity.Alpha), qt.IsTrue)
		c.Assert(ct.Beta.Equal(identity.Beta), qt.IsTrue)
	}
}

func TestCloseRejectsFurtherCastContributions(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)
	box := ballotbox.New(params, m)

	b1 := encryptFor(c, params, ctx, m, "b1", 1)
	c.Assert(box.Submit(b1, ballotbox.StatusCast), qt.IsNil)

	tally := box.Close()
	c.Assert(tally.Closed, qt.IsTrue)

	b2 := encryptFor(c, params, ctx, m, "b2", 0)
	err := box.Submit(b2, ballotbox.StatusCast)
	c.Assert(err, qt.Not(qt.IsNil))
}

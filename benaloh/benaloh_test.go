package benaloh_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/amarvote/evoting/ballot"
	"github.com/amarvote/evoting/benaloh"
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
		ElectionScopeID: "town-2026",
		GeopoliticalUnits: []manifest.GeopoliticalUnit{
			{ID: "d1"},
		},
		Candidates: []manifest.Candidate{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}},
		Contests: []manifest.Contest{
			{
				ID:                 "mayor",
				GeopoliticalUnitID: "d1",
				NumberElected:      1,
				VotesAllowed:       1,
				Selections: []manifest.Selection{
					{ID: "s1", CandidateID: "c1", SequenceOrder: 0},
					{ID: "s2", CandidateID: "c2", SequenceOrder: 1},
					{ID: "s3", CandidateID: "c3", SequenceOrder: 2},
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

func TestChallengeContestMatchesClaimedSelections(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)

	pb := &ballot.PlaintextBallot{
		BallotID: "ballot-1",
		StyleID:  "style-1",
		Contests: []ballot.PlaintextContest{
			{ContestID: "mayor", Selections: []int{0, 1, 0}},
		},
	}
	cb, err := ballot.EncryptBallot(params, ctx, m, pb, nil)
	c.Assert(err, qt.IsNil)

	claimed := map[string]int{"s1": 0, "s2": 1, "s3": 0}
	result, err := benaloh.ChallengeContest(params, ctx.JointPublicKey, cb.Contests[0], claimed)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Ambiguous, qt.IsFalse)
	c.Assert(result.Match, qt.IsTrue)
	c.Assert(result.Decoded["s2"], qt.Equals, uint64(1))
	c.Assert(result.Decoded["s1"], qt.Equals, uint64(0))
}

func TestChallengeContestRejectsMismatchedClaim(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)

	pb := &ballot.PlaintextBallot{
		BallotID: "ballot-1",
		StyleID:  "style-1",
		Contests: []ballot.PlaintextContest{
			{ContestID: "mayor", Selections: []int{0, 1, 0}},
		},
	}
	cb, err := ballot.EncryptBallot(params, ctx, m, pb, nil)
	c.Assert(err, qt.IsNil)

	claimed := map[string]int{"s1": 1, "s2": 0, "s3": 0}
	result, err := benaloh.ChallengeContest(params, ctx.JointPublicKey, cb.Contests[0], claimed)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Ambiguous, qt.IsFalse)
	c.Assert(result.Match, qt.IsFalse)
}

func TestChallengeContestFlagsAmbiguousWhenTwoSelectionsDecodeToOne(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)

	pb := &ballot.PlaintextBallot{
		BallotID: "ballot-1",
		StyleID:  "style-1",
		Contests: []ballot.PlaintextContest{
			{ContestID: "mayor", Selections: []int{1, 0, 0}},
		},
	}
	cb, err := ballot.EncryptBallot(params, ctx, m, pb, nil)
	c.Assert(err, qt.IsNil)

	// Overwrite a second selection's ciphertext and nonce with the first's so
	// it also decrypts to 1 under its stored nonce, simulating a malformed or
	// tampered ballot.
	cb.Contests[0].Selections[1].Ciphertext = cb.Contests[0].Selections[0].Ciphertext
	cb.Contests[0].Selections[1].Nonce = cb.Contests[0].Selections[0].Nonce

	claimed := map[string]int{"s1": 1, "s2": 0, "s3": 0}
	result, err := benaloh.ChallengeContest(params, ctx.JointPublicKey, cb.Contests[0], claimed)
	c.Assert(err, qt.IsNil)
	c.Assert(result.Ambiguous, qt.IsTrue)
	c.Assert(result.Match, qt.IsFalse)
}

func TestChallengeCoversEveryContest(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := testManifest()
	ctx := testContext(c, params, m)

	pb := &ballot.PlaintextBallot{
		BallotID: "ballot-1",
		StyleID:  "style-1",
		Contests: []ballot.PlaintextContest{
			{ContestID: "mayor", Selections: []int{0, 0, 1}},
		},
	}
	cb, err := ballot.EncryptBallot(params, ctx, m, pb, nil)
	c.Assert(err, qt.IsNil)

	claims := map[string]map[string]int{"mayor": {"s1": 0, "s2": 0, "s3": 1}}
	results, err := benaloh.Challenge(params, ctx.JointPublicKey, cb, claims)
	c.Assert(err, qt.IsNil)
	c.Assert(results["mayor"].Match, qt.IsTrue)
}

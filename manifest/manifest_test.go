package manifest_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

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

func sampleManifest() *manifest.Manifest {
	return &manifest.Manifest{
		ElectionScopeID: "town-2026",
		SpecVersion:     "2.1",
		ElectionType:    "general",
		StartDate:       "2026-11-03",
		EndDate:         "2026-11-03",
		GeopoliticalUnits: []manifest.GeopoliticalUnit{
			{ID: "district-1", Name: "District 1", Type: "district"},
		},
		Parties: []manifest.Party{
			{ID: "party-a", Name: "Party A"},
			{ID: "party-b", Name: "Party B"},
		},
		Candidates: []manifest.Candidate{
			{ID: "candidate-1", Name: "Alice", PartyID: "party-a"},
			{ID: "candidate-2", Name: "Bob", PartyID: "party-b"},
		},
		Contests: []manifest.Contest{
			{
				ID:                 "contest-1",
				GeopoliticalUnitID: "district-1",
				Name:               "Mayor",
				VoteVariation:      "one_of_m",
				NumberElected:      1,
				VotesAllowed:       1,
				Selections: []manifest.Selection{
					{ID: "selection-1", CandidateID: "candidate-1", SequenceOrder: 0},
					{ID: "selection-2", CandidateID: "candidate-2", SequenceOrder: 1},
				},
			},
		},
		BallotStyles: []manifest.BallotStyle{
			{ID: "style-1", GeopoliticalUnitIDs: []string{"district-1"}},
		},
	}
}

func TestValidateAcceptsWellFormedManifest(t *testing.T) {
	c := qt.New(t)
	m := sampleManifest()
	c.Assert(m.Validate(), qt.IsNil)
}

func TestValidateRejectsDuplicateSelectionID(t *testing.T) {
	c := qt.New(t)
	m := sampleManifest()
	m.Contests[0].Selections[1].ID = m.Contests[0].Selections[0].ID
	c.Assert(m.Validate(), qt.Not(qt.IsNil))
}

func TestValidateRejectsUnknownCandidate(t *testing.T) {
	c := qt.New(t)
	m := sampleManifest()
	m.Contests[0].Selections[0].CandidateID = "does-not-exist"
	c.Assert(m.Validate(), qt.Not(qt.IsNil))
}

func TestValidateRejectsUnknownUnitInBallotStyle(t *testing.T) {
	c := qt.New(t)
	m := sampleManifest()
	m.BallotStyles[0].GeopoliticalUnitIDs = []string{"nowhere"}
	c.Assert(m.Validate(), qt.Not(qt.IsNil))
}

func TestHashDeterministic(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := sampleManifest()

	h1, err := manifest.Hash(params, m)
	c.Assert(err, qt.IsNil)
	h2, err := manifest.Hash(params, m)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Equal(h2), qt.IsTrue)
}

func TestHashSensitiveToContent(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m1 := sampleManifest()
	m2 := sampleManifest()
	m2.Contests[0].Name = "Governor"

	h1, err := manifest.Hash(params, m1)
	c.Assert(err, qt.IsNil)
	h2, err := manifest.Hash(params, m2)
	c.Assert(err, qt.IsNil)
	c.Assert(h1.Equal(h2), qt.IsFalse)
}

func TestNewContextDerivesExtendedBaseHash(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := sampleManifest()

	kp, err := elgamal.GenerateKey(params)
	c.Assert(err, qt.IsNil)
	commitmentHash := params.OneQ()

	ctx, err := manifest.NewContext(params, m, 3, 2, kp.PublicKey, commitmentHash)
	c.Assert(err, qt.IsNil)
	c.Assert(ctx.CryptoExtendedBaseHash, qt.Not(qt.IsNil))
	c.Assert(ctx.CryptoBaseHash.Equal(ctx.CryptoExtendedBaseHash), qt.IsFalse)
}

func TestNewContextRejectsBadQuorum(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	m := sampleManifest()
	kp, err := elgamal.GenerateKey(params)
	c.Assert(err, qt.IsNil)

	_, err = manifest.NewContext(params, m, 2, 3, kp.PublicKey, params.OneQ())
	c.Assert(err, qt.Not(qt.IsNil))
}

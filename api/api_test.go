package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/amarvote/evoting/api"
	"github.com/amarvote/evoting/config"
	"github.com/amarvote/evoting/manifest"
)

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
		BallotStyles: []manifest.BallotStyle{
			{ID: "standard", GeopoliticalUnitIDs: []string{"d1"}},
		},
	}
}

func do(c *qt.C, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		c.Assert(err, qt.IsNil)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	c := qt.New(t)
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	a, err := api.New(&api.APIConfig{Params: profile.Params, Port: 0})
	c.Assert(err, qt.IsNil)

	rec := do(c, a.Router(), http.MethodGet, "/ping", nil)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
}

func TestFullElectionOverHTTP(t *testing.T) {
	c := qt.New(t)
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	a, err := api.New(&api.APIConfig{Params: profile.Params, Port: 0})
	c.Assert(err, qt.IsNil)
	router := a.Router()

	setupReq := map[string]any{
		"electionId": "e1",
		"n":          3,
		"k":          2,
		"manifest":   testManifest(),
	}
	rec := do(c, router, http.MethodPost, "/guardians", setupReq)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))
	var setupResp struct {
		JointPublicKey string            `json:"jointPublicKey"`
		GuardianIDs    []string          `json:"guardianIds"`
		GuardianShares map[string]string `json:"guardianSecretShares"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &setupResp), qt.IsNil)
	c.Assert(len(setupResp.GuardianIDs), qt.Equals, 3)

	castReq := map[string]any{
		"electionId": "e1",
		"ballotId":   "b1",
		"styleId":    "standard",
		"status":     "CAST",
		"contests": []map[string]any{
			{"contestId": "mayor", "selections": []int{1, 0}},
		},
	}
	rec = do(c, router, http.MethodPost, "/ballots", castReq)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))
	var castResp struct {
		BallotHash string `json:"ballotHash"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &castResp), qt.IsNil)
	c.Assert(castResp.BallotHash, qt.Not(qt.Equals), "")

	spoilReq := map[string]any{
		"electionId": "e1",
		"ballotId":   "b2",
		"styleId":    "standard",
		"status":     "SPOILED",
		"contests": []map[string]any{
			{"contestId": "mayor", "selections": []int{0, 1}},
		},
	}
	rec = do(c, router, http.MethodPost, "/ballots", spoilReq)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)

	challengeReq := map[string]any{
		"electionId": "e1",
		"ballotId":   "b2",
		"claimed": map[string]any{
			"mayor": map[string]int{"s1": 0, "s2": 1},
		},
	}
	rec = do(c, router, http.MethodPost, "/benaloh-challenge", challengeReq)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))
	var challengeResp struct {
		Results map[string]struct {
			Match     bool `json:"Match"`
			Ambiguous bool `json:"Ambiguous"`
		} `json:"results"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &challengeResp), qt.IsNil)
	c.Assert(challengeResp.Results["mayor"].Match, qt.IsTrue)
	c.Assert(challengeResp.Results["mayor"].Ambiguous, qt.IsFalse)

	rec = do(c, router, http.MethodPost, "/tally", map[string]any{"electionId": "e1", "close": true})
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))
	var tallyResp struct {
		Tally struct {
			Accumulators map[string]map[string]struct {
				Alpha string `json:"Alpha"`
				Beta  string `json:"Beta"`
			} `json:"Accumulators"`
		} `json:"tally"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &tallyResp), qt.IsNil)
	alice := tallyResp.Tally.Accumulators["mayor"]["s1"]
	c.Assert(alice.Alpha, qt.Not(qt.Equals), "")

	present := setupResp.GuardianIDs[:2]
	var shares []map[string]any
	for _, gid := range present {
		rec = do(c, router, http.MethodPost, "/guardians/"+gid+"/partial-decrypt", map[string]any{
			"electionId": "e1",
			"targets":    map[string]string{"alice": alice.Alpha},
		})
		c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))
		var resp struct {
			GuardianID string                    `json:"guardianId"`
			Shares     map[string]map[string]any `json:"shares"`
		}
		c.Assert(json.Unmarshal(rec.Body.Bytes(), &resp), qt.IsNil)
		share := resp.Shares["alice"]
		shares = append(shares, map[string]any{
			"guardianId": resp.GuardianID,
			"share":      share["Share"],
			"proof":      share["Proof"],
		})
	}

	combineReq := map[string]any{
		"electionId": "e1",
		"bound":      4,
		"alphaHex":   alice.Alpha,
		"betaHex":    alice.Beta,
		"shares":     shares,
	}
	rec = do(c, router, http.MethodPost, "/combine", combineReq)
	c.Assert(rec.Code, qt.Equals, http.StatusOK, qt.Commentf("body: %s", rec.Body.String()))
	var combineResp struct {
		Plaintext uint64 `json:"plaintext"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &combineResp), qt.IsNil)
	c.Assert(combineResp.Plaintext, qt.Equals, uint64(1))
}

func TestUnknownElectionReturnsErrorEnvelope(t *testing.T) {
	c := qt.New(t)
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	a, err := api.New(&api.APIConfig{Params: profile.Params, Port: 0})
	c.Assert(err, qt.IsNil)

	rec := do(c, a.Router(), http.MethodPost, "/tally", map[string]any{"electionId": "does-not-exist"})
	c.Assert(rec.Code, qt.Not(qt.Equals), http.StatusOK)
	var body struct {
		Kind string `json:"kind"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &body), qt.IsNil)
	c.Assert(body.Kind, qt.Equals, "StateConflict")
}

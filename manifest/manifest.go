// Package manifest implements the election manifest data model and the
// context derivation that binds it to a set of group parameters and a
// published key ceremony result: manifest_hash, crypto_base_hash and
// crypto_extended_base_hash, the last of which is the Fiat-Shamir domain
// every proof in the rest of the engine is built against.
package manifest

import (
	"math/big"

	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/fshash"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/serialize"
)

// GeopoliticalUnit is a jurisdiction a contest or ballot style is scoped to.
type GeopoliticalUnit struct {
	ID   string
	Name string
	Type string
}

// Party is a political party a candidate may be affiliated with.
type Party struct {
	ID   string
	Name string
}

// Candidate is a person or option a selection refers to.
type Candidate struct {
	ID      string
	Name    string
	PartyID string
}

// Selection is one ordered, votable option within a contest.
type Selection struct {
	ID            string
	CandidateID   string
	SequenceOrder int
	IsPlaceholder bool
}

// Contest is a single race on the ballot.
type Contest struct {
	ID                 string
	GeopoliticalUnitID string
	Name               string
	VoteVariation      string
	NumberElected      int
	VotesAllowed       int
	Selections         []Selection
}

// BallotStyle groups the geopolitical units a given ballot variant covers.
type BallotStyle struct {
	ID                  string
	GeopoliticalUnitIDs []string
}

// Manifest is the full, immutable description of an election.
type Manifest struct {
	ElectionScopeID   string
	SpecVersion       string
	ElectionType      string
	StartDate         string
	EndDate           string
	GeopoliticalUnits []GeopoliticalUnit
	Parties           []Party
	Candidates        []Candidate
	Contests          []Contest
	BallotStyles      []BallotStyle
}

// Validate checks the manifest's structural invariants: selection ids
// unique within their contest, every selection's candidate id resolves, and
// every ballot style references existing geopolitical units.
func (m *Manifest) Validate() error {
	units := make(map[string]bool, len(m.GeopoliticalUnits))
	for _, u := range m.GeopoliticalUnits {
		units[u.ID] = true
	}
	candidates := make(map[string]bool, len(m.Candidates))
	for _, c := range m.Candidates {
		candidates[c.ID] = true
	}

	for _, contest := range m.Contests {
		seen := make(map[string]bool, len(contest.Selections))
		for _, s := range contest.Selections {
			if seen[s.ID] {
				return electionerr.New(electionerr.KindManifestInvalid, "manifest: duplicate selection id %q in contest %q", s.ID, contest.ID)
			}
			seen[s.ID] = true
			if !s.IsPlaceholder && !candidates[s.CandidateID] {
				return electionerr.New(electionerr.KindManifestInvalid, "manifest: selection %q references unknown candidate %q", s.ID, s.CandidateID)
			}
		}
		if !units[contest.GeopoliticalUnitID] {
			return electionerr.New(electionerr.KindManifestInvalid, "manifest: contest %q references unknown geopolitical unit %q", contest.ID, contest.GeopoliticalUnitID)
		}
	}
	for _, style := range m.BallotStyles {
		for _, uid := range style.GeopoliticalUnitIDs {
			if !units[uid] {
				return electionerr.New(electionerr.KindManifestInvalid, "manifest: ballot style %q references unknown geopolitical unit %q", style.ID, uid)
			}
		}
	}
	return nil
}

func (s Selection) encode() any {
	return []serialize.KV{
		{Key: []byte("id"), Value: s.ID},
		{Key: []byte("candidate_id"), Value: s.CandidateID},
		{Key: []byte("sequence_order"), Value: s.SequenceOrder},
		{Key: []byte("is_placeholder"), Value: boolInt(s.IsPlaceholder)},
	}
}

func (c Contest) encode() any {
	selections := make([]any, len(c.Selections))
	for i, s := range c.Selections {
		selections[i] = s.encode()
	}
	return []serialize.KV{
		{Key: []byte("id"), Value: c.ID},
		{Key: []byte("geopolitical_unit_id"), Value: c.GeopoliticalUnitID},
		{Key: []byte("name"), Value: c.Name},
		{Key: []byte("vote_variation"), Value: c.VoteVariation},
		{Key: []byte("number_elected"), Value: c.NumberElected},
		{Key: []byte("votes_allowed"), Value: c.VotesAllowed},
		{Key: []byte("selections"), Value: selections},
	}
}

func (u GeopoliticalUnit) encode() any {
	return []serialize.KV{
		{Key: []byte("id"), Value: u.ID},
		{Key: []byte("name"), Value: u.Name},
		{Key: []byte("type"), Value: u.Type},
	}
}

func (p Party) encode() any {
	return []serialize.KV{
		{Key: []byte("id"), Value: p.ID},
		{Key: []byte("name"), Value: p.Name},
	}
}

func (c Candidate) encode() any {
	return []serialize.KV{
		{Key: []byte("id"), Value: c.ID},
		{Key: []byte("name"), Value: c.Name},
		{Key: []byte("party_id"), Value: c.PartyID},
	}
}

func (b BallotStyle) encode() any {
	units := make([]any, len(b.GeopoliticalUnitIDs))
	for i, u := range b.GeopoliticalUnitIDs {
		units[i] = u
	}
	return []serialize.KV{
		{Key: []byte("id"), Value: b.ID},
		{Key: []byte("geopolitical_unit_ids"), Value: units},
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Bytes canonically serializes the manifest for hashing or storage.
func (m *Manifest) Bytes() []byte {
	units := make([]any, len(m.GeopoliticalUnits))
	for i, u := range m.GeopoliticalUnits {
		units[i] = u.encode()
	}
	parties := make([]any, len(m.Parties))
	for i, p := range m.Parties {
		parties[i] = p.encode()
	}
	candidates := make([]any, len(m.Candidates))
	for i, c := range m.Candidates {
		candidates[i] = c.encode()
	}
	contests := make([]any, len(m.Contests))
	for i, c := range m.Contests {
		contests[i] = c.encode()
	}
	styles := make([]any, len(m.BallotStyles))
	for i, s := range m.BallotStyles {
		styles[i] = s.encode()
	}

	fields := []serialize.KV{
		{Key: []byte("election_scope_id"), Value: m.ElectionScopeID},
		{Key: []byte("spec_version"), Value: m.SpecVersion},
		{Key: []byte("election_type"), Value: m.ElectionType},
		{Key: []byte("start_date"), Value: m.StartDate},
		{Key: []byte("end_date"), Value: m.EndDate},
		{Key: []byte("geopolitical_units"), Value: units},
		{Key: []byte("parties"), Value: parties},
		{Key: []byte("candidates"), Value: candidates},
		{Key: []byte("contests"), Value: contests},
		{Key: []byte("ballot_styles"), Value: styles},
	}
	return serialize.Encode(fields)
}

// Hash validates m and computes its manifest_hash.
func Hash(params *group.Params, m *Manifest) (*group.ElementQ, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return fshash.H(params, m.Bytes()), nil
}

// Context binds a manifest to a published key ceremony result: the
// quantities every subsequent encryption, tally and decryption operation is
// computed against.
type Context struct {
	NumberOfGuardians      int
	Quorum                 int
	JointPublicKey         *group.ElementP
	ManifestHash           *group.ElementQ
	CommitmentHash         *group.ElementQ
	CryptoBaseHash         *group.ElementQ
	CryptoExtendedBaseHash *group.ElementQ
}

// NewContext derives crypto_base_hash and crypto_extended_base_hash and
// assembles the election context. n and k must satisfy 1 <= k <= n.
func NewContext(params *group.Params, m *Manifest, n, k int, jointPublicKey *group.ElementP, commitmentHash *group.ElementQ) (*Context, error) {
	if k < 1 || k > n {
		return nil, electionerr.New(electionerr.KindManifestInvalid, "manifest: quorum k=%d out of range for n=%d", k, n)
	}
	manifestHash, err := Hash(params, m)
	if err != nil {
		return nil, err
	}

	cryptoBaseHash := fshash.H(params,
		bigIntFixedWidth(params.P, params.PByteLen()),
		bigIntFixedWidth(params.Q, params.QByteLen()),
		params.Generator(),
		n,
		k,
		manifestHash,
	)
	cryptoExtendedBaseHash := fshash.H(params, cryptoBaseHash, jointPublicKey, commitmentHash)

	return &Context{
		NumberOfGuardians:      n,
		Quorum:                 k,
		JointPublicKey:         jointPublicKey,
		ManifestHash:           manifestHash,
		CommitmentHash:         commitmentHash,
		CryptoBaseHash:         cryptoBaseHash,
		CryptoExtendedBaseHash: cryptoExtendedBaseHash,
	}, nil
}

// bigIntFixedWidth big-endian encodes v into a fixed-width byte slice, for
// hashing the group parameters p and q (which are not themselves group
// elements, so group.ElementP/ElementQ's own Bytes() does not apply).
func bigIntFixedWidth(v *big.Int, width int) []byte {
	b := v.Bytes()
	out := make([]byte, width)
	copy(out[width-len(b):], b)
	return out
}

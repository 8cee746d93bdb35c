// Command demo runs one election end to end against the in-process test
// profile: a key ceremony, a handful of encrypted ballots, a homomorphic
// tally, and a threshold decryption that tolerates one absent guardian.
// It exists to exercise the engine the way an integration test would, but
// printed for a human instead of asserted by a test runner.
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/amarvote/evoting/ballot"
	"github.com/amarvote/evoting/ballotbox"
	"github.com/amarvote/evoting/ceremony"
	"github.com/amarvote/evoting/config"
	"github.com/amarvote/evoting/decryption"
	"github.com/amarvote/evoting/manifest"
	"github.com/amarvote/evoting/polynomial"
)

func sampleManifest() *manifest.Manifest {
	return &manifest.Manifest{
		ElectionScopeID: "demo-election",
		SpecVersion:     "1.0",
		ElectionType:    "general",
		GeopoliticalUnits: []manifest.GeopoliticalUnit{
			{ID: "district-1", Name: "District 1", Type: "district"},
		},
		Parties: []manifest.Party{
			{ID: "party-a", Name: "Party A"},
			{ID: "party-b", Name: "Party B"},
		},
		Candidates: []manifest.Candidate{
			{ID: "alice", Name: "Alice", PartyID: "party-a"},
			{ID: "bob", Name: "Bob", PartyID: "party-b"},
		},
		Contests: []manifest.Contest{
			{
				ID:                 "mayor",
				GeopoliticalUnitID: "district-1",
				Name:               "Mayor",
				VoteVariation:      "one-of-m",
				NumberElected:      1,
				VotesAllowed:       1,
				Selections: []manifest.Selection{
					{ID: "alice-sel", CandidateID: "alice", SequenceOrder: 1},
					{ID: "bob-sel", CandidateID: "bob", SequenceOrder: 2},
					{ID: "mayor-placeholder-1", IsPlaceholder: true, SequenceOrder: 3},
				},
			},
		},
		BallotStyles: []manifest.BallotStyle{
			{ID: "standard", GeopoliticalUnitIDs: []string{"district-1"}},
		},
	}
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "demo:", err)
		os.Exit(1)
	}
}

func main() {
	n := flag.Int("n", 3, "number of guardians")
	k := flag.Int("k", 2, "decryption threshold")
	flag.Parse()

	profile, err := config.Lookup(config.Test)
	must(err)
	params := profile.Params

	m := sampleManifest()
	must(m.Validate())
	baseHash, err := manifest.Hash(params, m)
	must(err)

	fmt.Printf("running a %d-guardian, %d-threshold key ceremony\n", *n, *k)
	guardians := make([]*ceremony.Guardian, *n)
	announcements := make([]*ceremony.Announcement, *n)
	med, err := ceremony.NewMediator(params, baseHash, *n, *k)
	must(err)
	for i := 0; i < *n; i++ {
		seq, err := params.NewElementQ(big.NewInt(int64(i + 1)))
		must(err)
		g, err := ceremony.NewGuardian(params, fmt.Sprintf("guardian-%d", i+1), seq, *k)
		must(err)
		ann, err := g.Announce(params, baseHash)
		must(err)
		guardians[i], announcements[i] = g, ann
		must(med.Announce(ann))
	}
	for _, from := range guardians {
		for _, to := range guardians {
			if from.ID == to.ID {
				continue
			}
			toAnn, err := med.Announcement(to.ID)
			must(err)
			b, err := ceremony.BuildBackup(params, baseHash, from, toAnn)
			must(err)
			must(med.SubmitBackup(b))
		}
	}
	for _, to := range guardians {
		for _, from := range guardians {
			if from.ID == to.ID {
				continue
			}
			b, err := med.Backup(from.ID, to.ID)
			must(err)
			opened := ceremony.OpenBackup(params, baseHash, b, to.AuxKeyPair.SecretKey)
			fromAnn, err := med.Announcement(from.ID)
			must(err)
			ok := ceremony.VerifyBackup(params, fromAnn.Commitments, to.SequenceOrder, opened)
			must(med.SubmitVerification(from.ID, to.ID, ok))
		}
	}
	must(med.Advance())
	result, err := med.Publish()
	must(err)
	fmt.Printf("joint public key: %s\n", result.JointPublicKey.Hex())

	ctx, err := manifest.NewContext(params, m, *n, *k, result.JointPublicKey, result.CommitmentHash)
	must(err)
	box := ballotbox.New(params, m)

	votesForAlice := []int{1, 0, 1, 1}
	for i, vote := range votesForAlice {
		pb := &ballot.PlaintextBallot{
			BallotID: fmt.Sprintf("ballot-%d", i+1),
			StyleID:  "standard",
			Contests: []ballot.PlaintextContest{
				{ContestID: "mayor", Selections: []int{vote, 1 - vote, 0}},
			},
		}
		cb, err := ballot.EncryptBallot(params, ctx, m, pb, nil)
		must(err)
		must(box.Submit(cb, ballotbox.StatusCast))
	}
	fmt.Printf("cast %d ballots\n", len(votesForAlice))

	tally := box.Close()
	aliceTotal := tally.Accumulators["mayor"]["alice-sel"]

	presentCount := *n - 1
	fmt.Printf("decrypting with %d of %d guardians present, 1 absent\n", presentCount, *n)

	var shares []*decryption.PartialDecryption
	for _, g := range guardians[:presentCount] {
		ann, err := med.Announcement(g.ID)
		must(err)
		secret := g.Polynomial.Evaluate(params, params.ZeroQ())
		share, err := decryption.ComputeShare(params, ctx.CryptoExtendedBaseHash, g.ID, secret, ann.PublicKeyShare(), aliceTotal.Alpha)
		must(err)
		shares = append(shares, share)
	}

	missing := guardians[presentCount]
	missingAnn, err := med.Announcement(missing.ID)
	must(err)
	var compShares []*decryption.CompensationShare
	for _, compensator := range guardians[:presentCount] {
		compAnn, err := med.Announcement(compensator.ID)
		must(err)
		backup, err := med.Backup(missing.ID, compensator.ID)
		must(err)
		opened := ceremony.OpenBackup(params, baseHash, backup, compensator.AuxKeyPair.SecretKey)
		evaluated := polynomial.EvaluateCommitment(params, missingAnn.Commitments, compAnn.SequenceOrder)
		compShare, err := decryption.ComputeCompensationShare(params, ctx.CryptoExtendedBaseHash, missing.ID, compensator.ID, opened, evaluated, aliceTotal.Alpha)
		must(err)
		compShares = append(compShares, compShare)
	}

	decMed := decryption.NewMediator(params, ctx.CryptoExtendedBaseHash, *k, announcements)
	combined, err := decMed.Combine(aliceTotal.Alpha, shares, compShares, []string{missing.ID})
	must(err)

	plaintext, err := decryption.Decrypt(params, aliceTotal, combined, profile.MaxTallyValue)
	must(err)
	fmt.Printf("votes for alice: %d (expected %d)\n", plaintext, sum(votesForAlice))
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

package ceremony_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/amarvote/evoting/ceremony"
	"github.com/amarvote/evoting/config"
	"github.com/amarvote/evoting/group"
)

func testParams(c *qt.C) *group.Params {
	profile, err := config.Lookup(config.Test)
	c.Assert(err, qt.IsNil)
	return profile.Params
}

func sequenceOrder(params *group.Params, n int) *group.ElementQ {
	x := params.OneQ()
	for i := 1; i < n; i++ {
		x = x.Add(params.OneQ())
	}
	return x
}

// runCeremony drives a full n-guardian, k-threshold ceremony to completion
// with every guardian honest, and returns the mediator and guardians for
// further inspection.
func runCeremony(c *qt.C, params *group.Params, baseHash *group.ElementQ, n, k int) (*ceremony.Mediator, []*ceremony.Guardian) {
	med, err := ceremony.NewMediator(params, baseHash, n, k)
	c.Assert(err, qt.IsNil)

	guardians := make([]*ceremony.Guardian, n)
	announcements := make([]*ceremony.Announcement, n)
	for i := 0; i < n; i++ {
		id := string(rune('A' + i))
		g, err := ceremony.NewGuardian(params, id, sequenceOrder(params, i+1), k)
		c.Assert(err, qt.IsNil)
		guardians[i] = g

		a, err := g.Announce(params, baseHash)
		c.Assert(err, qt.IsNil)
		announcements[i] = a
	}
	for _, a := range announcements {
		c.Assert(med.Announce(a), qt.IsNil)
	}
	c.Assert(med.State(), qt.Equals, ceremony.StateAnnounced)

	for i, from := range guardians {
		for j := range guardians {
			if i == j {
				continue
			}
			toAnn, err := med.Announcement(guardians[j].ID)
			c.Assert(err, qt.IsNil)
			b, err := ceremony.BuildBackup(params, baseHash, from, toAnn)
			c.Assert(err, qt.IsNil)
			c.Assert(med.SubmitBackup(b), qt.IsNil)
		}
	}

	for i, to := range guardians {
		for j, from := range guardians {
			if i == j {
				continue
			}
			b, err := med.Backup(from.ID, to.ID)
			c.Assert(err, qt.IsNil)
			opened := ceremony.OpenBackup(params, baseHash, b, to.AuxKeyPair.SecretKey)
			fromAnn, err := med.Announcement(from.ID)
			c.Assert(err, qt.IsNil)
			ok := ceremony.VerifyBackup(params, fromAnn.Commitments, to.SequenceOrder, opened)
			c.Assert(med.SubmitVerification(from.ID, to.ID, ok), qt.IsNil)
		}
	}

	c.Assert(med.Advance(), qt.IsNil)
	c.Assert(med.State(), qt.Equals, ceremony.StateBackupsVerified)
	return med, guardians
}

func TestCeremonyHappyPath(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	baseHash := params.OneQ()

	med, guardians := runCeremony(c, params, baseHash, 3, 2)

	result, err := med.Publish()
	c.Assert(err, qt.IsNil)
	c.Assert(med.State(), qt.Equals, ceremony.StatePublished)
	c.Assert(len(result.Included), qt.Equals, 3)

	want := params.OneP()
	for _, g := range guardians {
		a, err := g.Announce(params, baseHash)
		c.Assert(err, qt.IsNil)
		want = want.Mul(a.PublicKeyShare())
	}
	c.Assert(result.JointPublicKey.Equal(want), qt.IsTrue)
}

func TestCeremonyRejectsBadThreshold(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	baseHash := params.OneQ()

	_, err := ceremony.NewMediator(params, baseHash, 3, 4)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestCeremonyEjectsGuardianOnFailedChallenge(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	baseHash := params.OneQ()
	const n, k = 3, 2

	med, err := ceremony.NewMediator(params, baseHash, n, k)
	c.Assert(err, qt.IsNil)

	guardians := make([]*ceremony.Guardian, n)
	for i := 0; i < n; i++ {
		id := string(rune('A' + i))
		g, err := ceremony.NewGuardian(params, id, sequenceOrder(params, i+1), k)
		c.Assert(err, qt.IsNil)
		guardians[i] = g
		a, err := g.Announce(params, baseHash)
		c.Assert(err, qt.IsNil)
		c.Assert(med.Announce(a), qt.IsNil)
	}

	for i, from := range guardians {
		for j := range guardians {
			if i == j {
				continue
			}
			toAnn, err := med.Announcement(guardians[j].ID)
			c.Assert(err, qt.IsNil)
			b, err := ceremony.BuildBackup(params, baseHash, from, toAnn)
			c.Assert(err, qt.IsNil)
			c.Assert(med.SubmitBackup(b), qt.IsNil)
		}
	}

	for i, to := range guardians {
		for j, from := range guardians {
			if i == j {
				continue
			}
			b, err := med.Backup(from.ID, to.ID)
			c.Assert(err, qt.IsNil)
			opened := ceremony.OpenBackup(params, baseHash, b, to.AuxKeyPair.SecretKey)
			c.Assert(med.SubmitVerification(from.ID, to.ID, true), qt.IsNil)
			_ = opened
		}
	}

	// Guardian A's backup to B is now disputed with a bogus revealed value.
	c.Assert(med.ChallengeBackup(guardians[0].ID, guardians[1].ID), qt.IsNil)
	bogus, err := params.RandomQ()
	c.Assert(err, qt.IsNil)
	err = med.ResolveChallenge(guardians[0].ID, guardians[1].ID, bogus)
	c.Assert(err, qt.Not(qt.IsNil))

	err = med.Advance()
	c.Assert(err, qt.IsNil)
	c.Assert(med.State(), qt.Equals, ceremony.StateBackupsVerified)
}

func TestCeremonyInsufficientQuorumAfterEjection(t *testing.T) {
	c := qt.New(t)
	params := testParams(c)
	baseHash := params.OneQ()
	const n, k = 2, 2

	med, err := ceremony.NewMediator(params, baseHash, n, k)
	c.Assert(err, qt.IsNil)

	guardians := make([]*ceremony.Guardian, n)
	for i := 0; i < n; i++ {
		id := string(rune('A' + i))
		g, err := ceremony.NewGuardian(params, id, sequenceOrder(params, i+1), k)
		c.Assert(err, qt.IsNil)
		guardians[i] = g
		a, err := g.Announce(params, baseHash)
		c.Assert(err, qt.IsNil)
		c.Assert(med.Announce(a), qt.IsNil)
	}

	for i, from := range guardians {
		for j := range guardians {
			if i == j {
				continue
			}
			toAnn, err := med.Announcement(guardians[j].ID)
			c.Assert(err, qt.IsNil)
			b, err := ceremony.BuildBackup(params, baseHash, from, toAnn)
			c.Assert(err, qt.IsNil)
			c.Assert(med.SubmitBackup(b), qt.IsNil)
		}
	}

	c.Assert(med.ChallengeBackup(guardians[0].ID, guardians[1].ID), qt.IsNil)
	bogus, err := params.RandomQ()
	c.Assert(err, qt.IsNil)
	c.Assert(med.ResolveChallenge(guardians[0].ID, guardians[1].ID, bogus), qt.Not(qt.IsNil))

	err = med.Advance()
	c.Assert(err, qt.Not(qt.IsNil))
}

package api

import (
	"fmt"
	"math/big"
	"net/http"

	"github.com/amarvote/evoting/ceremony"
	"github.com/amarvote/evoting/decryption"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/manifest"
	"github.com/amarvote/evoting/polynomial"
	"github.com/go-chi/chi/v5"
)

// setupGuardians runs a full n-guardian, k-threshold key ceremony
// in-process and publishes the resulting joint key. This is test-mode
// only: a real election runs each guardian on its own machine and never
// lets one process see every secret share.
func (a *API) setupGuardians(w http.ResponseWriter, r *http.Request) {
	var req setupGuardiansRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := a.params
	baseHash, err := manifest.Hash(params, req.Manifest)
	if err != nil {
		writeError(w, err)
		return
	}

	med, err := ceremony.NewMediator(params, baseHash, req.N, req.K)
	if err != nil {
		writeError(w, err)
		return
	}

	guardians := make([]*ceremony.Guardian, req.N)
	announcements := make([]*ceremony.Announcement, req.N)
	for i := 0; i < req.N; i++ {
		seq, err := params.NewElementQ(big.NewInt(int64(i + 1)))
		if err != nil {
			writeError(w, electionerr.Wrap(electionerr.KindInvalidElement, err))
			return
		}
		gid := fmt.Sprintf("guardian-%d", i+1)
		g, err := ceremony.NewGuardian(params, gid, seq, req.K)
		if err != nil {
			writeError(w, err)
			return
		}
		guardians[i] = g
		ann, err := g.Announce(params, baseHash)
		if err != nil {
			writeError(w, err)
			return
		}
		announcements[i] = ann
		if err := med.Announce(ann); err != nil {
			writeError(w, err)
			return
		}
	}

	for i, from := range guardians {
		for j, to := range guardians {
			if i == j {
				continue
			}
			toAnn, err := med.Announcement(to.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			b, err := ceremony.BuildBackup(params, baseHash, from, toAnn)
			if err != nil {
				writeError(w, err)
				return
			}
			if err := med.SubmitBackup(b); err != nil {
				writeError(w, err)
				return
			}
		}
	}
	for i, to := range guardians {
		for j, from := range guardians {
			if i == j {
				continue
			}
			b, err := med.Backup(from.ID, to.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			opened := ceremony.OpenBackup(params, baseHash, b, to.AuxKeyPair.SecretKey)
			fromAnn, err := med.Announcement(from.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			ok := ceremony.VerifyBackup(params, fromAnn.Commitments, to.SequenceOrder, opened)
			if err := med.SubmitVerification(from.ID, to.ID, ok); err != nil {
				writeError(w, err)
				return
			}
		}
	}

	if err := med.Advance(); err != nil {
		writeError(w, err)
		return
	}
	result, err := med.Publish()
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, err := manifest.NewContext(params, req.Manifest, req.N, req.K, result.JointPublicKey, result.CommitmentHash)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := a.store.CreateElection(req.ElectionID, req.Manifest, ctx); err != nil {
		writeError(w, err)
		return
	}
	if err := a.store.SetAnnouncements(req.ElectionID, announcements); err != nil {
		writeError(w, err)
		return
	}

	shares := make(map[string]string, req.N)
	for _, g := range guardians {
		share := g.Polynomial.Evaluate(params, params.ZeroQ())
		shares[g.ID] = share.Hex()
		if err := a.store.SetGuardianSecret(req.ElectionID, g.ID, share); err != nil {
			writeError(w, err)
			return
		}
	}

	httpWriteJSON(w, setupGuardiansResponse{
		JointPublicKey: result.JointPublicKey.Hex(),
		CommitmentHash: result.CommitmentHash.Hex(),
		GuardianIDs:    result.Included,
		GuardianShares: shares,
	})
}

// partialDecrypt computes one guardian's decryption share of every named
// target ciphertext, reading its secret polynomial share from the store
// exactly once via store.WithGuardianSecret.
func (a *API) partialDecrypt(w http.ResponseWriter, r *http.Request) {
	guardianID := chi.URLParam(r, GuardianIDURLParam)
	var req partialDecryptRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := a.params
	ctx, err := a.store.Context(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	announcements, err := a.store.Announcements(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	var publicShare *group.ElementP
	for _, ann := range announcements {
		if ann.GuardianID == guardianID {
			publicShare = ann.PublicKeyShare()
			break
		}
	}
	if publicShare == nil {
		writeError(w, electionerr.New(electionerr.KindUnknownGuardian, "api: unknown guardian %q", guardianID))
		return
	}

	shares := make(map[string]*decryption.PartialDecryption, len(req.Targets))
	err = a.store.WithGuardianSecret(req.ElectionID, guardianID, func(secret *group.ElementQ) error {
		for name, alphaHex := range req.Targets {
			alpha, err := params.ElementPFromHex(alphaHex)
			if err != nil {
				return electionerr.Wrap(electionerr.KindInvalidElement, err)
			}
			ps, err := decryption.ComputeShare(params, ctx.CryptoExtendedBaseHash, guardianID, secret, publicShare, alpha)
			if err != nil {
				return err
			}
			shares[name] = ps
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	httpWriteJSON(w, partialDecryptResponse{GuardianID: guardianID, Shares: shares})
}

// compensate stands in for an absent guardian against every named target,
// using a backup value the compensator already recovered out of band
// during the key ceremony (ceremony.OpenBackup).
func (a *API) compensate(w http.ResponseWriter, r *http.Request) {
	compensatorID := chi.URLParam(r, GuardianIDURLParam)
	var req compensateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := a.params
	ctx, err := a.store.Context(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	announcements, err := a.store.Announcements(req.ElectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	var missing *ceremony.Announcement
	var compensatorSeq *group.ElementQ
	for _, ann := range announcements {
		if ann.GuardianID == req.MissingGuardianID {
			missing = ann
		}
		if ann.GuardianID == compensatorID {
			compensatorSeq = ann.SequenceOrder
		}
	}
	if missing == nil {
		writeError(w, electionerr.New(electionerr.KindUnknownGuardian, "api: unknown guardian %q", req.MissingGuardianID))
		return
	}
	if compensatorSeq == nil {
		writeError(w, electionerr.New(electionerr.KindUnknownGuardian, "api: unknown guardian %q", compensatorID))
		return
	}
	openedValue, err := params.ElementQFromHex(req.OpenedValueHex)
	if err != nil {
		writeError(w, electionerr.Wrap(electionerr.KindInvalidElement, err))
		return
	}
	evaluatedCommitment := polynomial.EvaluateCommitment(params, missing.Commitments, compensatorSeq)

	shares := make(map[string]*decryption.CompensationShare, len(req.Targets))
	for name, alphaHex := range req.Targets {
		alpha, err := params.ElementPFromHex(alphaHex)
		if err != nil {
			writeError(w, electionerr.Wrap(electionerr.KindInvalidElement, err))
			return
		}
		cs, err := decryption.ComputeCompensationShare(params, ctx.CryptoExtendedBaseHash, req.MissingGuardianID, compensatorID, openedValue, evaluatedCommitment, alpha)
		if err != nil {
			writeError(w, err)
			return
		}
		shares[name] = cs
	}

	httpWriteJSON(w, compensateResponse{
		MissingGuardianID: req.MissingGuardianID,
		CompensatorID:     compensatorID,
		Shares:            shares,
	})
}

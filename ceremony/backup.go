// -----------------------------------------------------------------------------
//  Partial key backup exchange (round 2)
//
//  Goal: let guardian i hand guardian j its evaluation P_i(s_j) without a
//  separate KEM, authenticated by the same discrete-log assumption as the
//  rest of the core.
//
//  Sender i, knowing recipient j's auxiliary public key auxPub_j = g^y_j:
//    pick rho <- Zq; alpha = g^rho (an ElGamal-style ephemeral value)
//    sharedSecret = auxPub_j^rho            (= g^{y_j*rho})
//    mask = H(baseHash, fromID, toID, sharedSecret)
//    maskedValue = mask + P_i(s_j) mod q
//
//  Recipient j, knowing its own auxiliary secret y_j:
//    sharedSecret = alpha^y_j               (= g^{rho*y_j}, same value)
//    mask = H(baseHash, fromID, toID, sharedSecret)
//    P_i(s_j) = maskedValue - mask mod q
//
//  The recipient then checks the opened value against the sender's public
//  commitments: g^{P_i(s_j)} ?= Product_l K_{i,l}^{s_j^l}.
// -----------------------------------------------------------------------------

package ceremony

import (
	"github.com/amarvote/evoting/fshash"
	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/polynomial"
)

// Backup is the ciphertext of P_i(s_j) handed from guardian i to guardian j.
type Backup struct {
	FromID      string
	ToID        string
	Alpha       *group.ElementP
	MaskedValue *group.ElementQ
}

func backupMask(params *group.Params, baseHash *group.ElementQ, fromID, toID string, sharedSecret *group.ElementP) *group.ElementQ {
	return fshash.H(params, baseHash, fromID, toID, sharedSecret)
}

// BuildBackup produces the backup guardian `from` sends to `to`, evaluating
// from's polynomial at to's sequence order.
func BuildBackup(params *group.Params, baseHash *group.ElementQ, from *Guardian, to *Announcement) (*Backup, error) {
	rho, err := params.RandomNonzeroQ()
	if err != nil {
		return nil, err
	}
	alpha := params.GPowP(rho)
	sharedSecret := to.AuxPublicKey.Pow(rho)
	mask := backupMask(params, baseHash, from.ID, to.GuardianID, sharedSecret)
	value := from.Polynomial.Evaluate(params, to.SequenceOrder)
	return &Backup{
		FromID:      from.ID,
		ToID:        to.GuardianID,
		Alpha:       alpha,
		MaskedValue: mask.Add(value),
	}, nil
}

// OpenBackup recovers P_i(s_j) from a backup using the recipient's
// auxiliary secret key.
func OpenBackup(params *group.Params, baseHash *group.ElementQ, backup *Backup, recipientAuxSecret *group.ElementQ) *group.ElementQ {
	sharedSecret := backup.Alpha.Pow(recipientAuxSecret)
	mask := backupMask(params, baseHash, backup.FromID, backup.ToID, sharedSecret)
	return backup.MaskedValue.Sub(mask)
}

// VerifyBackup checks an opened backup value against the sender's public
// coefficient commitments.
func VerifyBackup(params *group.Params, senderCommitments []*polynomial.Commitment, recipientSequenceOrder, openedValue *group.ElementQ) bool {
	want := polynomial.EvaluateCommitment(params, senderCommitments, recipientSequenceOrder)
	return params.GPowP(openedValue).Equal(want)
}

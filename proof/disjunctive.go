// -----------------------------------------------------------------------------
//  Disjunctive Chaum-Pedersen proof: ciphertext encrypts one of {0, ..., n-1}
//
//  Goal: prove that ciphertext (alpha, beta) = (g^R, K^R * g^m) encrypts a
//  value m in a known small range, without revealing which one. Branch i
//  claims (alpha, beta/g^i) is an encryption of 0 under K, which holds
//  exactly when m == i, since beta/g^i = K^R * g^(m-i). Proving (alpha, D)
//  encrypts 0 is a Chaum-Pedersen equality: log_g(alpha) == log_K(D).
//
//  Only the true branch is proven with knowledge of R; every other branch's
//  challenge and response are sampled first and the commitment is back-solved
//  to satisfy the verification equation trivially. The branch challenges are
//  then forced to sum to the Fiat-Shamir challenge over the whole proof, so a
//  prover who does not know which branch is true cannot produce a proof that
//  verifies end to end.
//
//  This single construction serves both the per-selection 0/1 proof (n=2)
//  and the per-contest limit proof (n = number_elected+1, applied to the
//  homomorphic sum of a contest's selection ciphertexts).
//
//  Prover (BuildDisjunctive), knowing R with alpha=g^R, beta=K^R*g^m, 0<=m<n:
//    For the true branch m: pick r_m <- Zq; a_m = g^r_m, b_m = K^r_m.
//    For every false branch i != m: pick c_i, v_i <- Zq; back-solve
//      a_i = g^v_i * alpha^(-c_i), b_i = K^v_i * (beta * g^-i)^(-c_i).
//    c = H(baseHash, alpha, beta, a_0, b_0, ..., a_(n-1), b_(n-1))
//    c_m = c - sum(c_i, i != m) mod q
//    v_m = r_m + c_m * R mod q
//
//  Verifier (VerifyDisjunctive):
//    Recompute c from the commitments; check sum(c_i) == c, and for every
//    branch i: g^v_i == a_i * alpha^c_i  AND  K^v_i == b_i * (beta*g^-i)^c_i.
// -----------------------------------------------------------------------------

package proof

import (
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/fshash"
	"github.com/amarvote/evoting/group"
)

// Branch holds one arm of a disjunctive proof.
type Branch struct {
	CommitmentA *group.ElementP // a_i
	CommitmentB *group.ElementP // b_i
	Challenge   *group.ElementQ // c_i
	Response    *group.ElementQ // v_i
}

// Disjunctive is a non-interactive proof that a ciphertext encrypts one of
// a known, small set of consecutive integer values {0, ..., len(Branches)-1}.
type Disjunctive struct {
	Branches []*Branch
}

// BuildDisjunctive proves that (alpha, beta) = (g^nonce, publicKey^nonce *
// g^value) for the given value, against numBranches consecutive candidate
// values starting at 0. value must be in [0, numBranches).
func BuildDisjunctive(
	params *group.Params,
	baseHash *group.ElementQ,
	publicKey *group.ElementP,
	alpha, beta *group.ElementP,
	nonce *group.ElementQ,
	value int,
	numBranches int,
) (*Disjunctive, error) {
	if value < 0 || value >= numBranches {
		return nil, electionerr.New(electionerr.KindRangeExceeded, "disjunctive proof: value %d out of range [0,%d)", value, numBranches)
	}

	branches := make([]*Branch, numBranches)
	challengeSum := params.ZeroQ()

	type pending struct {
		r *group.ElementQ // only set for the real branch
	}
	pendings := make([]pending, numBranches)

	for i := 0; i < numBranches; i++ {
		dI := disjunctiveTarget(params, beta, i)
		if i == value {
			r, err := params.RandomNonzeroQ()
			if err != nil {
				return nil, err
			}
			pendings[i] = pending{r: r}
			branches[i] = &Branch{
				CommitmentA: params.GPowP(r),
				CommitmentB: publicKey.Pow(r),
			}
			continue
		}
		ci, err := params.RandomQ()
		if err != nil {
			return nil, err
		}
		vi, err := params.RandomQ()
		if err != nil {
			return nil, err
		}
		aI := params.GPowP(vi).Mul(alpha.Pow(ci).Inv())
		bI := publicKey.Pow(vi).Mul(dI.Pow(ci).Inv())
		branches[i] = &Branch{CommitmentA: aI, CommitmentB: bI, Challenge: ci, Response: vi}
		challengeSum = challengeSum.Add(ci)
	}

	transcript := make([]any, 0, 2+2*numBranches)
	transcript = append(transcript, alpha, beta)
	for _, b := range branches {
		transcript = append(transcript, b.CommitmentA, b.CommitmentB)
	}
	c := fshash.H(params, append([]any{baseHash}, transcript...)...)

	realChallenge := c.Sub(challengeSum)
	realResponse := pendings[value].r.Add(realChallenge.Mul(nonce))
	branches[value].Challenge = realChallenge
	branches[value].Response = realResponse

	return &Disjunctive{Branches: branches}, nil
}

// VerifyDisjunctive checks a Disjunctive proof against the ciphertext
// (alpha, beta) encrypted under publicKey.
func VerifyDisjunctive(params *group.Params, baseHash *group.ElementQ, publicKey, alpha, beta *group.ElementP, p *Disjunctive) bool {
	numBranches := len(p.Branches)
	challengeSum := params.ZeroQ()
	transcript := make([]any, 0, 2+2*numBranches)
	transcript = append(transcript, alpha, beta)
	for _, b := range p.Branches {
		transcript = append(transcript, b.CommitmentA, b.CommitmentB)
		challengeSum = challengeSum.Add(b.Challenge)
	}
	c := fshash.H(params, append([]any{baseHash}, transcript...)...)
	if !c.Equal(challengeSum) {
		return false
	}

	for i, b := range p.Branches {
		dI := disjunctiveTarget(params, beta, i)
		lhs1 := params.GPowP(b.Response)
		rhs1 := b.CommitmentA.Mul(alpha.Pow(b.Challenge))
		if !lhs1.Equal(rhs1) {
			return false
		}
		lhs2 := publicKey.Pow(b.Response)
		rhs2 := b.CommitmentB.Mul(dI.Pow(b.Challenge))
		if !lhs2.Equal(rhs2) {
			return false
		}
	}
	return true
}

// disjunctiveTarget returns beta * g^-i, the value that must equal K^R for
// branch i to be the true one.
func disjunctiveTarget(params *group.Params, beta *group.ElementP, i int) *group.ElementP {
	gi := params.GPowInt(bigFromInt(i))
	return beta.Mul(gi.Inv())
}

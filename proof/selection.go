package proof

import "github.com/amarvote/evoting/group"

// SelectionProof is a Disjunctive proof with exactly two branches, proving
// a selection ciphertext encrypts 0 or 1.
type SelectionProof = Disjunctive

// BuildSelectionProof proves that a selection ciphertext encrypts the bit
// `vote` (0 or 1).
func BuildSelectionProof(params *group.Params, baseHash *group.ElementQ, publicKey, alpha, beta *group.ElementP, nonce *group.ElementQ, vote int) (*SelectionProof, error) {
	return BuildDisjunctive(params, baseHash, publicKey, alpha, beta, nonce, vote, 2)
}

// VerifySelectionProof verifies a SelectionProof.
func VerifySelectionProof(params *group.Params, baseHash *group.ElementQ, publicKey, alpha, beta *group.ElementP, p *SelectionProof) bool {
	return VerifyDisjunctive(params, baseHash, publicKey, alpha, beta, p)
}

// ContestRangeProof is a Disjunctive proof with numElected+1 branches,
// proving the homomorphic sum of a contest's selection ciphertexts encrypts
// a value in {0, ..., numElected}. Verification accepts any value in that
// range; it does not single out numElected.
type ContestRangeProof = Disjunctive

// BuildContestRangeProof builds the proof for an aggregate ciphertext of a
// contest that encrypts numElected (the contest's vote limit L); the proof
// itself shows only that the aggregate lies in {0, ..., numElected}.
func BuildContestRangeProof(params *group.Params, baseHash *group.ElementQ, publicKey, alpha, beta *group.ElementP, aggregateNonce *group.ElementQ, numElected int) (*ContestRangeProof, error) {
	return BuildDisjunctive(params, baseHash, publicKey, alpha, beta, aggregateNonce, numElected, numElected+1)
}

// VerifyContestRangeProof verifies a ContestRangeProof.
func VerifyContestRangeProof(params *group.Params, baseHash *group.ElementQ, publicKey, alpha, beta *group.ElementP, p *ContestRangeProof) bool {
	return VerifyDisjunctive(params, baseHash, publicKey, alpha, beta, p)
}

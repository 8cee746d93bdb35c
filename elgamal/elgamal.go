// Package elgamal implements exponential ElGamal encryption over the
// order-q subgroup of Z_p*: keygen, encryption with additive homomorphism
// over the plaintext exponent, and the three decryption paths the rest of
// the engine needs — decryption given the secret key or given an
// already-combined decryption factor (both via a shared discrete-log
// table), and decryption given the encryption nonce (used by the Benaloh
// challenge).
package elgamal

import (
	"github.com/amarvote/evoting/dlogcache"
	"github.com/amarvote/evoting/electionerr"
	"github.com/amarvote/evoting/group"
)

// Ciphertext is the pair (Alpha, Beta) = (g^R, K^R * g^m).
type Ciphertext struct {
	Alpha *group.ElementP
	Beta  *group.ElementP
}

// KeyPair is an ElGamal secret/public key pair: PublicKey = g^SecretKey.
type KeyPair struct {
	SecretKey *group.ElementQ
	PublicKey *group.ElementP
}

// GenerateKey draws a uniformly random nonzero secret scalar and derives
// its public key.
func GenerateKey(params *group.Params) (*KeyPair, error) {
	secret, err := params.RandomNonzeroQ()
	if err != nil {
		return nil, err
	}
	return &KeyPair{SecretKey: secret, PublicKey: params.GPowP(secret)}, nil
}

// Encrypt computes (g^nonce, publicKey^nonce * g^message).
func Encrypt(params *group.Params, message, nonce *group.ElementQ, publicKey *group.ElementP) *Ciphertext {
	alpha := params.GPowP(nonce)
	beta := publicKey.Pow(nonce).Mul(params.GPowP(message))
	return &Ciphertext{Alpha: alpha, Beta: beta}
}

// Add returns the Ciphertext encrypting the sum of the two inputs'
// plaintexts under the same key, by componentwise multiplication.
func Add(x, y *Ciphertext) *Ciphertext {
	return &Ciphertext{Alpha: x.Alpha.Mul(y.Alpha), Beta: x.Beta.Mul(y.Beta)}
}

// Identity returns the ciphertext encrypting 0 with nonce 0, the neutral
// element of Add: (1, 1).
func Identity(params *group.Params) *Ciphertext {
	return &Ciphertext{Alpha: params.OneP(), Beta: params.OneP()}
}

// DecryptKnownNonce recovers the plaintext exponent given the encryption
// nonce directly: m = discrete_log(beta * (publicKey^nonce)^-1). Used by
// the Benaloh challenge, where the voter (or an auditor with the nonce)
// re-derives the ciphertext without needing the guardians' secret key.
func DecryptKnownNonce(params *group.Params, c *Ciphertext, nonce *group.ElementQ, publicKey *group.ElementP, bound uint64) (uint64, error) {
	mask := publicKey.Pow(nonce)
	gm := c.Beta.Mul(mask.Inv())
	m, err := dlogcache.Solve(params, bound, gm)
	if err != nil {
		return 0, electionerr.Wrap(electionerr.KindRangeExceeded, err)
	}
	return m, nil
}

// DecryptKnownSecret recovers the plaintext exponent given the secret key
// directly (only meaningful in tests and the single-guardian n=1 case;
// production decryption goes through the threshold path in package
// decryption).
func DecryptKnownSecret(params *group.Params, c *Ciphertext, secretKey *group.ElementQ, bound uint64) (uint64, error) {
	factor := c.Alpha.Pow(secretKey)
	gm := c.Beta.Mul(factor.Inv())
	m, err := dlogcache.Solve(params, bound, gm)
	if err != nil {
		return 0, electionerr.Wrap(electionerr.KindRangeExceeded, err)
	}
	return m, nil
}

// DecryptKnownProduct recovers the plaintext exponent m such that
// beta * combinedFactor^-1 == g^m, given the already-combined decryption
// factor M produced by the threshold decryption mediator.
func DecryptKnownProduct(params *group.Params, c *Ciphertext, combinedFactor *group.ElementP, bound uint64) (uint64, error) {
	gm := c.Beta.Mul(combinedFactor.Inv())
	m, err := dlogcache.Solve(params, bound, gm)
	if err != nil {
		return 0, electionerr.Wrap(electionerr.KindRangeExceeded, err)
	}
	return m, nil
}

package api

const (
	// PingEndpoint reports the API is up.
	PingEndpoint = "/ping"

	// GuardiansEndpoint runs an in-process key ceremony (test mode only:
	// it returns every guardian's secret share directly, since there is no
	// multi-party transport in this façade).
	GuardiansEndpoint = "/guardians"

	// BallotsEndpoint encrypts and submits one ballot.
	BallotsEndpoint = "/ballots"

	// TallyEndpoint returns the homomorphic tally, closing the ballot box
	// first when the request sets close.
	TallyEndpoint = "/tally"

	// GuardianIDURLParam names the {id} path segment below.
	GuardianIDURLParam = "id"
	// PartialDecryptEndpoint computes one guardian's partial decryption shares.
	PartialDecryptEndpoint = "/guardians/{" + GuardianIDURLParam + "}/partial-decrypt"
	// CompensateEndpoint computes a present guardian's compensation shares
	// standing in for an absent one.
	CompensateEndpoint = "/guardians/{" + GuardianIDURLParam + "}/compensate"

	// CombineEndpoint reconstructs missing shares and decrypts.
	CombineEndpoint = "/combine"

	// BenalohChallengeEndpoint audits a ballot against a claimed plaintext.
	BenalohChallengeEndpoint = "/benaloh-challenge"
)

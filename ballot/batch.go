package ballot

import (
	"runtime"
	"sync"

	"github.com/amarvote/evoting/group"
	"github.com/amarvote/evoting/manifest"
)

// EncryptBatch encrypts every ballot in ballots concurrently over a bounded
// worker pool, one result/error slot per input index. nonces may be nil, or
// contain a nil entry for any ballot that should get a freshly sampled
// nonce. workers <= 0 defaults to runtime.GOMAXPROCS(0).
func EncryptBatch(params *group.Params, ctx *manifest.Context, m *manifest.Manifest, ballots []*PlaintextBallot, nonces []*group.ElementQ, workers int) ([]*CiphertextBallot, []error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*CiphertextBallot, len(ballots))
	errs := make([]error, len(ballots))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, b := range ballots {
		var nonce *group.ElementQ
		if nonces != nil && i < len(nonces) {
			nonce = nonces[i]
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, b *PlaintextBallot, nonce *group.ElementQ) {
			defer wg.Done()
			defer func() { <-sem }()
			ct, err := EncryptBallot(params, ctx, m, b, nonce)
			results[i] = ct
			errs[i] = err
		}(i, b, nonce)
	}
	wg.Wait()
	return results, errs
}

// VerifyBatch verifies every ballot in ballots concurrently over a bounded
// worker pool. workers <= 0 defaults to runtime.GOMAXPROCS(0).
func VerifyBatch(params *group.Params, ctx *manifest.Context, m *manifest.Manifest, ballots []*CiphertextBallot, workers int) []bool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]bool, len(ballots))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, b := range ballots {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, b *CiphertextBallot) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = VerifyBallot(params, ctx, m, b)
		}(i, b)
	}
	wg.Wait()
	return results
}

package federation

import (
	"context"
	"errors"
	"fmt"
)

// AwaitAll joins on every handle and returns the results in submission order.
// The first failure, in await order, aborts collection; no partial result
// list is returned.
func AwaitAll(ctx context.Context, pendings []*Pending) ([]Result, error) {
	results := make([]Result, 0, len(pendings))

	for _, p := range pendings {
		result, err := p.Wait(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// AwaitQuorum joins on every handle and returns the successful results in
// submission order, provided at least quorum endpoints succeeded. Endpoint
// failures are tolerated up to that bound; per-job timeouts guarantee every
// handle eventually resolves. Cancellation of ctx still aborts immediately.
func AwaitQuorum(ctx context.Context, pendings []*Pending, quorum int) ([]Result, error) {
	if quorum <= 0 || quorum > len(pendings) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidQuorum, quorum, len(pendings))
	}

	results := make([]Result, 0, len(pendings))
	var firstErr error

	for _, p := range pendings {
		result, err := p.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			if firstErr == nil {
				firstErr = err
			}

			continue
		}
		results = append(results, result)
	}

	if len(results) < quorum {
		return nil, errors.Join(fmt.Errorf("%w: %d of %d endpoints responded, need %d", ErrQuorumNotReached, len(results), len(pendings), quorum), firstErr)
	}

	return results, nil
}

package automerge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/go-github/v59/github"

	"github.com/squashbot/squashbot/internal/ghretry"
)

// mergeableStatePollInterval is the initial pause between polls for a pull
// request whose mergeable state is unknown. The pauses grow exponentially.
const mergeableStatePollInterval = 250 * time.Millisecond

// DefMergeableStateSettleTimeout is the default maximum duration for which
// the resolver polls a pull request until its mergeable state settled.
// Github normally recomputes the state within seconds after a push.
const DefMergeableStateSettleTimeout = 2 * time.Minute

// fetchSettledPR fetches the pull request from github and only returns it
// when its mergeable state settled.
// Github computes the mergeable state asynchronously after a push to one of
// the involved branches, reading too early returns the transitional unknown
// state. The snapshot is accepted when the pull request is closed or its
// mergeable state is not unknown, otherwise the fetch is repeated with
// exponential backoff.
// Transient API failures are retried within the same time limit.
// When the state did not settle before the timeout expired, an error
// wrapping ErrMergeableStateUnsettled is returned.
func (a *Automerger) fetchSettledPR(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	var pr *github.PullRequest

	op := func() error {
		p, err := a.ghClient.PullRequest(ctx, owner, repo, number)
		if err != nil {
			var retryableErr *ghretry.RetryableError
			if errors.As(err, &retryableErr) {
				return err
			}

			return backoff.Permanent(err)
		}

		if p.GetState() != "closed" && p.GetMergeableState() == MergeableStateUnknown {
			return ErrMergeableStateUnsettled
		}

		pr = p
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = mergeableStatePollInterval
	bo.MaxElapsedTime = a.settleTimeout

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if errors.Is(err, ErrMergeableStateUnsettled) {
			return nil, fmt.Errorf("mergeable state of pull request %d did not settle within %s: %w",
				number, a.settleTimeout, err)
		}

		return nil, fmt.Errorf("fetching pull request %d failed: %w", number, err)
	}

	return pr, nil
}

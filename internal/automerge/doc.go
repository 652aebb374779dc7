// Package automerge provides automatic squash-merging of labeled GitHub
// pull requests.
//
// The automerger reacts on GitHub webhook events. A pull request becomes a
// candidate for automatic actions when it is open and carries the configured
// trigger label. Depending on the mergeable state that GitHub computed for a
// candidate, the automerger either merges the base branch into the pull
// request branch (state: behind) or squash-merges the pull request (states:
// clean, unstable).
//
// The mergeable state is computed by GitHub asynchronously after a push to
// one of the involved branches. The automerger polls the pull request with
// backoff until the transitional unknown state resolved, it never acts on an
// unknown state.
//
// The message of the squashed commit is the pull request body followed by
// one Co-authored-by trailer per distinct human co-author of the pull
// request commits. Co-authors are deduplicated by their GitHub account, the
// pull request creator and bot accounts are excluded.
//
// The automerger keeps no state between events. Every event is an
// independent reconciliation pass over freshly fetched pull request data,
// mutating operations pass the fetched head commit to GitHub, which refuses
// them when the branch changed concurrently. A refused operation is logged
// and retried naturally by a later event.
package automerge

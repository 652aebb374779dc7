package automerge

import "errors"

var (
	// ErrMalformedEvent marks event payloads that miss the fields required
	// to derive an action from them.
	ErrMalformedEvent = errors.New("malformed event payload")

	// ErrMergeableStateUnsettled is returned when the mergeable state of a
	// pull request stayed unknown until the resolver gave up polling.
	ErrMergeableStateUnsettled = errors.New("mergeable state is unknown")
)

package automerge

import (
	"slices"

	"github.com/google/go-github/v59/github"
	"go.uber.org/zap"

	"github.com/squashbot/squashbot/internal/logfields"
)

// isCandidate returns true when the pull request is eligible for automatic
// actions: it is still open and carries the trigger label.
// Rejections are logged with a reason, the log line is the only audit trail
// for skipped pull requests.
func (a *Automerger) isCandidate(logger *zap.Logger, pr *github.PullRequest) bool {
	if pr.ClosedAt != nil {
		logger.Info(
			"ignoring pull request, it is closed",
			logfields.Event("pull_request_not_a_candidate"),
			logfields.Reason("closed"),
		)

		return false
	}

	if !hasLabel(pr, a.triggerLabel) {
		logger.Info(
			"ignoring pull request, it does not have the trigger label",
			logfields.Event("pull_request_not_a_candidate"),
			logfields.Reason("trigger_label_missing"),
			logfields.Label(a.triggerLabel),
		)

		return false
	}

	return true
}

func hasLabel(pr *github.PullRequest, name string) bool {
	for _, label := range pr.Labels {
		if label.GetName() == name {
			return true
		}
	}

	return false
}

// prReady returns true when the pull request is a candidate and its mergeable
// state is one of allowedStates.
func (a *Automerger) prReady(logger *zap.Logger, pr *github.PullRequest, allowedStates []string) bool {
	if !a.isCandidate(logger, pr) {
		return false
	}

	state := pr.GetMergeableState()
	if slices.Contains(allowedStates, state) {
		return true
	}

	logger.Debug(
		"no action for pull request, mergeable state is not in the allowed set",
		logfields.Event("pull_request_not_ready"),
		logfields.MergeableState(state),
		zap.Strings("allowed_mergeable_states", allowedStates),
	)

	return false
}

package automerge

import (
	"context"

	"github.com/google/go-github/v59/github"
	"go.uber.org/zap"

	"github.com/squashbot/squashbot/internal/logfields"
)

// merge squash-merges the pull request.
// The commit message is synthesized from the pull request body and the
// distinct co-authors of its commits. The current head commit is passed as
// optimistic-concurrency token, github refuses the merge when the branch
// changed in the meantime.
// Failures are logged and not propagated, one failing pull request must not
// abort its sibling pull requests of the same event. The operation is not
// retried locally, a later event reconciles the pull request again.
func (a *Automerger) merge(ctx context.Context, logger *zap.Logger, owner, repo string, pr *github.PullRequest) {
	headSHA := pr.GetHead().GetSHA()
	logger = logger.With(logfields.Commit(headSHA))

	logger.Info("attempting to merge pull request", logEventMergeAttempt)

	coAuthors, err := a.collectCoAuthors(ctx, owner, repo, pr.GetNumber(), pr.GetUser().GetLogin())
	if err != nil {
		logger.Error(
			"merging pull request failed, could not collect co-authors",
			logEventMergeFailed,
			zap.Error(err),
		)
		metrics.ActionInc(owner, repo, actionLabelMergeVal, resultLabelFailureVal)

		return
	}

	msg := buildCommitMessage(pr.GetBody(), coAuthors)

	err = a.ghClient.SquashMergePullRequest(ctx, owner, repo, pr.GetNumber(), headSHA, msg)
	if err != nil {
		logger.Error(
			"merging pull request failed",
			logEventMergeFailed,
			zap.Error(err),
		)
		metrics.ActionInc(owner, repo, actionLabelMergeVal, resultLabelFailureVal)

		return
	}

	logger.Info(
		"pull request merged",
		logEventMerged,
		zap.Int("co_author_count", len(coAuthors)),
	)
	metrics.ActionInc(owner, repo, actionLabelMergeVal, resultLabelSuccessVal)
}

// update triggers merging the base branch into the pull request branch.
// The current head commit is passed as optimistic-concurrency token.
// Failures are logged and not propagated, see merge.
func (a *Automerger) update(ctx context.Context, logger *zap.Logger, owner, repo string, pr *github.PullRequest) {
	headSHA := pr.GetHead().GetSHA()
	logger = logger.With(logfields.Commit(headSHA))

	logger.Info("attempting to update pull request branch with base branch", logEventUpdateAttempt)

	err := a.ghClient.UpdateBranch(ctx, owner, repo, pr.GetNumber(), headSHA)
	if err != nil {
		logger.Error(
			"updating pull request branch failed",
			logEventUpdateFailed,
			zap.Error(err),
		)
		metrics.ActionInc(owner, repo, actionLabelUpdateVal, resultLabelFailureVal)

		return
	}

	logger.Info("pull request branch update triggered", logEventUpdated)
	metrics.ActionInc(owner, repo, actionLabelUpdateVal, resultLabelSuccessVal)
}

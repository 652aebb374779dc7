package automerge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/go-github/v59/github"
	"go.uber.org/zap"

	"github.com/squashbot/squashbot/internal/githubclt"
	"github.com/squashbot/squashbot/internal/logfields"
	github_prov "github.com/squashbot/squashbot/internal/provider/github"
)

const loggerName = "automerger"

// GithubClient is the interface to the version-control host.
// Mutating operations take the expected head commit of the pull request
// branch, the host refuses them when the branch changed in the meantime.
type GithubClient interface {
	PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	ListPullRequestCommits(ctx context.Context, owner, repo string, number int) githubclt.CommitIterator
	SearchOpenPullRequests(ctx context.Context, owner, repo, label, extraQueryTerm string) ([]*github.Issue, error)
	SquashMergePullRequest(ctx context.Context, owner, repo string, number int, expectedHeadSHA, commitMessage string) error
	UpdateBranch(ctx context.Context, owner, repo string, number int, expectedHeadSHA string) error
}

// Mergeable states that github reports for a pull request.
// The unknown state is transitional, github recomputes the state
// asynchronously after the head of one of the involved branches changed.
const (
	MergeableStateUnknown  = "unknown"
	MergeableStateBehind   = "behind"
	MergeableStateBlocked  = "blocked"
	MergeableStateClean    = "clean"
	MergeableStateDirty    = "dirty"
	MergeableStateDraft    = "draft"
	MergeableStateUnstable = "unstable"
)

// updateEligibleStates are the mergeable states from which a branch update
// is triggered.
var updateEligibleStates = []string{MergeableStateBehind}

// mergeEligibleStates are the mergeable states from which a merge is
// attempted.
// unstable is included deliberately, required checks can still be running, a
// later check or status success event triggers reconciliation again.
var mergeEligibleStates = []string{MergeableStateClean, MergeableStateUnstable}

// Repository identifies a github repository.
type Repository struct {
	Owner          string
	RepositoryName string
}

func (r *Repository) String() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.RepositoryName)
}

// Automerger merges or updates labeled pull requests in reaction to github
// webhook events.
// Events are processed one at a time, pull requests affected by one event are
// reconciled strictly sequentially.
// No pull request state is kept between events, every event is an independent
// reconciliation pass over freshly fetched data.
type Automerger struct {
	triggerLabel   string
	monitoredRepos map[Repository]struct{}

	ch     <-chan *github_prov.Event
	logger *zap.Logger

	ghClient GithubClient

	// settleTimeout caps how long the mergeability resolver polls a pull
	// request whose mergeable state is unknown.
	settleTimeout time.Duration

	wg sync.WaitGroup
}

func NewAutomerger(
	ghClient GithubClient,
	eventChan <-chan *github_prov.Event,
	repos []Repository,
	triggerLabel string,
) *Automerger {
	repoMap := make(map[Repository]struct{}, len(repos))
	for _, r := range repos {
		repoMap[r] = struct{}{}
	}

	return &Automerger{
		ghClient:       ghClient,
		ch:             eventChan,
		logger:         zap.L().Named(loggerName),
		triggerLabel:   triggerLabel,
		monitoredRepos: repoMap,
		settleTimeout:  DefMergeableStateSettleTimeout,
	}
}

func (a *Automerger) isMonitoredRepository(owner, repositoryName string) bool {
	repo := Repository{
		Owner:          owner,
		RepositoryName: repositoryName,
	}

	_, exist := a.monitoredRepos[repo]
	return exist
}

func (a *Automerger) EventLoop() {
	a.logger.Info("automerger event loop started")

	for event := range a.ch {
		ctx := context.Background()
		logger := a.logger.With(event.LogFields...)

		logger.Debug("event received")
		metrics.ProcessedEventsInc()

		if err := a.processEvent(ctx, logger, event); err != nil {
			logger.Error(
				"processing event failed",
				logfields.Event("event_processing_failed"),
				zap.Error(err),
			)
		}
	}

	a.logger.Info("automerger event loop terminated")
}

// processEvent routes an event to the handler for its variant.
// An error is only returned when the whole event could not be processed,
// e.g. because the payload misses required fields. Failures to act on a
// single pull request are logged and do not fail the sibling pull requests
// of the same event.
func (a *Automerger) processEvent(ctx context.Context, logger *zap.Logger, event *github_prov.Event) error {
	switch ev := event.Event.(type) {
	case *github.CheckRunEvent:
		owner, repo, err := eventRepository(ev.GetRepo())
		if err != nil {
			return err
		}

		if !a.isMonitoredRepository(owner, repo) {
			logger.Debug("event is for repository that is not monitored", logFieldEventIgnored)
			return nil
		}

		return a.processCheckRunEvent(ctx, logger, ev, owner, repo)

	case *github.PullRequestEvent:
		owner, repo, err := eventRepository(ev.GetRepo())
		if err != nil {
			return err
		}

		if !a.isMonitoredRepository(owner, repo) {
			logger.Debug("event is for repository that is not monitored", logFieldEventIgnored)
			return nil
		}

		return a.processPullRequestEvent(ctx, logger, ev, owner, repo)

	case *github.PullRequestReviewEvent:
		owner, repo, err := eventRepository(ev.GetRepo())
		if err != nil {
			return err
		}

		if !a.isMonitoredRepository(owner, repo) {
			logger.Debug("event is for repository that is not monitored", logFieldEventIgnored)
			return nil
		}

		return a.processReviewEvent(ctx, logger, ev, owner, repo)

	case *github.StatusEvent:
		owner, repo, err := eventRepository(ev.GetRepo())
		if err != nil {
			return err
		}

		if !a.isMonitoredRepository(owner, repo) {
			logger.Debug("event is for repository that is not monitored", logFieldEventIgnored)
			return nil
		}

		return a.processStatusEvent(ctx, logger, ev, owner, repo)

	default:
		logger.Debug("event ignored", logFieldEventIgnored)
		return nil
	}
}

// processCheckRunEvent merges all merge-eligible pull requests that are
// listed on a completed check run.
func (a *Automerger) processCheckRunEvent(ctx context.Context, logger *zap.Logger, ev *github.CheckRunEvent, owner, repo string) error {
	if ev.GetAction() != "completed" {
		logger.Debug(
			"ignoring check run event, action is not completed",
			logFieldEventIgnored,
			zap.String("github.check_run_event.action", ev.GetAction()),
		)

		return nil
	}

	checkRun := ev.GetCheckRun()
	if checkRun == nil {
		return fmt.Errorf("check run event misses check_run field: %w", ErrMalformedEvent)
	}

	for _, evPR := range checkRun.PullRequests {
		prNumber := evPR.GetNumber()
		if prNumber <= 0 {
			logger.Warn(
				"skipping pull request of check run, it has no valid number",
				logFieldEventIgnored,
			)

			continue
		}

		a.reconcileForMerge(ctx, logger, owner, repo, prNumber, "")
	}

	return nil
}

// processPullRequestEvent handles the closed and labeled actions of pull
// request events.
// When a labeled pull request was merged, all open labeled pull requests
// with the same base branch became candidates for a branch update.
// When the trigger label was added to a pull request, the pull request is
// updated when it is behind its base or merged when it is merge-eligible.
// The update is preferred over the merge, merging a branch that is behind
// its base would merge untested changes.
func (a *Automerger) processPullRequestEvent(ctx context.Context, logger *zap.Logger, ev *github.PullRequestEvent, owner, repo string) error {
	switch ev.GetAction() {
	case "closed":
		if !ev.GetPullRequest().GetMerged() {
			logger.Debug(
				"ignoring event, pull request was closed without being merged",
				logFieldEventIgnored,
			)

			return nil
		}

		baseBranch := ev.GetPullRequest().GetBase().GetRef()
		if baseBranch == "" {
			return fmt.Errorf("pull request closed event misses base branch: %w", ErrMalformedEvent)
		}

		return a.updatePRsWithBase(ctx, logger, owner, repo, baseBranch)

	case "labeled":
		labelName := ev.GetLabel().GetName()
		if labelName == "" {
			return fmt.Errorf("pull request labeled event has an empty label name: %w", ErrMalformedEvent)
		}

		if labelName != a.triggerLabel {
			return nil
		}

		prNumber := ev.GetNumber()
		if prNumber <= 0 {
			return fmt.Errorf("pull request labeled event has no valid pull request number: %w", ErrMalformedEvent)
		}

		return a.reconcileLabeledPR(ctx, logger, owner, repo, prNumber)

	default:
		logger.Debug(
			"ignoring pull request event",
			logFieldEventIgnored,
			zap.String("github.pull_request_event.action", ev.GetAction()),
		)

		return nil
	}
}

// processReviewEvent merges the reviewed pull request when the submitted
// review approved it and the pull request is merge-eligible.
func (a *Automerger) processReviewEvent(ctx context.Context, logger *zap.Logger, ev *github.PullRequestReviewEvent, owner, repo string) error {
	if ev.GetAction() != "submitted" {
		logger.Debug(
			"ignoring review event, action is not submitted",
			logFieldEventIgnored,
			zap.String("github.review_event.action", ev.GetAction()),
		)

		return nil
	}

	if ev.GetReview().GetState() != "approved" {
		logger.Debug(
			"ignoring review event, review did not approve the pull request",
			logFieldEventIgnored,
			zap.String("github.review_event.state", ev.GetReview().GetState()),
		)

		return nil
	}

	prNumber := ev.GetPullRequest().GetNumber()
	if prNumber <= 0 {
		return fmt.Errorf("review event has no valid pull request number: %w", ErrMalformedEvent)
	}

	a.reconcileForMerge(ctx, logger, owner, repo, prNumber, "")

	return nil
}

// processStatusEvent merges all merge-eligible labeled pull requests whose
// head is the commit the successful status was reported for.
func (a *Automerger) processStatusEvent(ctx context.Context, logger *zap.Logger, ev *github.StatusEvent, owner, repo string) error {
	if ev.GetState() != "success" {
		logger.Debug(
			"ignoring status event with unsuccessful state",
			logFieldEventIgnored,
			zap.String("github.status_event.state", ev.GetState()),
		)

		return nil
	}

	sha := ev.GetSHA()
	if sha == "" {
		return fmt.Errorf("status event misses the commit sha: %w", ErrMalformedEvent)
	}

	logger = logger.With(logfields.Commit(sha))

	issues, err := a.ghClient.SearchOpenPullRequests(ctx, owner, repo, a.triggerLabel, sha)
	if err != nil {
		return fmt.Errorf("searching labeled pull requests for commit %s failed: %w", sha, err)
	}

	for _, issue := range issues {
		prNumber := issue.GetNumber()
		if prNumber <= 0 {
			continue
		}

		a.reconcileForMerge(ctx, logger, owner, repo, prNumber, sha)
	}

	return nil
}

// updatePRsWithBase triggers a branch update for every open labeled pull
// request based on baseBranch that is update-eligible.
func (a *Automerger) updatePRsWithBase(ctx context.Context, logger *zap.Logger, owner, repo, baseBranch string) error {
	logger = logger.With(logfields.BaseBranch(baseBranch))

	issues, err := a.ghClient.SearchOpenPullRequests(ctx, owner, repo, a.triggerLabel, "base:"+baseBranch)
	if err != nil {
		return fmt.Errorf("searching labeled pull requests with base branch %s failed: %w", baseBranch, err)
	}

	for _, issue := range issues {
		prNumber := issue.GetNumber()
		if prNumber <= 0 {
			continue
		}

		prLogger := logger.With(logfields.PullRequest(prNumber))

		pr, err := a.fetchSettledPR(ctx, owner, repo, prNumber)
		if err != nil {
			prLogger.Error(
				"skipping pull request, fetching settled state failed",
				logfields.Event("pull_request_fetch_failed"),
				zap.Error(err),
			)

			continue
		}

		if !a.prReady(prLogger, pr, updateEligibleStates) {
			continue
		}

		a.update(ctx, prLogger, owner, repo, pr)
	}

	return nil
}

// reconcileLabeledPR applies the transition for a freshly labeled pull
// request: update when behind its base, otherwise merge when merge-eligible.
func (a *Automerger) reconcileLabeledPR(ctx context.Context, logger *zap.Logger, owner, repo string, prNumber int) error {
	logger = logger.With(logfields.PullRequest(prNumber))

	pr, err := a.fetchSettledPR(ctx, owner, repo, prNumber)
	if err != nil {
		return fmt.Errorf("fetching settled state of pull request %d failed: %w", prNumber, err)
	}

	if a.prReady(logger, pr, updateEligibleStates) {
		a.update(ctx, logger, owner, repo, pr)
		return nil
	}

	if a.prReady(logger, pr, mergeEligibleStates) {
		a.merge(ctx, logger, owner, repo, pr)
		return nil
	}

	return nil
}

// reconcileForMerge fetches the settled pull request state and merges the
// pull request when it is merge-eligible.
// When expectedHeadSHA is not empty and the head of the pull request moved
// past it, the merge is skipped, acting on the outdated commit would merge
// the wrong state.
// Failures are logged, they are retried naturally by a later event.
func (a *Automerger) reconcileForMerge(ctx context.Context, logger *zap.Logger, owner, repo string, prNumber int, expectedHeadSHA string) {
	logger = logger.With(logfields.PullRequest(prNumber))

	pr, err := a.fetchSettledPR(ctx, owner, repo, prNumber)
	if err != nil {
		logger.Error(
			"skipping pull request, fetching settled state failed",
			logfields.Event("pull_request_fetch_failed"),
			zap.Error(err),
		)

		return
	}

	if expectedHeadSHA != "" && pr.GetHead().GetSHA() != expectedHeadSHA {
		logger.Info(
			"skipping pull request, head moved past the commit the event was for",
			logfields.Event("pull_request_head_outdated"),
			logfields.Commit(expectedHeadSHA),
			zap.String("github.head_commit", pr.GetHead().GetSHA()),
		)

		return
	}

	if !a.prReady(logger, pr, mergeEligibleStates) {
		return
	}

	a.merge(ctx, logger, owner, repo, pr)
}

func eventRepository(repo *github.Repository) (owner, name string, err error) {
	owner = repo.GetOwner().GetLogin()
	name = repo.GetName()

	if owner == "" || name == "" {
		return "", "", fmt.Errorf("event carries no repository owner and name: %w", ErrMalformedEvent)
	}

	return owner, name, nil
}

func (a *Automerger) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.EventLoop()
	}()
}

// Stop waits until the event loop terminated.
// The caller must close the event channel beforehand.
func (a *Automerger) Stop() {
	a.logger.Debug("automerger terminating")

	a.wg.Wait()

	a.logger.Debug("automerger terminated")
}

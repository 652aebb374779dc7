package automerge

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-github/v59/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/squashbot/squashbot/internal/automerge/mocks"
	"github.com/squashbot/squashbot/internal/githubclt"
	github_prov "github.com/squashbot/squashbot/internal/provider/github"
)

const repo = "repo"
const repoOwner = "testman"
const prCreator = "creator"
const triggerLabel = "automerge"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestAutomerger(t *testing.T, clt GithubClient) *Automerger {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	return NewAutomerger(
		clt,
		nil,
		[]Repository{{Owner: repoOwner, RepositoryName: repo}},
		triggerLabel,
	)
}

func processTestEvent(t *testing.T, a *Automerger, ev any) error {
	t.Helper()

	return a.processEvent(
		context.Background(),
		zaptest.NewLogger(t).Named(t.Name()),
		&github_prov.Event{Event: ev},
	)
}

func mockPRSnapshotCall(clt *mocks.MockGithubClient, prNumber int, snapshot *github.PullRequest) *gomock.Call {
	return clt.
		EXPECT().
		PullRequest(gomock.Any(), repoOwner, repo, prNumber).
		Return(snapshot, nil)
}

func mockEmptyCommitListCall(clt *mocks.MockGithubClient, prNumber int) *gomock.Call {
	return clt.
		EXPECT().
		ListPullRequestCommits(gomock.Any(), repoOwner, repo, prNumber).
		DoAndReturn(func(context.Context, string, string, int) githubclt.CommitIterator {
			return &sliceCommitIter{}
		})
}

func mockSuccessfulMergeCall(clt *mocks.MockGithubClient, prNumber int, expectedHeadSHA, expectedMsg string) *gomock.Call {
	return clt.
		EXPECT().
		SquashMergePullRequest(gomock.Any(), repoOwner, repo, prNumber, expectedHeadSHA, expectedMsg).
		Return(nil)
}

func mockSuccessfulUpdateBranchCall(clt *mocks.MockGithubClient, prNumber int, expectedHeadSHA string) *gomock.Call {
	return clt.
		EXPECT().
		UpdateBranch(gomock.Any(), repoOwner, repo, prNumber, expectedHeadSHA).
		Return(nil)
}

func mockSearchCall(clt *mocks.MockGithubClient, extraQueryTerm string, issues ...*github.Issue) *gomock.Call {
	return clt.
		EXPECT().
		SearchOpenPullRequests(gomock.Any(), repoOwner, repo, triggerLabel, extraQueryTerm).
		Return(issues, nil)
}

func TestLabeledEventDispatch(t *testing.T) {
	testcases := []struct {
		mergeableState string
		wantUpdate     bool
		wantMerge      bool
	}{
		{mergeableState: MergeableStateBehind, wantUpdate: true},
		{mergeableState: MergeableStateClean, wantMerge: true},
		{mergeableState: MergeableStateUnstable, wantMerge: true},
		{mergeableState: MergeableStateDirty},
		{mergeableState: MergeableStateBlocked},
		{mergeableState: MergeableStateDraft},
	}

	for _, tc := range testcases {
		t.Run(tc.mergeableState, func(t *testing.T) {
			mockCtrl := gomock.NewController(t)
			clt := mocks.NewMockGithubClient(mockCtrl)
			a := newTestAutomerger(t, clt)

			const prNumber = 1
			const headSHA = "8ad9dec4298f6b8f020997373cf4fe22005f2c06"

			snapshot := newPRSnapshot(prNumber, tc.mergeableState, headSHA, withLabels(triggerLabel))
			mockPRSnapshotCall(clt, prNumber, snapshot)

			if tc.wantUpdate {
				mockSuccessfulUpdateBranchCall(clt, prNumber, headSHA)
			}

			if tc.wantMerge {
				mockEmptyCommitListCall(clt, prNumber)
				mockSuccessfulMergeCall(clt, prNumber, headSHA, "pr description")
			}

			err := processTestEvent(t, a, newPullRequestLabeledEvent(prNumber, triggerLabel))
			require.NoError(t, err)
		})
	}
}

func TestLabeledEventIgnoresOtherLabels(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	err := processTestEvent(t, a, newPullRequestLabeledEvent(1, "documentation"))
	require.NoError(t, err)
}

func TestLabeledEventWithoutTriggerLabelOnPRTakesNoAction(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	// the label was removed again between the event and the fetch
	snapshot := newPRSnapshot(1, MergeableStateClean, "sha", withLabels("documentation"))
	mockPRSnapshotCall(clt, 1, snapshot)

	err := processTestEvent(t, a, newPullRequestLabeledEvent(1, triggerLabel))
	require.NoError(t, err)
}

func TestCheckRunEventMergesListedPRs(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	mergeable := newPRSnapshot(1, MergeableStateClean, "sha-1", withLabels(triggerLabel))
	unmergeable := newPRSnapshot(2, MergeableStateDirty, "sha-2", withLabels(triggerLabel))

	mockPRSnapshotCall(clt, 1, mergeable)
	mockPRSnapshotCall(clt, 2, unmergeable)

	mockEmptyCommitListCall(clt, 1)
	mockSuccessfulMergeCall(clt, 1, "sha-1", "pr description")

	err := processTestEvent(t, a, newCheckRunCompletedEvent(1, 2))
	require.NoError(t, err)
}

func TestCheckRunEventIgnoresOtherActions(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	ev := newCheckRunCompletedEvent(1)
	ev.Action = strPtr("created")

	err := processTestEvent(t, a, ev)
	require.NoError(t, err)
}

func TestCheckRunEventFailedMergeDoesNotAbortSiblings(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	first := newPRSnapshot(1, MergeableStateClean, "sha-1", withLabels(triggerLabel))
	second := newPRSnapshot(2, MergeableStateClean, "sha-2", withLabels(triggerLabel))

	mockPRSnapshotCall(clt, 1, first)
	mockEmptyCommitListCall(clt, 1)
	clt.
		EXPECT().
		SquashMergePullRequest(gomock.Any(), repoOwner, repo, 1, "sha-1", "pr description").
		Return(errors.New("github refused the merge: head changed"))

	mockPRSnapshotCall(clt, 2, second)
	mockEmptyCommitListCall(clt, 2)
	mockSuccessfulMergeCall(clt, 2, "sha-2", "pr description")

	err := processTestEvent(t, a, newCheckRunCompletedEvent(1, 2))
	require.NoError(t, err)
}

func TestDuplicateCheckRunEventsAreHarmless(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	const prNumber = 1
	const headSHA = "sha-1"

	open := newPRSnapshot(prNumber, MergeableStateClean, headSHA, withLabels(triggerLabel))
	merged := newPRSnapshot(prNumber, MergeableStateClean, headSHA, withLabels(triggerLabel), withMerged())

	gomock.InOrder(
		mockPRSnapshotCall(clt, prNumber, open),
		mockPRSnapshotCall(clt, prNumber, merged),
	)

	mockEmptyCommitListCall(clt, prNumber)
	mockSuccessfulMergeCall(clt, prNumber, headSHA, "pr description")

	ev := newCheckRunCompletedEvent(prNumber)

	require.NoError(t, processTestEvent(t, a, ev))
	// the same event delivered again: the PR is merged by now, no second
	// merge is attempted and no error escapes
	require.NoError(t, processTestEvent(t, a, ev))
}

func TestStatusEventMergesPRsWithMatchingHead(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	const sha = "8ad9dec4298f6b8f020997373cf4fe22005f2c06"

	mockSearchCall(clt, sha, newSearchResultIssue(1))

	snapshot := newPRSnapshot(1, MergeableStateClean, sha, withLabels(triggerLabel))
	mockPRSnapshotCall(clt, 1, snapshot)

	mockEmptyCommitListCall(clt, 1)
	mockSuccessfulMergeCall(clt, 1, sha, "pr description")

	err := processTestEvent(t, a, newStatusEvent(sha, "success"))
	require.NoError(t, err)
}

func TestStatusEventSkipsPRWhoseHeadMoved(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	const eventSHA = "8ad9dec4298f6b8f020997373cf4fe22005f2c06"

	mockSearchCall(clt, eventSHA, newSearchResultIssue(1))

	// the PR advanced past the commit the status was reported for
	snapshot := newPRSnapshot(1, MergeableStateClean, "0000000000000000000000000000000000000001", withLabels(triggerLabel))
	mockPRSnapshotCall(clt, 1, snapshot)

	err := processTestEvent(t, a, newStatusEvent(eventSHA, "success"))
	require.NoError(t, err)
}

func TestStatusEventIgnoresUnsuccessfulStates(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	require.NoError(t, processTestEvent(t, a, newStatusEvent("sha", "failure")))
	require.NoError(t, processTestEvent(t, a, newStatusEvent("sha", "pending")))
}

func TestStatusEventWithoutSHAFails(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	ev := newStatusEvent("", "success")
	ev.SHA = nil

	err := processTestEvent(t, a, ev)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestClosedEventUpdatesBehindPRsWithSameBase(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	mockSearchCall(clt, "base:main", newSearchResultIssue(2), newSearchResultIssue(3))

	behind := newPRSnapshot(2, MergeableStateBehind, "sha-2", withLabels(triggerLabel))
	clean := newPRSnapshot(3, MergeableStateClean, "sha-3", withLabels(triggerLabel))

	mockPRSnapshotCall(clt, 2, behind)
	mockPRSnapshotCall(clt, 3, clean)

	// only the behind PR is updated, the clean one needs no base merge
	mockSuccessfulUpdateBranchCall(clt, 2, "sha-2")

	err := processTestEvent(t, a, newPullRequestClosedEvent(1, "main", true))
	require.NoError(t, err)
}

func TestClosedEventIgnoresUnmergedClose(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	err := processTestEvent(t, a, newPullRequestClosedEvent(1, "main", false))
	require.NoError(t, err)
}

func TestReviewApprovedMergesPR(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	snapshot := newPRSnapshot(1, MergeableStateClean, "sha-1", withLabels(triggerLabel))
	mockPRSnapshotCall(clt, 1, snapshot)

	mockEmptyCommitListCall(clt, 1)
	mockSuccessfulMergeCall(clt, 1, "sha-1", "pr description")

	err := processTestEvent(t, a, newReviewSubmittedEvent(1, "approved"))
	require.NoError(t, err)
}

func TestReviewWithoutApprovalIsIgnored(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	err := processTestEvent(t, a, newReviewSubmittedEvent(1, "changes_requested"))
	require.NoError(t, err)
}

func TestEventForUnmonitoredRepositoryIsIgnored(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	ev := newPullRequestLabeledEvent(1, triggerLabel)
	ev.Repo = &github.Repository{
		Name:  strPtr("other-repo"),
		Owner: &github.User{Login: strPtr("other-owner")},
	}

	err := processTestEvent(t, a, ev)
	require.NoError(t, err)
}

func TestEventWithoutRepositoryFails(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)
	a := newTestAutomerger(t, clt)

	ev := newPullRequestLabeledEvent(1, triggerLabel)
	ev.Repo = &github.Repository{}

	err := processTestEvent(t, a, ev)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestEventLoopProcessesForwardedEvents(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	clt := mocks.NewMockGithubClient(mockCtrl)

	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	evChan := make(chan *github_prov.Event, 1)
	a := NewAutomerger(
		clt,
		evChan,
		[]Repository{{Owner: repoOwner, RepositoryName: repo}},
		triggerLabel,
	)

	snapshot := newPRSnapshot(1, MergeableStateBehind, "sha-1", withLabels(triggerLabel))
	mockPRSnapshotCall(clt, 1, snapshot)
	updated := make(chan struct{})
	clt.
		EXPECT().
		UpdateBranch(gomock.Any(), repoOwner, repo, 1, "sha-1").
		DoAndReturn(func(context.Context, string, string, int, string) error {
			close(updated)
			return nil
		})

	a.Start()

	evChan <- &github_prov.Event{Event: newPullRequestLabeledEvent(1, triggerLabel)}

	<-updated

	close(evChan)
	a.Stop()
}

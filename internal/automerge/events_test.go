package automerge

import (
	"github.com/google/go-github/v59/github"
)

func strPtr(in string) *string {
	return &in
}

func intPtr(in int) *int {
	return &in
}

func boolPtr(in bool) *bool {
	return &in
}

func newTestRepository() *github.Repository {
	return &github.Repository{
		Name: strPtr(repo),
		Owner: &github.User{
			Login: strPtr(repoOwner),
		},
	}
}

func newCheckRunCompletedEvent(prNumbers ...int) *github.CheckRunEvent {
	checkRun := github.CheckRun{}

	for _, nr := range prNumbers {
		checkRun.PullRequests = append(checkRun.PullRequests, &github.PullRequest{
			Number: intPtr(nr),
		})
	}

	return &github.CheckRunEvent{
		Action:   strPtr("completed"),
		CheckRun: &checkRun,
		Repo:     newTestRepository(),
	}
}

func newPullRequestClosedEvent(prNumber int, baseBranchName string, merged bool) *github.PullRequestEvent {
	return &github.PullRequestEvent{
		Action: strPtr("closed"),
		Number: intPtr(prNumber),
		PullRequest: &github.PullRequest{
			Number: intPtr(prNumber),
			Merged: boolPtr(merged),
			Base: &github.PullRequestBranch{
				Ref: strPtr(baseBranchName),
			},
		},
		Repo: newTestRepository(),
	}
}

func newPullRequestLabeledEvent(prNumber int, label string) *github.PullRequestEvent {
	return &github.PullRequestEvent{
		Action: strPtr("labeled"),
		Number: intPtr(prNumber),
		Label: &github.Label{
			Name: strPtr(label),
		},
		PullRequest: &github.PullRequest{
			Number: intPtr(prNumber),
		},
		Repo: newTestRepository(),
	}
}

func newReviewSubmittedEvent(prNumber int, state string) *github.PullRequestReviewEvent {
	return &github.PullRequestReviewEvent{
		Action: strPtr("submitted"),
		Review: &github.PullRequestReview{State: strPtr(state)},
		PullRequest: &github.PullRequest{
			Number: intPtr(prNumber),
		},
		Repo: newTestRepository(),
	}
}

func newStatusEvent(sha, state string) *github.StatusEvent {
	return &github.StatusEvent{
		State: strPtr(state),
		SHA:   strPtr(sha),
		Repo:  newTestRepository(),
	}
}

type prSnapshotOpt func(*github.PullRequest)

func withLabels(labels ...string) prSnapshotOpt {
	return func(pr *github.PullRequest) {
		for _, l := range labels {
			pr.Labels = append(pr.Labels, &github.Label{Name: strPtr(l)})
		}
	}
}

func withClosed() prSnapshotOpt {
	return func(pr *github.PullRequest) {
		pr.State = strPtr("closed")
		pr.ClosedAt = &github.Timestamp{}
	}
}

func withMerged() prSnapshotOpt {
	return func(pr *github.PullRequest) {
		withClosed()(pr)
		pr.Merged = boolPtr(true)
	}
}

func withBody(body string) prSnapshotOpt {
	return func(pr *github.PullRequest) {
		pr.Body = strPtr(body)
	}
}

// newPRSnapshot returns the pull request object that a fetch from the host
// would return.
func newPRSnapshot(prNumber int, mergeableState, headSHA string, opts ...prSnapshotOpt) *github.PullRequest {
	pr := github.PullRequest{
		Number:         intPtr(prNumber),
		State:          strPtr("open"),
		MergeableState: strPtr(mergeableState),
		Body:           strPtr("pr description"),
		User: &github.User{
			Login: strPtr(prCreator),
		},
		Head: &github.PullRequestBranch{
			SHA: strPtr(headSHA),
			Ref: strPtr("feature-branch"),
		},
		Base: &github.PullRequestBranch{
			Ref: strPtr("main"),
		},
	}

	for _, opt := range opts {
		opt(&pr)
	}

	return &pr
}

func newSearchResultIssue(prNumber int) *github.Issue {
	return &github.Issue{
		Number: intPtr(prNumber),
	}
}

func newCommit(login, accountType, name, email string, parentCount int) *github.RepositoryCommit {
	commit := github.RepositoryCommit{
		Commit: &github.Commit{
			Author: &github.CommitAuthor{
				Name:  strPtr(name),
				Email: strPtr(email),
			},
		},
	}

	for i := 0; i < parentCount; i++ {
		commit.Parents = append(commit.Parents, &github.Commit{})
	}

	if login != "" {
		commit.Author = &github.User{
			Login: strPtr(login),
			Type:  strPtr(accountType),
		}
	}

	return &commit
}

// sliceCommitIter implements githubclt.CommitIterator over a fixed commit
// list.
type sliceCommitIter struct {
	commits []*github.RepositoryCommit
	err     error
}

func (it *sliceCommitIter) Next() (*github.RepositoryCommit, error) {
	if it.err != nil {
		return nil, it.err
	}

	if len(it.commits) == 0 {
		return nil, nil
	}

	result := it.commits[0]
	it.commits = it.commits[1:]

	return result, nil
}

// Package githubclt provides a github API client.
package githubclt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v59/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/squashbot/squashbot/internal/ghretry"
	"github.com/squashbot/squashbot/internal/logfields"
)

const DefaultHTTPClientTimeout = time.Minute

const loggerName = "github_client"

// New returns a new github api client.
func New(oauthAPItoken string) *Client {
	httpClient := newHTTPClient(oauthAPItoken)
	return &Client{
		restClt: github.NewClient(httpClient),
		logger:  zap.L().Named(loggerName),
	}
}

func newHTTPClient(apiToken string) *http.Client {
	if apiToken == "" {
		return &http.Client{
			Timeout: DefaultHTTPClientTimeout,
		}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: apiToken},
	)

	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = DefaultHTTPClientTimeout

	return tc
}

// Client is a github API client.
// All methods return a ghretry.RetryableError when an operation can be
// retried. This can be e.g. the case when the API ratelimit is exceeded.
type Client struct {
	restClt *github.Client
	logger  *zap.Logger
}

// PullRequest returns the current snapshot of a pull request.
// The returned object is a point-in-time view, github computes some of its
// fields, like the mergeable state, asynchronously.
func (clt *Client) PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := clt.restClt.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, clt.wrapRetryableErrors(err)
	}

	return pr, nil
}

// SquashMergePullRequest squash-merges a pull request.
// expectedHeadSHA is passed to github, the merge is refused when the head of
// the pull request branch does not match it anymore.
func (clt *Client) SquashMergePullRequest(ctx context.Context, owner, repo string, number int, expectedHeadSHA, commitMessage string) error {
	result, _, err := clt.restClt.PullRequests.Merge(
		ctx,
		owner,
		repo,
		number,
		commitMessage,
		&github.PullRequestOptions{
			SHA:         expectedHeadSHA,
			MergeMethod: "squash",
		},
	)
	if err != nil {
		return clt.wrapRetryableErrors(err)
	}

	if !result.GetMerged() {
		return fmt.Errorf("github refused the merge: %s", result.GetMessage())
	}

	clt.logger.Debug(
		"pull request was squash-merged",
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
		logfields.PullRequest(number),
		logfields.Commit(result.GetSHA()),
		logfields.Event("github_pull_request_merged"),
	)

	return nil
}

// UpdateBranch merges the base branch into the pull request branch.
// expectedHeadSHA is passed to github, the update is refused when the head
// of the pull request branch does not match it anymore.
// Github normally only schedules the update and answers with an accepted
// response, this is treated as success.
func (clt *Client) UpdateBranch(ctx context.Context, owner, repo string, number int, expectedHeadSHA string) error {
	_, _, err := clt.restClt.PullRequests.UpdateBranch(
		ctx,
		owner,
		repo,
		number,
		&github.PullRequestBranchUpdateOptions{ExpectedHeadSHA: &expectedHeadSHA},
	)
	if err != nil {
		var acceptedErr *github.AcceptedError
		if errors.As(err, &acceptedErr) {
			clt.logger.Debug(
				"updating branch with base branch scheduled",
				logfields.RepositoryOwner(owner),
				logfields.Repository(repo),
				logfields.PullRequest(number),
				logfields.Commit(expectedHeadSHA),
				logfields.Event("github_branch_update_scheduled"),
			)

			return nil
		}

		var respErr *github.ErrorResponse
		if errors.As(err, &respErr) && respErr.Response.StatusCode == http.StatusUnprocessableEntity {
			if strings.Contains(respErr.Message, "merge conflict") {
				return fmt.Errorf("merge conflict: %w", respErr)
			}

			if strings.Contains(respErr.Message, "expected head sha didn’t match current head ref") {
				return fmt.Errorf("pull request branch changed since it was fetched: %w", respErr)
			}
		}

		return clt.wrapRetryableErrors(err)
	}

	return nil
}

// CommitIterator iterates over the commits of a pull request.
type CommitIterator interface {
	Next() (*github.RepositoryCommit, error)
}

type CommitIter struct {
	clt *Client

	ctx    context.Context
	owner  string
	repo   string
	number int

	unseen []*github.RepositoryCommit

	nextPage int
	finished bool
}

// Next returns the next commit of the pull request, in chronological order.
// When the last commit was returned a nil commit is returned.
func (it *CommitIter) Next() (*github.RepositoryCommit, error) {
	if len(it.unseen) > 0 {
		result := it.unseen[0]
		it.unseen = it.unseen[1:]

		return result, nil
	}

	if it.finished {
		return nil, nil
	}

	commits, resp, err := it.clt.restClt.PullRequests.ListCommits(it.ctx, it.owner, it.repo, it.number, &github.ListOptions{
		Page:    it.nextPage,
		PerPage: 100,
	})
	if err != nil {
		return nil, it.clt.wrapRetryableErrors(err)
	}

	if resp.NextPage == 0 || len(commits) == 0 {
		it.finished = true
	} else {
		it.nextPage = resp.NextPage
	}

	it.unseen = commits

	if len(it.unseen) == 0 {
		return nil, nil
	}

	return it.Next()
}

// ListPullRequestCommits returns an iterator for receiving all commits of a
// pull request.
func (clt *Client) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) CommitIterator { // interface is returned to make the method mockable
	return &CommitIter{
		clt:      clt,
		ctx:      ctx,
		owner:    owner,
		repo:     repo,
		number:   number,
		nextPage: 1,
	}
}

// SearchOpenPullRequests returns all open pull requests of the repository
// that carry the given label.
// extraQueryTerm is appended to the search query, it can be used to restrict
// the result further, e.g. to a base branch ("base:main") or a commit sha.
// When github reports an incomplete result set, a warning is logged and the
// partial result is returned.
func (clt *Client) SearchOpenPullRequests(ctx context.Context, owner, repo, label, extraQueryTerm string) ([]*github.Issue, error) {
	var result []*github.Issue

	query := buildSearchQuery(owner, repo, label, extraQueryTerm)
	opts := github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		searchResult, resp, err := clt.restClt.Search.Issues(ctx, query, &opts)
		if err != nil {
			return nil, clt.wrapRetryableErrors(err)
		}

		if searchResult.GetIncompleteResults() {
			clt.logger.Warn(
				"github returned an incomplete search result, continuing with partial result set",
				logfields.RepositoryOwner(owner),
				logfields.Repository(repo),
				logfields.Event("github_incomplete_search_result"),
				zap.String("github.search_query", query),
			)
		}

		result = append(result, searchResult.Issues...)

		if resp.NextPage == 0 {
			return result, nil
		}

		opts.Page = resp.NextPage
	}
}

func buildSearchQuery(owner, repo, label, extraQueryTerm string) string {
	query := fmt.Sprintf("is:pr is:open repo:%s/%s label:%q", owner, repo, label)
	if extraQueryTerm != "" {
		query += " " + extraQueryTerm
	}

	return query
}

func (clt *Client) wrapRetryableErrors(err error) error {
	switch v := err.(type) {
	case *github.RateLimitError:
		clt.logger.Info(
			"rate limit exceeded",
			logfields.Event("github_api_rate_limit_exceeded"),
			zap.Int("github_api_rate_limit", v.Rate.Limit),
			zap.Time("github_api_rate_limit_reset_time", v.Rate.Reset.Time),
		)

		return ghretry.NewRetryableError(err, v.Rate.Reset.Time)

	case *github.ErrorResponse:
		if v.Response.StatusCode >= 500 && v.Response.StatusCode < 600 {
			return ghretry.NewRetryableAnytimeError(err)
		}
	}

	return err
}

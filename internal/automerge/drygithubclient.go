package automerge

import (
	"context"

	"github.com/google/go-github/v59/github"
	"go.uber.org/zap"

	"github.com/squashbot/squashbot/internal/githubclt"
)

// DryGithubClient is a github client that does not do any changes on github.
// All operations that could cause a change are simulated and always succeed.
// All other operations are forwarded to a wrapped GithubClient.
type DryGithubClient struct {
	clt    GithubClient
	logger *zap.Logger
}

func NewDryGithubClient(clt GithubClient, logger *zap.Logger) *DryGithubClient {
	return &DryGithubClient{
		clt:    clt,
		logger: logger.Named("dry_github_client"),
	}
}

func (c *DryGithubClient) PullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	return c.clt.PullRequest(ctx, owner, repo, number)
}

func (c *DryGithubClient) ListPullRequestCommits(ctx context.Context, owner, repo string, number int) githubclt.CommitIterator {
	return c.clt.ListPullRequestCommits(ctx, owner, repo, number)
}

func (c *DryGithubClient) SearchOpenPullRequests(ctx context.Context, owner, repo, label, extraQueryTerm string) ([]*github.Issue, error) {
	return c.clt.SearchOpenPullRequests(ctx, owner, repo, label, extraQueryTerm)
}

func (c *DryGithubClient) SquashMergePullRequest(context.Context, string, string, int, string, string) error {
	c.logger.Info("simulated squash-merging of pull request, no merge done on github")
	return nil
}

func (c *DryGithubClient) UpdateBranch(context.Context, string, string, int, string) error {
	c.logger.Info("simulated updating of github branch, no update done on github")
	return nil
}

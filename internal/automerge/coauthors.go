package automerge

import (
	"context"
	"fmt"

	"github.com/squashbot/squashbot/internal/orderedmap"
)

// Author is a commit author.
// Two authors are the same person when their commits resolve to the same
// github account, the name and email are only display values and can differ
// between commits of the same account.
type Author struct {
	Name  string
	Email string
}

func (a *Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// collectCoAuthors walks the commits of a pull request in chronological
// order and returns the distinct human co-authors, ordered by their first
// appearance.
// Skipped are merge commits, commits whose author does not resolve to a
// github account, commits of the pull request creator and commits of bot
// accounts.
// Commits are deduplicated by the author's account login, the name/email
// pair of the first seen commit of an account is kept.
func (a *Automerger) collectCoAuthors(ctx context.Context, owner, repo string, number int, creatorLogin string) ([]*Author, error) {
	authors := orderedmap.New[string, *Author]()

	it := a.ghClient.ListPullRequestCommits(ctx, owner, repo, number)
	for {
		commit, err := it.Next()
		if err != nil {
			return nil, fmt.Errorf("listing commits of pull request %d failed: %w", number, err)
		}

		if commit == nil {
			break
		}

		if len(commit.Parents) > 1 {
			// merge commit, does not represent authored work
			continue
		}

		account := commit.GetAuthor()
		if account == nil || account.GetLogin() == "" {
			continue
		}

		if account.GetLogin() == creatorLogin {
			continue
		}

		if account.GetType() == "Bot" {
			continue
		}

		commitAuthor := commit.GetCommit().GetAuthor()
		authors.InsertIfNotExist(account.GetLogin(), &Author{
			Name:  commitAuthor.GetName(),
			Email: commitAuthor.GetEmail(),
		})
	}

	return authors.AsSlice(), nil
}

package automerge

import (
	"fmt"
	"strings"
)

// buildCommitMessage combines the pull request body with co-author trailer
// lines into the message of the squashed commit.
// The body is used instead of the concatenated commit subjects to keep the
// squashed history readable, the trailers grant commit credit without
// changing the primary authorship.
func buildCommitMessage(body string, coAuthors []*Author) string {
	if len(coAuthors) == 0 {
		return body
	}

	var sb strings.Builder

	sb.WriteString(body)
	sb.WriteString("\n")

	for _, author := range coAuthors {
		fmt.Fprintf(&sb, "\nCo-authored-by: %s <%s>", author.Name, author.Email)
	}

	return sb.String()
}

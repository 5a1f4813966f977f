package publish

import (
	"fmt"
	"path"
	"strings"

	"github.com/oukeidos/docsync/internal/resolve"
)

// BranchPrefix namespaces every publication branch.
const BranchPrefix = "docs/"

func trimDocExtension(p string) string {
	return strings.TrimSuffix(p, path.Ext(p))
}

// BranchName maps a document path to its publication branch, e.g.
// "docs/useform/register.mdx" -> "docs/docs-useform-register". The same path
// always yields the same branch, which makes re-runs overwrite.
func BranchName(p string) string {
	return BranchPrefix + strings.ReplaceAll(trimDocExtension(p), "/", "-")
}

// CommitMessage is also used as the pull request title.
func CommitMessage(p string, mode resolve.Mode) string {
	name := trimDocExtension(p)
	if mode == resolve.ModeSync {
		return "docs: sync " + name
	}
	return "docs: translate " + name
}

// PullRequestBody renders the change request description. issue <= 0 omits
// the closing reference.
func PullRequestBody(p string, mode resolve.Mode, issue int, model string) string {
	label, verb := "Translation", "translated"
	if mode == resolve.ModeSync {
		label, verb = "Synchronization", "synchronized"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s: `%s`\n\n", label, p)
	if model != "" {
		fmt.Fprintf(&b, "Automatically %s with %s.\n", verb, model)
	} else {
		fmt.Fprintf(&b, "Automatically %s.\n", verb)
	}
	b.WriteString("Please review before merging.")
	if issue > 0 {
		fmt.Fprintf(&b, "\n\nCloses #%d", issue)
	}
	return b.String()
}

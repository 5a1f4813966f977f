package resolve

import (
	"regexp"
	"strings"
)

// Action is the verb at the end of a docs issue title.
type Action string

const (
	ActionAdd     Action = "Add"
	ActionSync    Action = "Sync"
	ActionMigrate Action = "Migrate"
	ActionRemove  Action = "Remove"
)

// issueTitlePattern matches "[Docs] <path> — <Action>". The separator is an
// em dash (U+2014).
var issueTitlePattern = regexp.MustCompile(`^\[Docs\]\s+(.+?)\s+\x{2014}\s+(Add|Sync|Migrate|Remove)$`)

// ParseIssueTitle extracts document references from an issue title. A title
// that does not follow the convention yields no references.
func ParseIssueTitle(title string) []string {
	refs, _, ok := ParseIssueTitleAction(title)
	if !ok {
		return []string{}
	}
	return refs
}

// ParseIssueTitleAction is ParseIssueTitle plus the trailing action.
func ParseIssueTitleAction(title string) ([]string, Action, bool) {
	m := issueTitlePattern.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return nil, "", false
	}
	return []string{strings.TrimSpace(m[1])}, Action(m[2]), true
}

// ParseFileList splits a comma-separated list, trimming entries and dropping
// blanks.
func ParseFileList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

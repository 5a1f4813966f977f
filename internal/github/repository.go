package github

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseRepository accepts "owner/repo", an HTTPS clone URL or an SCP-style
// SSH URL and returns owner and repo.
func ParseRepository(s string) (owner, repo string, err error) {
	s = strings.TrimSpace(s)
	rest := s
	switch {
	case strings.Contains(s, "://"):
		u, perr := url.Parse(s)
		if perr != nil {
			return "", "", fmt.Errorf("parse repository URL %q: %w", s, perr)
		}
		rest = u.Path
	case strings.HasPrefix(s, "git@"):
		_, after, ok := strings.Cut(s, ":")
		if !ok {
			return "", "", fmt.Errorf("invalid repository %q", s)
		}
		rest = after
	}
	rest = strings.TrimSuffix(strings.Trim(rest, "/"), ".git")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/repo", s)
	}
	return parts[0], parts[1], nil
}

package translate

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	headingLinePattern = regexp.MustCompile(`(?m)^#{1,6}\s`)
	fenceLinePattern   = regexp.MustCompile("(?m)^```")
	frontmatterPattern = regexp.MustCompile(`(?s)\A---\n(.*?)\n---`)
	titleKeyPattern    = regexp.MustCompile(`(?m)^title:`)
)

// ValidationReport lists advisory warnings. Failing validation never blocks
// saving or publishing.
type ValidationReport struct {
	Passed   bool     `json:"passed"`
	Warnings []string `json:"warnings"`
}

// Validate compares heading counts, fence marker counts and frontmatter
// between origin and translated text.
func Validate(origin, translated string) ValidationReport {
	warnings := []string{}

	originHeadings := len(headingLinePattern.FindAllStringIndex(origin, -1))
	translatedHeadings := len(headingLinePattern.FindAllStringIndex(translated, -1))
	if originHeadings != translatedHeadings {
		warnings = append(warnings, fmt.Sprintf("heading count mismatch: origin %d, translated %d", originHeadings, translatedHeadings))
	}

	originFences := len(fenceLinePattern.FindAllStringIndex(origin, -1))
	translatedFences := len(fenceLinePattern.FindAllStringIndex(translated, -1))
	if originFences != translatedFences {
		warnings = append(warnings, fmt.Sprintf("code fence count mismatch: origin %d, translated %d", originFences, translatedFences))
	}

	if m := frontmatterPattern.FindStringSubmatch(translated); m != nil {
		warnings = append(warnings, checkFrontmatter(m[1])...)
	} else if strings.HasPrefix(origin, "---\n") {
		warnings = append(warnings, "translation has no frontmatter")
	}

	return ValidationReport{
		Passed:   len(warnings) == 0,
		Warnings: warnings,
	}
}

func checkFrontmatter(body string) []string {
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(body), &fields); err != nil {
		// Fall back to a line check so a malformed block still reports a
		// missing title.
		out := []string{"frontmatter is not valid YAML"}
		if !titleKeyPattern.MatchString(body) {
			out = append(out, "frontmatter has no title field")
		}
		return out
	}
	if _, ok := fields["title"]; !ok {
		return []string{"frontmatter has no title field"}
	}
	return nil
}

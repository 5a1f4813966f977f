// Package structure derives structural fingerprints from markdown documents
// and compares them to detect drift between a source document and its translation.
package structure

import (
	"fmt"
	"regexp"
	"strings"
)

// LineTolerance is the smallest line-count difference reported as drift.
// Smaller differences are prose-length variation between languages.
const LineTolerance = 10

// Fingerprint is a compact structural signature of a document.
type Fingerprint struct {
	HeadingCount   int `json:"heading_count"`
	CodeBlockCount int `json:"code_block_count"`
	TableRowCount  int `json:"table_row_count"`
	LineCount      int `json:"line_count"`
}

var (
	headingPattern      = regexp.MustCompile(`^#{1,6}\s`)
	tableSeparatorRegex = regexp.MustCompile(`^\|[\s\-:|]+\|$`)
)

const fenceMarker = "```"

// ExtractStructure scans content line by line and counts headings, fenced code
// blocks and table rows. Lines inside a fence are ignored; a fence is counted
// once per opening marker, so an unterminated fence swallows the rest of the document.
func ExtractStructure(content string) Fingerprint {
	lines := strings.Split(content, "\n")
	fp := Fingerprint{LineCount: len(lines)}

	inFence := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, fenceMarker) {
			if !inFence {
				fp.CodeBlockCount++
			}
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if headingPattern.MatchString(trimmed) {
			fp.HeadingCount++
		}
		if isTableRow(trimmed) {
			fp.TableRowCount++
		}
	}
	return fp
}

func isTableRow(trimmed string) bool {
	return strings.HasPrefix(trimmed, "|") && !tableSeparatorRegex.MatchString(trimmed)
}

// CompareStructures returns the drift reasons between an origin and a translated
// fingerprint, in a fixed order: table rows, headings, code blocks, line count.
// An empty result means the translation is structurally in sync.
func CompareStructures(origin, translated Fingerprint) []string {
	var reasons []string

	if origin.TableRowCount != translated.TableRowCount {
		reasons = append(reasons, fmt.Sprintf("table row count differs (origin: %d, translated: %d)",
			origin.TableRowCount, translated.TableRowCount))
	}
	if origin.HeadingCount != translated.HeadingCount {
		reasons = append(reasons, fmt.Sprintf("heading count differs (origin: %d, translated: %d)",
			origin.HeadingCount, translated.HeadingCount))
	}
	if origin.CodeBlockCount != translated.CodeBlockCount {
		reasons = append(reasons, fmt.Sprintf("code block count differs (origin: %d, translated: %d)",
			origin.CodeBlockCount, translated.CodeBlockCount))
	}
	if diff := abs(origin.LineCount - translated.LineCount); diff >= LineTolerance {
		reasons = append(reasons, fmt.Sprintf("line count differs by %d (origin: %d, translated: %d)",
			diff, origin.LineCount, translated.LineCount))
	}

	return reasons
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

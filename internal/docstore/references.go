package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rivo/uniseg"
)

const (
	// MaxReferenceFiles is the number of exemplars sampled from the translated root.
	MaxReferenceFiles = 2
	// MinReferenceLength excludes stubs; a document must be longer than this.
	MinReferenceLength = 200
	// ReferenceExcerptLength caps each exemplar.
	ReferenceExcerptLength = 3000
)

// ReferenceFiles samples up to MaxReferenceFiles existing translations to
// bias tone and terminology. Lengths are measured in grapheme clusters.
// The walk is depth-first and stops at the first matches; it is a cheap
// sample, not a representative one.
func (s *Store) ReferenceFiles() ([]Document, error) {
	var refs []Document
	var readErr error
	err := s.walk(s.TranslatedRoot, func(rel string, _ os.DirEntry) bool {
		if !strings.HasSuffix(rel, s.Extension) {
			return true
		}
		data, err := os.ReadFile(filepath.Join(s.TranslatedRoot, filepath.FromSlash(rel)))
		if err != nil {
			readErr = fmt.Errorf("read reference %s: %w", rel, err)
			return false
		}
		content := string(data)
		if uniseg.GraphemeClusterCount(content) <= MinReferenceLength {
			return true
		}
		refs = append(refs, Document{Path: rel, Content: Truncate(content, ReferenceExcerptLength)})
		return len(refs) < MaxReferenceFiles
	})
	if err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}
	return refs, nil
}

// Truncate returns at most n grapheme clusters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	g := uniseg.NewGraphemes(s)
	count := 0
	for g.Next() {
		if count == n {
			from, _ := g.Positions()
			return s[:from]
		}
		count++
	}
	return s
}

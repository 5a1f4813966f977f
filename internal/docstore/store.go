// Package docstore reads and writes documents under the origin and translated
// roots. Documents are addressed by slash-separated paths relative to a root.
package docstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oukeidos/docsync/internal/files"
)

// DefaultExtension is the document extension appended to bare references.
const DefaultExtension = ".mdx"

// Document is a relative path plus raw text content.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Store gives access to the two document roots.
type Store struct {
	OriginRoot     string
	TranslatedRoot string
	Extension      string
}

// New returns a Store; an empty extension defaults to DefaultExtension.
func New(originRoot, translatedRoot, extension string) *Store {
	if extension == "" {
		extension = DefaultExtension
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	return &Store{
		OriginRoot:     originRoot,
		TranslatedRoot: translatedRoot,
		Extension:      extension,
	}
}

// OriginPath returns the filesystem path of rel under the origin root.
func (s *Store) OriginPath(rel string) string {
	return filepath.Join(s.OriginRoot, filepath.FromSlash(rel))
}

// TranslatedPath returns the filesystem path of rel under the translated root.
func (s *Store) TranslatedPath(rel string) string {
	return filepath.Join(s.TranslatedRoot, filepath.FromSlash(rel))
}

// WithExtension appends the store extension when ref does not already carry it.
func (s *Store) WithExtension(ref string) string {
	if strings.HasSuffix(ref, s.Extension) {
		return ref
	}
	return ref + s.Extension
}

// TrimExtension removes the store extension from rel, if present.
func (s *Store) TrimExtension(rel string) string {
	return strings.TrimSuffix(rel, s.Extension)
}

// OriginExists reports whether rel names a regular file under the origin root.
func (s *Store) OriginExists(rel string) bool {
	info, err := os.Stat(s.OriginPath(rel))
	return err == nil && info.Mode().IsRegular()
}

// Origin reads rel from the origin root.
func (s *Store) Origin(rel string) (string, error) {
	data, err := os.ReadFile(s.OriginPath(rel))
	if err != nil {
		return "", fmt.Errorf("read origin document %s: %w", rel, err)
	}
	return string(data), nil
}

// Translated reads rel from the translated root. ok is false when no
// translation exists yet; an empty file counts as no translation.
func (s *Store) Translated(rel string) (content string, ok bool, err error) {
	data, err := os.ReadFile(s.TranslatedPath(rel))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read translated document %s: %w", rel, err)
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

// Save writes content to rel under the translated root, creating directories
// as needed, and returns the written filesystem path.
func (s *Store) Save(rel, content string) (string, error) {
	if err := files.RejectSymlinkBelow(s.TranslatedRoot, rel); err != nil {
		return "", err
	}
	dest := s.TranslatedPath(rel)
	if err := files.AtomicWrite(dest, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("save translation %s: %w", rel, err)
	}
	return dest, nil
}

// WalkOrigin lists every document under the origin root, sorted.
func (s *Store) WalkOrigin() ([]string, error) {
	var out []string
	err := s.walk(s.OriginRoot, func(rel string, _ fs.DirEntry) bool {
		if strings.HasSuffix(rel, s.Extension) {
			out = append(out, rel)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// FindByBaseName returns every origin file whose base name equals base, in
// depth-first traversal order.
func (s *Store) FindByBaseName(base string) ([]string, error) {
	var out []string
	err := s.walk(s.OriginRoot, func(rel string, _ fs.DirEntry) bool {
		if path.Base(rel) == base {
			out = append(out, rel)
		}
		return true
	})
	return out, err
}

// walk visits regular files below root depth-first in lexical order until
// visit returns false. A missing root is treated as empty.
func (s *Store) walk(root string, visit func(rel string, d fs.DirEntry) bool) error {
	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if !visit(filepath.ToSlash(rel), d) {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}
	return nil
}

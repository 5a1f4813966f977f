// Package language resolves the target language of a translation run.
package language

import (
	"fmt"
	"strings"

	"github.com/oukeidos/docsync/internal/apperrors"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultTarget is the translation target when none is configured.
const DefaultTarget = "ko"

// Language is a validated BCP 47 target language.
type Language struct {
	Code string
	Tag  language.Tag
	// Name is the English display name used in prompts, e.g. "Korean".
	Name string
	// Native is the self-name, e.g. "한국어".
	Native string
}

// Parse validates a BCP 47 code such as "ko", "ja" or "zh-Hant".
func Parse(code string) (Language, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Language{}, apperrors.Config("target language is required")
	}
	tag, err := language.Parse(code)
	if err != nil {
		return Language{}, apperrors.New(apperrors.KindConfig, fmt.Sprintf("invalid target language %q", code), err)
	}
	if tag == language.Und {
		return Language{}, apperrors.Config(fmt.Sprintf("target language %q is undetermined", code))
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		return Language{}, apperrors.Config(fmt.Sprintf("unsupported target language %q", code))
	}
	return Language{
		Code:   tag.String(),
		Tag:    tag,
		Name:   name,
		Native: display.Self.Name(tag),
	}, nil
}

// String returns "Name (code)".
func (l Language) String() string {
	return fmt.Sprintf("%s (%s)", l.Name, l.Code)
}

package translate

import (
	"fmt"
	"strings"

	"github.com/oukeidos/docsync/internal/docstore"
)

// PromptOptions names the languages and subject of the documentation.
type PromptOptions struct {
	SourceName string
	TargetName string
	// Project is the documentation subject, e.g. "React Hook Form".
	Project string
}

func (o PromptOptions) withDefaults() PromptOptions {
	if o.SourceName == "" {
		o.SourceName = "English"
	}
	if o.TargetName == "" {
		o.TargetName = "Korean"
	}
	return o
}

func (o PromptOptions) subject() string {
	if o.Project == "" {
		return "technical"
	}
	return o.Project
}

// BuildSystemPrompt embeds the rules document verbatim and appends the
// reference exemplars, if any.
func BuildSystemPrompt(rules string, opts PromptOptions, refs []docstore.Document) string {
	opts = opts.withDefaults()
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert %s translator specializing in %s documentation.
Follow the translation rules below EXACTLY.

<translation-rules>
%s
</translation-rules>

CRITICAL INSTRUCTIONS:
- Output ONLY the translated document content. Do NOT wrap it in code fences.
- Preserve all frontmatter (YAML between ---) exactly, but translate the "title" and "description" fields to %s.
- Keep all code blocks, JSX, imports, and component tags unchanged.
- Maintain the exact same markdown structure (headings, lists, tables, blank lines).
- Do NOT add any explanations, notes, or commentary before or after the translation.`,
		opts.TargetName, opts.subject(), rules, opts.TargetName)

	if len(refs) > 0 {
		b.WriteString("\n\nHere are existing translated files for tone/style reference:")
		for _, ref := range refs {
			fmt.Fprintf(&b, "\n\n<reference-file path=%q>\n%s\n</reference-file>", ref.Path, ref.Content)
		}
	}
	return b.String()
}

// BuildNewPrompt asks for a first translation of origin.
func BuildNewPrompt(origin string, opts PromptOptions) string {
	opts = opts.withDefaults()
	return fmt.Sprintf(`Translate the following %s documentation from %s to %s.

<source-document>
%s
</source-document>`, opts.subject(), opts.SourceName, opts.TargetName, origin)
}

// BuildSyncPrompt asks for the complete updated translation, keeping the
// existing wording where the origin did not change.
func BuildSyncPrompt(origin, existing string, opts PromptOptions) string {
	opts = opts.withDefaults()
	return fmt.Sprintf(`The original %s documentation has been updated. Update the existing %s translation to match the new original while preserving the existing translation style and terminology.

<updated-original>
%s
</updated-original>

<existing-translation>
%s
</existing-translation>

Output the FULL updated %s translation. Preserve parts that haven't changed in the original.`,
		opts.SourceName, opts.TargetName, origin, existing, opts.TargetName)
}

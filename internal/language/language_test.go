package language

import (
	"testing"

	"github.com/oukeidos/docsync/internal/apperrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		code     string
		wantCode string
		wantName string
	}{
		{"ko", "ko", "Korean"},
		{" ja ", "ja", "Japanese"},
		{"zh-Hant", "zh-Hant", "Traditional Chinese"},
		{"pt-BR", "pt-BR", "Brazilian Portuguese"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			lang, err := Parse(tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if lang.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, lang.Code)
			}
			if lang.Name != tt.wantName {
				t.Errorf("expected name %s, got %s", tt.wantName, lang.Name)
			}
		})
	}
}

func TestParse_Native(t *testing.T) {
	lang, err := Parse("ko")
	if err != nil {
		t.Fatal(err)
	}
	if lang.Native != "한국어" {
		t.Fatalf("expected 한국어, got %q", lang.Native)
	}
	if lang.String() != "Korean (ko)" {
		t.Fatalf("unexpected String(): %q", lang.String())
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, code := range []string{"", "und", "not a language"} {
		_, err := Parse(code)
		if err == nil {
			t.Fatalf("expected error for %q", code)
		}
		if !apperrors.Is(err, apperrors.KindConfig) {
			t.Fatalf("expected config error for %q, got %v", code, err)
		}
	}
}

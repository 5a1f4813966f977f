package main

import (
	"strings"
	"testing"

	"github.com/oukeidos/docsync/internal/auth"
)

func TestEnvStatus(t *testing.T) {
	cases := []struct {
		name, stored, env, want string
	}{
		{"env", "", "ghp_secretsecretsecretsecret", "Found (source=Environment Variable)"},
		{"keychain", "stored", "", "Found (source=Keychain)"},
		{"missing", "", "", "Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withKeyStubs(t, false, "", tc.stored, tc.env)
			out, err := executeCommand(t, "env", "status", "--service", "github")
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if !strings.Contains(out, "GitHub token: "+tc.want) {
				t.Fatalf("unexpected output: %s", out)
			}
			if strings.Contains(out, "ghp_") || strings.Contains(out, "stored") {
				t.Fatalf("output leaked the secret: %s", out)
			}
		})
	}
}

func TestEnvSetupAndDelete(t *testing.T) {
	stubs := withKeyStubs(t, true, "sk-new", "", "")
	out, err := executeCommand(t, "env", "setup", "--service", "openai")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if stubs.saved[auth.OpenAI] != "sk-new" || !strings.Contains(out, "Saved OpenAI API key") {
		t.Fatalf("unexpected setup result %v / %s", stubs.saved, out)
	}

	if _, err := executeCommand(t, "env", "delete", "--service", "openai", "--yes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(stubs.deleted) != 1 || stubs.deleted[0] != auth.OpenAI {
		t.Fatalf("unexpected deletes %v", stubs.deleted)
	}
}

func TestEnvSetup_EmptyKeyRejected(t *testing.T) {
	withKeyStubs(t, true, "", "", "")
	if _, err := executeCommand(t, "env", "setup"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestEnv_UnknownService(t *testing.T) {
	withKeyStubs(t, false, "", "", "")
	if _, err := executeCommand(t, "env", "status", "--service", "anthropic"); err == nil {
		t.Fatal("expected error for unknown service")
	}
}

func TestEnvDelete_Declined(t *testing.T) {
	stubs := withKeyStubs(t, false, "", "stored", "")
	orig := confirm
	confirm = func(question string, force bool) (bool, error) {
		if !strings.Contains(question, "GitHub token") {
			t.Fatalf("unexpected question %q", question)
		}
		return false, nil
	}
	t.Cleanup(func() { confirm = orig })

	out, err := executeCommand(t, "env", "delete", "--service", "github")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(stubs.deleted) != 0 || !strings.Contains(out, "Aborted.") {
		t.Fatalf("expected no delete, got %v / %s", stubs.deleted, out)
	}
}

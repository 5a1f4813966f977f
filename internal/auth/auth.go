// Package auth resolves backend and GitHub credentials from the
// environment and the OS keychain.
package auth

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const serviceName = "docsync"

// Service names a credential.
type Service string

const (
	Gemini Service = "gemini"
	OpenAI Service = "openai"
	GitHub Service = "github"
)

// Source tells where a credential came from.
type Source string

const (
	SourceNone     Source = ""
	SourceEnv      Source = "Environment Variable"
	SourceKeychain Source = "Keychain"
	SourcePrompt   Source = "Prompt"
)

type spec struct {
	account string
	envVars []string
	label   string
}

var services = map[Service]spec{
	Gemini: {account: "gemini-api-key", envVars: []string{"GEMINI_API_KEY"}, label: "Gemini API key"},
	OpenAI: {account: "openai-api-key", envVars: []string{"OPENAI_API_KEY"}, label: "OpenAI API key"},
	GitHub: {account: "github-token", envVars: []string{"GITHUB_TOKEN", "GH_TOKEN"}, label: "GitHub token"},
}

// Services lists the known credential names.
func Services() []Service {
	return []Service{Gemini, OpenAI, GitHub}
}

// ParseService accepts a case-insensitive service name.
func ParseService(name string) (Service, error) {
	s := Service(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := services[s]; !ok {
		return "", fmt.Errorf("unknown service %q (expected gemini, openai or github)", name)
	}
	return s, nil
}

// Label is the human name of the credential, e.g. "GitHub token".
func (s Service) Label() string {
	return services[s].label
}

// EnvVars lists the environment variables checked for s, in order.
func (s Service) EnvVars() []string {
	return services[s].envVars
}

// GetKey returns the credential for s. The environment is checked first
// because CI runners inject secrets that way; the keychain is the fallback
// for workstations.
func GetKey(s Service) (string, Source) {
	if key, ok := GetEnvKey(s); ok {
		return key, SourceEnv
	}
	if key, err := keyring.Get(serviceName, services[s].account); err == nil {
		if key = strings.TrimSpace(key); key != "" {
			return key, SourceKeychain
		}
	}
	return "", SourceNone
}

// GetEnvKey retrieves the key from environment variables only.
func GetEnvKey(s Service) (string, bool) {
	for _, v := range services[s].envVars {
		if key := strings.TrimSpace(os.Getenv(v)); key != "" {
			return key, true
		}
	}
	return "", false
}

// SaveKey stores the key in the OS keychain.
func SaveKey(s Service, key string) error {
	return keyring.Set(serviceName, services[s].account, strings.TrimSpace(key))
}

// DeleteKey removes the key from the OS keychain.
func DeleteKey(s Service) error {
	return keyring.Delete(serviceName, services[s].account)
}

// GetStatus reports whether the keychain holds a key for s.
func GetStatus(s Service) bool {
	key, err := keyring.Get(serviceName, services[s].account)
	return err == nil && key != ""
}

// CanPrompt reports whether stdin is an interactive terminal.
func CanPrompt() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptForKey reads a secret from the terminal without echo.
func PromptForKey(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

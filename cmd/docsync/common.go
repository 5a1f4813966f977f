package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/auth"
	"github.com/oukeidos/docsync/internal/cleanup"
	"github.com/oukeidos/docsync/internal/config"
	"github.com/oukeidos/docsync/internal/files"
	"github.com/oukeidos/docsync/internal/logger"
	"github.com/oukeidos/docsync/internal/pipeline"
	"github.com/oukeidos/docsync/internal/prompt"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	isTerminal   = term.IsTerminal
	getKey       = auth.GetKey
	getEnvKey    = auth.GetEnvKey
	getStatus    = auth.GetStatus
	saveKey      = auth.SaveKey
	deleteKey    = auth.DeleteKey
	promptForKey = auth.PromptForKey
	confirm      = prompt.DefaultConfirmer().Confirm
)

// resolveKey finds the credential for svc: environment, then keychain, then
// an interactive prompt. A missing credential is a configuration error.
func resolveKey(svc auth.Service) (string, auth.Source, error) {
	if key, source := getKey(svc); key != "" {
		return key, source, nil
	}
	if isTerminal(int(os.Stdin.Fd())) {
		key, err := promptForKey(fmt.Sprintf("%s (press Enter to skip): ", svc.Label()))
		if err != nil {
			return "", auth.SourceNone, fmt.Errorf("error reading %s: %w", svc.Label(), err)
		}
		if key != "" {
			return key, auth.SourcePrompt, nil
		}
	}
	return "", auth.SourceNone, apperrors.Config(fmt.Sprintf(
		"%s is required; set %s or run `docsync env setup --service %s`",
		svc.Label(), svc.EnvVars()[0], svc))
}

// initLogging configures the global logger and, when requested, a JSONL
// log file closed at exit.
func initLogging(global *globalOptions, cfgLogPath string) error {
	level := logger.LevelInfo
	if global.debug {
		level = logger.LevelDebug
	}
	path := global.logFile
	if path == "" {
		path = cfgLogPath
	}
	var w io.Writer
	if path != "" {
		if err := files.RejectSymlinkPath(path); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cleanup.Register("log file", f.Close)
		w = f
	}
	logger.Init(level, w)
	return nil
}

// loadConfig reads the config file and the .env files. An explicit --config
// must exist; the default file is optional.
func loadConfig(global *globalOptions) (config.Config, error) {
	if err := config.LoadEnv(".env", ".env.local"); err != nil {
		return config.Config{}, err
	}
	return config.Load(global.configPath, global.configPath != "")
}

func finalizeConfig(cfg config.Config) (config.Config, error) {
	cfg, notes := cfg.Normalize()
	for _, note := range notes {
		logger.Warn("Config normalized", "detail", note)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func signalContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("Cancellation requested")
			cancel()
		case <-ctx.Done():
		}
	}()
	stop := func() {
		signal.Stop(sigCh)
		cancel()
	}
	return ctx, stop
}

func printSummary(cmd *cobra.Command, s pipeline.Summary, model string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n--- Run Summary ---")
	fmt.Fprintf(out, "Run: %s\n", s.RunID)
	fmt.Fprintf(out, "Time: %s\n", s.Elapsed.Round(time.Millisecond))
	for _, d := range s.Documents {
		line := fmt.Sprintf("  %-10s %-5s %s", d.Status, d.Mode, d.FilePath)
		if d.PR != nil && d.PR.URL != "" {
			line += "  " + d.PR.URL
		}
		if d.Err != nil {
			line += "  (" + apperrors.PublicMessage(d.Err) + ")"
		}
		fmt.Fprintln(out, line)
	}
	for _, u := range s.Unresolved {
		fmt.Fprintf(out, "  %-10s %-5s %s  (%s)\n", "Unresolved", "-", u.Ref, u.Reason)
	}
	fmt.Fprintf(out, "Skipped (already synchronized): %d\n", s.Skipped)
	if s.DryRun > 0 {
		fmt.Fprintf(out, "Dry run: %d\n", s.DryRun)
	}
	fmt.Fprintf(out, "Translated: %d, Published: %d, Unchanged: %d, Failed: %d, Warnings: %d\n",
		s.Translated, s.Published, s.Unchanged, s.Failed, s.Warnings)
	if s.Truncated > 0 {
		fmt.Fprintf(out, "Not processed (max-files): %d\n", s.Truncated)
	}
	if s.Usage.TotalTokens > 0 || s.Usage.InputTokens > 0 {
		fmt.Fprintf(out, "Model: %s\n", model)
		fmt.Fprintf(out, "Tokens: In=%d, Out=%d, Total=%d\n", s.Usage.InputTokens, s.Usage.OutputTokens, s.Usage.TotalTokens)
		fmt.Fprintf(out, "Estimated Cost: $%.4f\n", s.Cost)
	}
}

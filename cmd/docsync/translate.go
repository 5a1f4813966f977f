package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/auth"
	"github.com/oukeidos/docsync/internal/cleanup"
	"github.com/oukeidos/docsync/internal/config"
	"github.com/oukeidos/docsync/internal/docstore"
	"github.com/oukeidos/docsync/internal/gemini"
	"github.com/oukeidos/docsync/internal/github"
	"github.com/oukeidos/docsync/internal/language"
	"github.com/oukeidos/docsync/internal/llm"
	"github.com/oukeidos/docsync/internal/logger"
	"github.com/oukeidos/docsync/internal/metadata"
	"github.com/oukeidos/docsync/internal/metrics"
	"github.com/oukeidos/docsync/internal/openai"
	"github.com/oukeidos/docsync/internal/pipeline"
	"github.com/oukeidos/docsync/internal/publish"
	"github.com/oukeidos/docsync/internal/resolve"
	"github.com/oukeidos/docsync/internal/translate"
	"github.com/oukeidos/docsync/internal/vcs"
	"github.com/spf13/cobra"
)

type translateOptions struct {
	issue           int
	files           string
	dryRun          bool
	maxFiles        int
	continueOnError bool
	noPublish       bool
	provider        string
	model           string
	target          string
	originRoot      string
	translatedRoot  string
	rules           string
	base            string
	metricsFile     string
}

func newTranslateCmd(global *globalOptions) *cobra.Command {
	opts := translateOptions{}
	cmd := &cobra.Command{
		Use:   "translate (--issue N | --files a,b)",
		Short: "Translate or synchronize documents and open pull requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, global, &opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	f := cmd.Flags()
	f.IntVar(&opts.issue, "issue", 0, "Issue number whose title names the document")
	f.StringVar(&opts.files, "files", "", "Comma-separated document paths (extension optional)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Resolve and classify only; do not translate or publish (credentials and rules are not checked)")
	f.IntVar(&opts.maxFiles, "max-files", config.DefaultMaxFiles, fmt.Sprintf("Maximum documents per run (%d-%d)", config.MinMaxFiles, config.MaxMaxFiles))
	f.BoolVar(&opts.continueOnError, "continue-on-error", false, "Record a failed document and continue with the next one")
	f.BoolVar(&opts.noPublish, "no-publish", false, "Save translations without committing or opening pull requests")
	f.StringVar(&opts.provider, "provider", "", "Translation backend (gemini or openai)")
	f.StringVar(&opts.model, "model", "", "Backend model ID (default depends on provider)")
	f.StringVar(&opts.target, "target", "", "Target language code (default ko)")
	f.StringVar(&opts.originRoot, "origin-root", "", "Origin documents root")
	f.StringVar(&opts.translatedRoot, "translated-root", "", "Translated documents root")
	f.StringVar(&opts.rules, "rules", "", "Translation rules document (default AGENTS.md)")
	f.StringVar(&opts.base, "base", "", "Integration branch pull requests target (default master-ko)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	return cmd
}

// applyTranslateFlags overrides file settings with flags the user set.
func applyTranslateFlags(cmd *cobra.Command, cfg config.Config, opts *translateOptions) config.Config {
	changed := cmd.Flags().Changed
	if changed("max-files") {
		cfg.MaxFiles = opts.maxFiles
	}
	if changed("continue-on-error") && opts.continueOnError {
		cfg.FailurePolicy = config.PolicyContinue
	}
	if opts.provider != "" {
		cfg.Provider = metadata.Provider(opts.provider)
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}
	if opts.target != "" {
		cfg.TargetLang = opts.target
	}
	if opts.originRoot != "" {
		cfg.OriginRoot = opts.originRoot
	}
	if opts.translatedRoot != "" {
		cfg.TranslatedRoot = opts.translatedRoot
	}
	if opts.rules != "" {
		cfg.RulesPath = opts.rules
	}
	if opts.base != "" {
		cfg.BaseBranch = opts.base
	}
	if opts.metricsFile != "" {
		cfg.MetricsPath = opts.metricsFile
	}
	return cfg
}

// targetRefs returns the document references to process. --files wins over
// --issue; the issue is still linked from the pull request.
func targetRefs(ctx context.Context, opts *translateOptions, issues resolve.IssueSource) ([]string, error) {
	if opts.files != "" {
		refs := resolve.ParseFileList(opts.files)
		if len(refs) == 0 {
			return nil, apperrors.Config("--files names no documents")
		}
		return refs, nil
	}
	if opts.issue <= 0 {
		return nil, apperrors.Config("specify --issue or --files")
	}
	if issues == nil {
		return nil, apperrors.Config("--issue requires GitHub access")
	}
	return resolve.FilesFromIssue(ctx, issues, opts.issue)
}

func defaultModel(p metadata.Provider) string {
	if p == metadata.ProviderOpenAI {
		return openai.DefaultModel
	}
	return gemini.DefaultModel
}

var makeGenerator = newGenerator

func newGenerator(ctx context.Context, provider metadata.Provider, key, model string) (llm.Generator, error) {
	switch provider {
	case metadata.ProviderOpenAI:
		return openai.NewClient(key, model), nil
	case metadata.ProviderGemini:
		c, err := gemini.NewClient(ctx, key, model)
		if err != nil {
			return nil, err
		}
		cleanup.Register("gemini client", c.Close)
		return c, nil
	default:
		return nil, apperrors.Config(fmt.Sprintf("unknown provider %q", provider))
	}
}

func backendService(p metadata.Provider) auth.Service {
	if p == metadata.ProviderOpenAI {
		return auth.OpenAI
	}
	return auth.Gemini
}

func newGitHubClient(cfg config.Config, token string) (*github.Client, error) {
	slug := cfg.RepositorySlug()
	if slug == "" {
		return nil, apperrors.Config("GitHub repository is unknown; set `repository` in the config or GITHUB_REPOSITORY")
	}
	owner, repo, err := github.ParseRepository(slug)
	if err != nil {
		return nil, apperrors.New(apperrors.KindConfig, err.Error(), err)
	}
	return github.NewClient(github.Options{APIURL: cfg.APIURL, Owner: owner, Repo: repo, Token: token})
}

func runTranslate(cmd *cobra.Command, global *globalOptions, opts *translateOptions) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	if err := initLogging(global, cfg.LogPath); err != nil {
		return err
	}
	if set := changedFlags(cmd.Flags()); len(set) > 0 {
		logger.Debug("Flags override configuration", "flags", set)
	}
	cfg, err = finalizeConfig(applyTranslateFlags(cmd, cfg, opts))
	if err != nil {
		return err
	}
	if opts.files == "" && opts.issue <= 0 {
		return apperrors.Config("specify --issue or --files")
	}
	target, err := language.Parse(cfg.TargetLang)
	if err != nil {
		return err
	}
	source, err := language.Parse(cfg.SourceLang)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	publishing := !opts.dryRun && !opts.noPublish
	needGitHub := (opts.issue > 0 && opts.files == "") || publishing
	var (
		gh      *github.Client
		ghToken string
	)
	if needGitHub {
		var src auth.Source
		ghToken, src, err = resolveKey(auth.GitHub)
		if err != nil {
			return err
		}
		logger.Info("Using credential", "service", string(auth.GitHub), "source", string(src))
		if gh, err = newGitHubClient(cfg, ghToken); err != nil {
			return err
		}
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel(cfg.Provider)
	}
	pricing, known := metadata.Pricing(cfg.Provider, model)
	if !known {
		logger.Warn("Unknown model, cost estimate uses provider defaults", "model", model)
	}

	store := docstore.New(cfg.OriginRoot, cfg.TranslatedRoot, cfg.Extension)
	runner := &pipeline.Runner{
		Store:    store,
		Resolver: resolve.New(store),
		Policy:   cfg.FailurePolicy,
		DryRun:   opts.dryRun,
		Issue:    opts.issue,
		Model:    model,
		Pricing:  pricing,
	}

	if !opts.dryRun {
		rules, err := translate.LoadRules(cfg.RulesPath)
		if err != nil {
			return err
		}
		key, src, err := resolveKey(backendService(cfg.Provider))
		if err != nil {
			return err
		}
		logger.Info("Using credential", "service", string(cfg.Provider), "source", string(src))
		gen, err := makeGenerator(ctx, cfg.Provider, key, model)
		if err != nil {
			return err
		}
		runner.Translator = &translate.Orchestrator{
			Generator:       gen,
			Rules:           rules,
			MaxOutputTokens: cfg.MaxOutputTokens,
			Prompt: translate.PromptOptions{
				SourceName: source.Name,
				TargetName: target.Name,
				Project:    cfg.Project,
			},
		}
	}

	if publishing {
		repo, err := vcs.Open(".", vcs.Options{Remote: cfg.Remote, Token: ghToken})
		if err != nil {
			return apperrors.New(apperrors.KindConfig, "current directory is not inside a git repository", err)
		}
		runner.Publisher = publish.New(repo, gh, cfg.BaseBranch)
	}

	if cfg.MetricsPath != "" {
		rec := metrics.NewPrometheusRecorder(nil)
		runner.Metrics = rec
		path := cfg.MetricsPath
		cleanup.Register("metrics textfile", func() error { return rec.WriteTextfile(path) })
		if orch, ok := runner.Translator.(*translate.Orchestrator); ok {
			orch.OnInvoke = func(d time.Duration, u llm.Usage, err error) {
				rec.ObserveBackendCall(model, d, err == nil)
				rec.AddTokens(model, u.InputTokens, u.OutputTokens)
			}
		}
	}

	var issues resolve.IssueSource
	if gh != nil {
		issues = gh
	}
	refs, err := targetRefs(ctx, opts, issues)
	if err != nil {
		return err
	}
	logger.Info("Starting run", "refs", len(refs), "provider", string(cfg.Provider), "model", model,
		"target", target.String(), "max_files", cfg.MaxFiles)

	summary, err := runner.Run(ctx, refs, cfg.MaxFiles)
	printSummary(cmd, summary, model)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Run canceled")
			return nil
		}
		if apperrors.IsRetryable(err) {
			logger.Info("The failure may be temporary; re-running is safe")
		}
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed", summary.Failed)
	}
	return nil
}

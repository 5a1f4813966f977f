package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/oukeidos/docsync/internal/docstore"
	"github.com/oukeidos/docsync/internal/pipeline"
	"github.com/oukeidos/docsync/internal/structure"
	"github.com/spf13/cobra"
)

type detectOptions struct {
	status         []string
	json           bool
	originRoot     string
	translatedRoot string
}

func newDetectCmd(global *globalOptions) *cobra.Command {
	opts := detectOptions{}
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Report which documents are new, out of sync or done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, global, &opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	f := cmd.Flags()
	f.StringSliceVar(&opts.status, "status", nil, "Only report these statuses (new, sync, done)")
	f.BoolVar(&opts.json, "json", false, "Print the report as JSON")
	f.StringVar(&opts.originRoot, "origin-root", "", "Origin documents root")
	f.StringVar(&opts.translatedRoot, "translated-root", "", "Translated documents root")
	return cmd
}

func parseStatuses(values []string) ([]structure.Status, error) {
	var out []structure.Status
	for _, v := range values {
		s := structure.Status(strings.ToLower(strings.TrimSpace(v)))
		switch s {
		case structure.StatusNew, structure.StatusSync, structure.StatusDone:
			out = append(out, s)
		case "":
		default:
			return nil, fmt.Errorf("unknown status %q (expected new, sync or done)", v)
		}
	}
	return out, nil
}

func runDetect(cmd *cobra.Command, global *globalOptions, opts *detectOptions) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	if err := initLogging(global, cfg.LogPath); err != nil {
		return err
	}
	if opts.originRoot != "" {
		cfg.OriginRoot = opts.originRoot
	}
	if opts.translatedRoot != "" {
		cfg.TranslatedRoot = opts.translatedRoot
	}
	if cfg, err = finalizeConfig(cfg); err != nil {
		return err
	}
	statuses, err := parseStatuses(opts.status)
	if err != nil {
		return err
	}

	store := docstore.New(cfg.OriginRoot, cfg.TranslatedRoot, cfg.Extension)
	all, err := pipeline.Detect(store)
	if err != nil {
		return err
	}
	results := pipeline.FilterStatus(all, statuses...)

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tFILE\tREASONS")
	counts := map[structure.Status]int{}
	for _, r := range all {
		counts[r.Status]++
	}
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Status, r.FilePath, strings.Join(r.Reasons, "; "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal: %d (new %d, sync %d, done %d)\n",
		len(all), counts[structure.StatusNew], counts[structure.StatusSync], counts[structure.StatusDone])
	return nil
}

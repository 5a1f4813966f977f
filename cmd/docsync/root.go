package main

import (
	"fmt"
	"os"

	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/cleanup"
	"github.com/oukeidos/docsync/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type globalOptions struct {
	configPath string
	logFile    string
	debug      bool
}

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", apperrors.PublicMessage(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	global := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "docsync",
		Short:         "Keep a translated documentation tree in sync with its origin",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version.Short()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(subcommandUsageTemplate)

	pf := cmd.PersistentFlags()
	pf.StringVar(&global.configPath, "config", "", "Path to config file (default .docsync.yaml if present)")
	pf.StringVar(&global.logFile, "log-file", "", "Path to save machine-readable JSONL logs")
	pf.BoolVar(&global.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newTranslateCmd(global),
		newDetectCmd(global),
		newEnvCmd(),
		newVersionCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return nil
		},
	}
}

// changedFlags lists the flags set on the command line, sorted by name.
func changedFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.Visit(func(f *pflag.Flag) {
		names = append(names, f.Name)
	})
	return names
}

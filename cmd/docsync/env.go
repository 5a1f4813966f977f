package main

import (
	"fmt"

	"github.com/oukeidos/docsync/internal/auth"
	"github.com/spf13/cobra"
)

type envOptions struct {
	service string
	yes     bool
}

func newEnvCmd() *cobra.Command {
	opts := envOptions{}
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Manage credentials in the OS keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvStatus(cmd, &opts)
		},
	}
	cmd.SetUsageTemplate(subcommandUsageTemplate)
	cmd.PersistentFlags().StringVar(&opts.service, "service", "gemini", "Credential to manage (gemini, openai or github)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "setup",
			Short: "Save a credential to the keychain (prompt only)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEnvSetup(cmd, &opts)
			},
		},
		newEnvDeleteCmd(&opts),
		&cobra.Command{
			Use:   "status",
			Short: "Show where a credential would be read from (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEnvStatus(cmd, &opts)
			},
		},
	)
	return cmd
}

func newEnvDeleteCmd(opts *envOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a credential from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnvDelete(cmd, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Delete without asking for confirmation")
	return cmd
}

func runEnvSetup(cmd *cobra.Command, opts *envOptions) error {
	svc, err := auth.ParseService(opts.service)
	if err != nil {
		return err
	}
	key, err := promptForKey(svc.Label() + ": ")
	if err != nil {
		return fmt.Errorf("error reading key: %w", err)
	}
	if key == "" {
		return fmt.Errorf("%s is required for setup", svc.Label())
	}
	if err := saveKey(svc, key); err != nil {
		return fmt.Errorf("error saving key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to keychain.\n", svc.Label())
	return nil
}

func runEnvDelete(cmd *cobra.Command, opts *envOptions) error {
	svc, err := auth.ParseService(opts.service)
	if err != nil {
		return err
	}
	ok, err := confirm(fmt.Sprintf("Delete %s from keychain?", svc.Label()), opts.yes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}
	if err := deleteKey(svc); err != nil {
		return fmt.Errorf("error deleting key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s from keychain.\n", svc.Label())
	return nil
}

func runEnvStatus(cmd *cobra.Command, opts *envOptions) error {
	svc, err := auth.ParseService(opts.service)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, ok := getEnvKey(svc); ok {
		fmt.Fprintf(out, "%s: Found (source=%s)\n", svc.Label(), auth.SourceEnv)
		return nil
	}
	if getStatus(svc) {
		fmt.Fprintf(out, "%s: Found (source=%s)\n", svc.Label(), auth.SourceKeychain)
		return nil
	}
	fmt.Fprintf(out, "%s: Not Found (env not set, keychain empty)\n", svc.Label())
	return nil
}

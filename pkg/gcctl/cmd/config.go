package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/telekom/gcctl/pkg/gcctl/config"
	"github.com/telekom/gcctl/pkg/gcctl/output"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gcctl configuration",
	}
	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigViewCommand(),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		clientID         string
		clientSecretFile string
		suffix           string
		force            bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			path := rt.configPathValue()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config already exists: %s", path)
				}
			}
			cfg := config.DefaultConfig()
			if rt.regionOverride != "" {
				cfg.Region = rt.regionOverride
			}
			if rt.tokenStorageOverride != "" {
				cfg.Settings.TokenStorage = rt.tokenStorageOverride
			}
			if rt.credentialFileOverride != "" {
				cfg.Settings.CredentialFile = rt.credentialFileOverride
			}
			cfg.Credentials.ClientID = clientID
			cfg.Credentials.ClientSecretFile = clientSecretFile
			if suffix != "" {
				cfg.Provisioning.Suffix = suffix
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, &cfg); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.Writer(), "Config written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id (the environment variable still takes precedence)")
	cmd.Flags().StringVar(&clientSecretFile, "client-secret-file", "", "File holding the OAuth client secret")
	cmd.Flags().StringVar(&suffix, "suffix", "", "Suffix used in the provisioning entity names")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing config")
	return cmd
}

func newConfigViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			if err := rt.EnsureConfigLoaded(); err != nil {
				return err
			}
			format, err := rt.OutputFormat()
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				format = output.FormatYAML
			}
			return output.WriteObject(rt.Writer(), format, rt.cfg)
		},
	}
}

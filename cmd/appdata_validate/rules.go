package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/appdata-validator/internal/config"
)

// rule flags, shared by every subcommand
var (
	rulesPath                string
	rulesGeneration          string
	rulesNetwork             bool
	rulesRelax               bool
	rulesRequireTranslations bool
	rulesRequireCopyright    bool
	rulesDeprecatedFailure   bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rule configuration",
	Long:  "Prints the rules validate would use after applying the rules file, environment and flags.",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

var rulesFormat string

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&rulesPath, "rules", "r", "", "Path to a JSON or YAML rules file (default $"+rulesEnvVar+")")
	flags.StringVar(&rulesGeneration, "generation", "", "Schema generation: legacy or current")
	flags.BoolVar(&rulesNetwork, "network", false, "Download screenshots and check their dimensions")
	flags.BoolVar(&rulesRelax, "relax", false, "Do not require contact details (also $"+relaxEnvVar+")")
	flags.BoolVar(&rulesRequireTranslations, "require-translations", false, "Require translations of name, summary and description")
	flags.BoolVar(&rulesRequireCopyright, "require-copyright", false, "Require a copyright comment")
	flags.BoolVar(&rulesDeprecatedFailure, "deprecated-failure", false, "Report deprecated tags")

	rulesCmd.Flags().StringVarP(&rulesFormat, "format", "f", "yaml", "Output format: yaml or json")

	rootCmd.AddCommand(rulesCmd)
}

// resolveRules layers the rules file, the environment and the flags over
// the defaults.
func resolveRules(cmd *cobra.Command) (config.Rules, error) {
	path := rulesPath
	if path == "" {
		path = os.Getenv(rulesEnvVar)
	}

	rules := config.DefaultRules()
	if path != "" {
		loaded, err := config.LoadRules(path)
		if err != nil {
			return config.Rules{}, err
		}
		rules = loaded
	}

	if rulesRelax || os.Getenv(relaxEnvVar) != "" {
		rules.RequireContactDetails = false
	}
	flags := cmd.Flags()
	if flags.Changed("generation") {
		rules.Generation = rulesGeneration
	}
	if flags.Changed("network") {
		rules.HasNetworkAccess = rulesNetwork
	}
	if rulesRequireTranslations {
		rules.RequireTranslations = true
	}
	if rulesRequireCopyright {
		rules.RequireCopyright = true
	}
	if rulesDeprecatedFailure {
		rules.DeprecatedFailure = true
	}

	if err := rules.Validate(); err != nil {
		return config.Rules{}, err
	}
	return rules, nil
}

func runRules(cmd *cobra.Command, _ []string) error {
	rules, err := resolveRules(cmd)
	if err != nil {
		return err
	}

	var out []byte
	switch rulesFormat {
	case "yaml", "yml":
		out, err = yaml.Marshal(rules)
	case "json":
		out, err = json.MarshalIndent(rules, "", "  ")
		out = append(out, '\n')
	default:
		return fmt.Errorf("unknown format %q (expected yaml or json)", rulesFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

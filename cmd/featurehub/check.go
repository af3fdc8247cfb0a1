package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JorgeRod2594/feature-hub/internal/config"
	huberrors "github.com/JorgeRod2594/feature-hub/internal/errors"
)

func checkCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration without serving",
		Long: `Validate the configuration without serving.

Loads the config file, applies environment overrides, and reports
what a serve run would use. Fails with the same errors serve would.

Examples:
  featurehub check
  featurehub check --config=./deploy`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(configDir)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing featurehub.yaml and .env")

	return cmd
}

func runCheck(configDir string) error {
	if _, err := os.Stat(configDir); err != nil {
		return huberrors.FromError(err, "E060")
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		return huberrors.FromError(err, "E003").
			WithSuggestion(fmt.Sprintf("check %s.yaml in %s", config.ConfigFileName, configDir))
	}

	if len(cfg.Pages) == 0 {
		return huberrors.New("E002").
			WithSuggestion("add a pages entry to the config file").
			WithExample(pagesExample)
	}
	if !cfg.HasSource() {
		return huberrors.New("E001").
			WithSuggestion("set sources.file.dir, sources.http.base_url or sources.s3.bucket").
			WithExample(sourcesExample)
	}

	// Print banner
	printBanner()
	fmt.Println("  check")
	fmt.Println()

	success("configuration is valid")
	info("listen:   %s", cfg.Server.Addr)
	info("sources:  %s", sourceSummary(cfg))
	info("pages:    %d", len(cfg.Pages))
	for _, p := range cfg.Pages {
		info("  %-16s %s", p.Path, p.Src)
	}

	if cfg.Static.Dir != "" {
		if _, err := os.Stat(cfg.Static.Dir); err != nil {
			warn("static dir %q does not exist", cfg.Static.Dir)
		}
	}
	if cfg.Sources.File.Dir != "" {
		if _, err := os.Stat(cfg.Sources.File.Dir); err != nil {
			warn("sources.file.dir %q does not exist", cfg.Sources.File.Dir)
		}
	}

	return nil
}

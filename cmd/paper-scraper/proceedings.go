// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-scraper/internal/console"
	"github.com/pdiddy/paper-scraper/internal/scrape"
	"github.com/pdiddy/paper-scraper/pkg/types"
)

var proceedingsCmd = &cobra.Command{
	Use:   "proceedings",
	Short: "Download every paper and BibTeX entry from a proceedings listing",
	Long: `Proceedings reads one conference listing page and saves each paper into
<output>/<title>/<title>.pdf with its BibTeX entry next to it as
<title>.txt. Papers whose files already exist are skipped.

The command exits non-zero if the listing or any download failed.`,
	RunE: runProceedings,
}

func init() {
	f := proceedingsCmd.Flags()
	addCommonFlags(proceedingsCmd, viper.GetViper(), "proceedings", defaultProceedings.HTTPConfig, defaultProceedings.DownloadConfig)
	f.String("listing-url", "", "proceedings listing page URL")
	f.String("detail-marker", defaultProceedings.DetailMarker, "href fragment identifying paper title links")

	viper.BindPFlag("proceedings.listing_url", f.Lookup("listing-url"))
	viper.BindPFlag("proceedings.detail_marker", f.Lookup("detail-marker"))

	rootCmd.AddCommand(proceedingsCmd)
}

func runProceedings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if dump, _ := cmd.Flags().GetBool("dump-config"); dump {
		return dumpConfig(cmd.OutOrStdout(), cfg)
	}
	return runPipeline(cmd.Context(), cfg.Console, func(ctx context.Context, p console.Progress) (types.Summary, error) {
		return scrape.RunProceedings(ctx, cfg.Proceedings, scrape.Deps{Progress: p})
	})
}

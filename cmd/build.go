package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/banatic"
	"github.com/sells-group/groupements-cli/internal/groupement"
	"github.com/sells-group/groupements-cli/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch every division and write the groupements document",
	Long: "Loads the SIREN to INSEE cross-reference, fetches each division sequentially " +
		"(cached divisions are not downloaded again), assembles one record per groupement " +
		"and writes the result. A failed run can simply be started again.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := applyBuildFlags(cmd); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		divs, err := loadDivisions()
		if err != nil {
			return err
		}

		st, err := initCache(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		out, err := initSink(ctx)
		if err != nil {
			return err
		}

		source := banatic.NewFetcher(initFetcher(), st, banatic.Options{
			BaseURL: cfg.Banatic.BaseURL,
			Version: cfg.Banatic.Date,
			Format:  cfg.Banatic.Format,
		})

		opts := groupement.DefaultOptions()
		opts.ExpectedColumns = cfg.Banatic.ExpectedColumns

		p := pipeline.New(nil, source, out, pipeline.Options{
			XRefPath:  cfg.XRef.Path,
			Divisions: divs,
			Assemble:  opts,
		})

		stats, err := p.Run(ctx)
		fmt.Fprint(os.Stderr, pipeline.FormatSummary(stats))
		if err != nil {
			zap.L().Error("build failed", zap.Error(err))
			return eris.Wrap(err, "build")
		}
		return nil
	},
}

// applyBuildFlags overlays explicitly set flags on the loaded config.
func applyBuildFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("only") {
		only, err := flags.GetStringSlice("only")
		if err != nil {
			return eris.Wrap(err, "build: --only")
		}
		cfg.Divisions.Only = only
	}
	if flags.Changed("date") {
		date, _ := flags.GetString("date")
		cfg.Banatic.Date = date
	}
	if flags.Changed("output") {
		path, _ := flags.GetString("output")
		cfg.Output.Path = path
	}
	if flags.Changed("cache") {
		driver, _ := flags.GetString("cache")
		cfg.Cache.Driver = driver
	}
	return nil
}

func init() {
	buildCmd.Flags().StringSlice("only", nil, "restrict the build to these division codes (e.g. 01,2A)")
	buildCmd.Flags().String("date", "", "dataset date DD/MM/YYYY (overrides banatic.date)")
	buildCmd.Flags().String("output", "", "output file (overrides output.path)")
	buildCmd.Flags().String("cache", "", "cache driver: sqlite, postgres or memory (overrides cache.driver)")
	rootCmd.AddCommand(buildCmd)
}

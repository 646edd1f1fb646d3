package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/groupements-cli/internal/banatic"
	"github.com/sells-group/groupements-cli/internal/division"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the partition cache",
}

// -- cache status --

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which divisions are cached for a dataset date",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		version := cfg.Banatic.Date
		if cmd.Flags().Changed("date") {
			version, _ = cmd.Flags().GetString("date")
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

		keys, err := st.Keys(ctx, banatic.CachePrefix(version))
		if err != nil {
			return eris.Wrap(err, "cache status")
		}

		cached := make(map[string]bool, len(keys))
		for _, k := range keys {
			cached[strings.TrimPrefix(k, banatic.CachePrefix(version))] = true
		}

		formatCacheStatus(os.Stdout, version, divs, cached)
		return nil
	},
}

func formatCacheStatus(out io.Writer, version string, divs []division.Division, cached map[string]bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tNOM\tCACHED")
	_, _ = fmt.Fprintln(w, "----\t---\t------")

	hits := 0
	for _, d := range divs {
		mark := "no"
		if cached[d.Code] {
			mark = "yes"
			hits++
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Code, d.Nom, mark)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(out, "\n%d/%d divisions cached for %s\n", hits, len(divs), version)
}

func init() {
	cacheStatusCmd.Flags().String("date", "", "dataset date DD/MM/YYYY (defaults to banatic.date)")

	cacheCmd.AddCommand(cacheStatusCmd)
	rootCmd.AddCommand(cacheCmd)
}

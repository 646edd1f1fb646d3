package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/groupements-cli/internal/division"
)

var divisionsCmd = &cobra.Command{
	Use:   "divisions",
	Short: "List the divisions a build fetches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		divs, err := loadDivisions()
		if err != nil {
			return err
		}
		formatDivisions(os.Stdout, divs)
		return nil
	},
}

func formatDivisions(out io.Writer, divs []division.Division) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tNOM\tREGION")
	_, _ = fmt.Fprintln(w, "----\t---\t------")
	for _, d := range divs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Code, d.Nom, d.Region)
	}
	_ = w.Flush()
}

func init() {
	rootCmd.AddCommand(divisionsCmd)
}

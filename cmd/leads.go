package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sales-dashboard/internal/analytics"
	"github.com/sells-group/sales-dashboard/internal/leadfile"
	"github.com/sells-group/sales-dashboard/internal/model"
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect and filter the lead pipeline",
	Long:  "Commands for listing, filtering, and importing scored leads.",
}

// -- leads list --

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads with optional search and score-band filters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		search, _ := cmd.Flags().GetString("search")
		bandStr, _ := cmd.Flags().GetString("band")
		file, _ := cmd.Flags().GetString("file")
		top, _ := cmd.Flags().GetInt("top")

		band, err := analytics.ParseBand(bandStr)
		if err != nil {
			return err
		}

		leads, err := loadLeads(ctx, file)
		if err != nil {
			return err
		}

		filtered := analytics.Filter(leads, search, band)
		if len(filtered) == 0 {
			fmt.Fprintln(os.Stderr, "No leads found.")
			return nil
		}
		if top > 0 && top < len(filtered) {
			sort.SliceStable(filtered, func(i, j int) bool {
				return filtered[i].LeadScore > filtered[j].LeadScore
			})
			filtered = filtered[:top]
		}

		formatLeadsList(os.Stdout, filtered)

		summary := analytics.Summarize(filtered)
		fmt.Printf("\n%d leads | %d high value | avg score %.1f%% | pipeline $%.0fK\n",
			summary.TotalLeads,
			summary.HighValueLeads,
			summary.AvgLeadScore*100,
			summary.PipelineValue/1000,
		)
		return nil
	},
}

// -- leads import --

var leadsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import leads from a CSV or XLSX export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		leads, err := leadfile.Load(args[0])
		if err != nil {
			return err
		}

		zap.L().Info("imported leads",
			zap.String("file", args[0]),
			zap.Int("count", len(leads)),
		)

		rollup := analytics.SegmentRollup(leads)
		segments := make([]string, 0, len(rollup))
		for seg := range rollup {
			segments = append(segments, seg)
		}
		sort.Strings(segments)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "SEGMENT\tLEADS\tPIPELINE\tAVG_SCORE")
		_, _ = fmt.Fprintln(w, "-------\t-----\t--------\t---------")
		for _, seg := range segments {
			stats := rollup[seg]
			_, _ = fmt.Fprintf(w, "%s\t%d\t$%.0fK\t%.1f%%\n",
				seg, stats.Count, stats.PipelineValue/1000, stats.AvgLeadScore*100)
		}
		_ = w.Flush()

		fmt.Printf("\nImported %d leads across %d segments.\n", len(leads), len(segments))
		return nil
	},
}

func formatLeadsList(out io.Writer, leads []model.Lead) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COMPANY\tSCORE\tBAND\tVALUE\tITEMS\tSEGMENT\tINDUSTRY")
	_, _ = fmt.Fprintln(w, "-------\t-----\t----\t-----\t-----\t-------\t--------")

	for _, l := range leads {
		name := l.CompanyName
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%.1f%%\t%s\t$%.0fK\t%d\t%s\t%s\n",
			name,
			l.LeadScore*100,
			analytics.TierOf(l.LeadScore),
			l.QuoteValue/1000,
			l.ItemCount,
			l.Segment,
			l.Industry,
		)
	}
	_ = w.Flush()
}

func init() {
	leadsListCmd.Flags().String("search", "", "case-insensitive company name filter")
	leadsListCmd.Flags().String("band", "all", "score band filter (all, high, medium, low)")
	leadsListCmd.Flags().String("file", "", "load leads from a CSV/XLSX file instead of the backend")
	leadsListCmd.Flags().Int("top", 0, "show only the N highest-scoring leads")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsImportCmd)
	rootCmd.AddCommand(leadsCmd)
}

package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/sales-dashboard/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show pipeline analytics for the current lead collection",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		topN, _ := cmd.Flags().GetInt("top")
		if topN == 0 {
			topN = cfg.Dashboard.TopN
		}

		leads, err := loadLeads(ctx, file)
		if err != nil {
			return err
		}

		summary := analytics.Summarize(leads)
		fmt.Printf("Pipeline Summary\n")
		fmt.Printf("  Total leads:      %d\n", summary.TotalLeads)
		fmt.Printf("  High value:       %d\n", summary.HighValueLeads)
		fmt.Printf("  Avg lead score:   %.1f%%\n", summary.AvgLeadScore*100)
		fmt.Printf("  Pipeline value:   $%.0fK\n", summary.PipelineValue/1000)
		fmt.Printf("  Avg deal size:    $%.0fK\n", summary.AvgDealSize/1000)

		fmt.Printf("\nScore Distribution\n")
		for _, b := range analytics.Histogram(leads) {
			fmt.Printf("  %-8s %s %d\n", b.Range, strings.Repeat("#", b.Count), b.Count)
		}

		tiers := analytics.Tiers(leads)
		fmt.Printf("\nScore Tiers\n")
		fmt.Printf("  High (>70%%):     %d\n", tiers.High)
		fmt.Printf("  Medium (40-70%%): %d\n", tiers.Medium)
		fmt.Printf("  Low (<40%%):      %d\n", tiers.Low)

		revenue := analytics.RevenueByTier(leads)
		fmt.Printf("\nRevenue by Tier\n")
		fmt.Printf("  High:   $%.0fK\n", revenue.HighK)
		fmt.Printf("  Medium: $%.0fK\n", revenue.MediumK)
		fmt.Printf("  Low:    $%.0fK\n", revenue.LowK)

		fmt.Printf("\nConversion Funnel\n")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, stage := range analytics.Funnel(len(leads)) {
			_, _ = fmt.Fprintf(w, "  %s\t%d\t%d%%\n", stage.Stage, stage.Count, stage.Percentage)
		}
		_ = w.Flush()

		top := analytics.TopLeads(leads, topN)
		if len(top) > 0 {
			fmt.Printf("\nTop %d Leads\n", len(top))
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "  RANK\tCOMPANY\tSCORE\tVALUE")
			for i, l := range top {
				_, _ = fmt.Fprintf(w, "  %d\t%s\t%.1f%%\t$%.0fK\n",
					i+1, l.Name, l.ScorePct, l.QuoteValue/1000)
			}
			_ = w.Flush()
		}

		return nil
	},
}

func init() {
	analyticsCmd.Flags().String("file", "", "load leads from a CSV/XLSX file instead of the backend")
	analyticsCmd.Flags().Int("top", 0, "size of the top-lead ranking (default from config)")
	rootCmd.AddCommand(analyticsCmd)
}

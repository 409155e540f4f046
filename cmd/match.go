package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sales-dashboard/internal/model"
	"github.com/sells-group/sales-dashboard/pkg/salesapi"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a lead profile to a recommended use case",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		value, _ := cmd.Flags().GetFloat64("value")
		items, _ := cmd.Flags().GetInt("items")
		days, _ := cmd.Flags().GetInt("days")
		name, _ := cmd.Flags().GetString("name")
		crmID, _ := cmd.Flags().GetString("crm-id")

		in := salesapi.LeadInput{
			QuoteValue:     value,
			ItemCount:      items,
			ConversionDays: days,
			CompanyName:    name,
		}

		result, err := newAPIClient().MatchUseCase(ctx, in)
		if err != nil {
			return err
		}

		view := model.PresentMatch(*result)
		uc := view.RecommendedUseCase

		fmt.Printf("Recommended use case: %s\n", uc.Title)
		fmt.Printf("  Industry:  %s\n", uc.Industry)
		fmt.Printf("  Solution:  %s\n", uc.SolutionSummary)
		if uc.SuccessMetrics != "" {
			fmt.Printf("  Results:   %s\n", uc.SuccessMetrics)
		}
		if len(uc.PainPoints) > 0 {
			fmt.Printf("  Addresses: %s\n", strings.Join(uc.PainPoints, "; "))
		}

		fmt.Printf("\nLead profile\n")
		fmt.Printf("  Segment:  %s\n", view.SegmentAssigned)
		fmt.Printf("  Maturity: %s\n", view.MaturityLevel)
		fmt.Printf("  Industry: %s\n", view.IndustryDetected)
		if segs := view.SummarySegments(); len(segs) > 0 {
			fmt.Printf("  Also relevant to: %s\n", strings.Join(segs, ", "))
		}

		if crmID != "" {
			client, err := newCRMClient()
			if err != nil {
				return err
			}
			note := fmt.Sprintf("Recommended use case: %s (%s)", uc.Title, uc.SolutionSummary)
			if err := client.UpdateLeadAIData(ctx, crmID, 0, uc.Title, note); err != nil {
				return err
			}
			zap.L().Info("wrote recommendation to CRM",
				zap.String("lead_id", crmID),
				zap.String("use_case", uc.Title),
			)
		}

		return nil
	},
}

func init() {
	matchCmd.Flags().Float64("value", 0, "quote value in dollars")
	matchCmd.Flags().Int("items", 0, "number of quoted items")
	matchCmd.Flags().Int("days", 0, "days since first contact")
	matchCmd.Flags().String("name", "", "company name")
	matchCmd.Flags().String("crm-id", "", "Salesforce lead ID to write the recommendation back to")
	_ = matchCmd.MarkFlagRequired("value")
	_ = matchCmd.MarkFlagRequired("items")
	rootCmd.AddCommand(matchCmd)
}

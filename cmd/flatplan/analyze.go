package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flatplan/internal/models"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Neighborhood analysis for property locations",
}

var (
	analyzeLat     float64
	analyzeLon     float64
	analyzeAddress string
	analyzeRadius  int
	analyzeProfile string
	historyPage    int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeLocationCmd.Flags().Float64Var(&analyzeLat, "lat", 0, "Latitude (required)")
	analyzeLocationCmd.Flags().Float64Var(&analyzeLon, "lon", 0, "Longitude (required)")
	analyzeLocationCmd.Flags().StringVar(&analyzeAddress, "address", "", "Address label for the report")
	analyzeLocationCmd.Flags().IntVar(&analyzeRadius, "radius", 0, "Analysis radius in meters")
	analyzeLocationCmd.Flags().StringVar(&analyzeProfile, "profile", "", "Scoring profile")
	_ = analyzeLocationCmd.MarkFlagRequired("lat")
	_ = analyzeLocationCmd.MarkFlagRequired("lon")

	analyzeHistoryCmd.Flags().IntVar(&historyPage, "page", 0, "Result page")

	analyzeCmd.AddCommand(analyzeLocationCmd)
	analyzeCmd.AddCommand(analyzeProvidersCmd)
	analyzeCmd.AddCommand(analyzeHistoryCmd)
}

var analyzeLocationCmd = &cobra.Command{
	Use:     "location",
	Short:   "Analyze the neighborhood around coordinates",
	Example: `  flatplan analyze location --lat 52.52 --lon 13.405 --radius 800`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := apiClient.Analysis.AnalyzeLocation(cmd.Context(), models.AnalyzeLocationRequest{
			Latitude:  analyzeLat,
			Longitude: analyzeLon,
			Address:   analyzeAddress,
			Radius:    analyzeRadius,
			Profile:   analyzeProfile,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(report)
			return nil
		}

		printReport(report)
		return nil
	},
}

var analyzeProvidersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported listing sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		providers, err := apiClient.Analysis.Providers(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(providers)
			return nil
		}

		for _, p := range providers {
			status := "disabled"
			if p.Enabled {
				status = "enabled"
			}
			fmt.Printf("%-20s %-25s %s\n", p.Name, p.Domain, status)
		}
		return nil
	},
}

var analyzeHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		reports, meta, err := apiClient.Analysis.History(cmd.Context(), historyPage)
		if err != nil {
			return err
		}

		if jsonOutput {
			out := map[string]interface{}{"reports": reports}
			if meta != nil {
				out["count"] = meta.Count
			}
			printJSON(out)
			return nil
		}

		if len(reports) == 0 {
			printInfo("No analyses yet")
			return nil
		}
		for _, r := range reports {
			score := "-"
			if r.NeighborhoodScore != nil {
				score = fmt.Sprintf("%.1f", *r.NeighborhoodScore)
			}
			fmt.Printf("%4d  %-40s score %s\n", r.ID, r.Address, score)
		}
		return nil
	},
}

func printReport(report *models.LocationReport) {
	fmt.Printf("Analysis for %s\n", report.Address)
	if report.NeighborhoodScore != nil {
		fmt.Printf("  Score: %.1f\n", *report.NeighborhoodScore)
	}
	fmt.Printf("  Radius: %dm\n", report.AnalysisRadius)

	if len(report.Pros) > 0 {
		printSuccess("  Pros:")
		for _, p := range report.Pros {
			fmt.Printf("    + %s\n", p)
		}
	}
	if len(report.Cons) > 0 {
		printWarning("  Cons:")
		for _, c := range report.Cons {
			fmt.Printf("    - %s\n", c)
		}
	}
	if len(report.Checklist) > 0 {
		printInfo("  Checklist:")
		for _, item := range report.Checklist {
			fmt.Printf("    * %s\n", item)
		}
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report propositions contradicted by supporting claims",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.WithValue(cmd.Context(), types.ContextKeyRequestSource, "cli")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := bootstrap(ctx, cfg, components{pipeline: true})
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		results, err := a.client.AnalyzeContradictions(ctx)
		if err != nil {
			return err
		}
		if analyzeJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		printResults(cmd.OutOrStdout(), results)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func printResults(w io.Writer, results []types.PropositionResult) {
	contradicted := 0
	for _, r := range results {
		if !r.HasContradictions() {
			continue
		}
		contradicted++
		fmt.Fprintf(w, "\n%q\n", r.Proposition.Text)
		for _, c := range r.Pairwise {
			fmt.Fprintf(w, "  contradicted by %q (%s, chunk %d)\n    %s\n",
				c.ResourceText, c.ResourceProvenance.DocTitle, c.ResourceProvenance.ChunkIndex, c.Reason)
		}
		for _, c := range r.Fallback {
			fmt.Fprintf(w, "  contradicted by %s %q\n    %s\n", c.EvidenceID, c.EvidenceText, c.Reason)
		}
	}
	fmt.Fprintf(w, "\n%d of %d propositions contradicted\n", contradicted, len(results))
}

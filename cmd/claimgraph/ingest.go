package main

import (
	"context"
	"fmt"
	"os"

	"github.com/soundprediction/claimgraph"
	"github.com/soundprediction/claimgraph/pkg/types"
	"github.com/spf13/cobra"
)

var (
	ingestTitle   string
	ingestFile    string
	ingestSchema  string
	ingestContext string
)

var ingestCmd = &cobra.Command{
	Use:       "ingest supporting|main",
	Short:     "Extract a document into the claim graph",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(types.SupportingDocument), string(types.MainDocument)},
	RunE:      runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title")
	ingestCmd.Flags().StringVar(&ingestFile, "file", "", "path to the document text")
	ingestCmd.Flags().StringVar(&ingestSchema, "schema", "", "path to the extraction schema (YAML or JSON)")
	ingestCmd.Flags().StringVar(&ingestContext, "context", "", "project context passed to extraction")
	_ = ingestCmd.MarkFlagRequired("title")
	_ = ingestCmd.MarkFlagRequired("file")
	_ = ingestCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(ingestFile)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	schema, err := types.LoadSchema(ingestSchema)
	if err != nil {
		return err
	}

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

	req := claimgraph.DocumentRequest{
		Title:          ingestTitle,
		Content:        string(content),
		Schema:         schema,
		ProjectContext: ingestContext,
	}

	out := cmd.OutOrStdout()
	switch types.DocumentKind(args[0]) {
	case types.SupportingDocument:
		id, err := a.client.IngestSupportingDocument(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Ingested supporting document %d: %s\n", id, ingestTitle)
	default:
		if err := a.client.IngestMainDocument(ctx, req); err != nil {
			return err
		}
		fmt.Fprintf(out, "Ingested main document: %s\n", ingestTitle)
	}
	return nil
}

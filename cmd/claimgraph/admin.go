package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check graph store connectivity and print counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := bootstrap(ctx, cfg, components{graph: true})
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Graph driver: %s (%s)\n", a.graph.Provider(), cfg.Graph.URI)
		if err := a.graph.VerifyConnectivity(ctx); err != nil {
			fmt.Fprintf(out, "Connection failed: %v\n", err)
			return err
		}
		fmt.Fprintln(out, "Connection successful")

		stats, err := a.graph.GetStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Nodes: %d\n", stats.NodeCount)
		for _, label := range sortedKeys(stats.NodesByLabel) {
			fmt.Fprintf(out, "  %s: %d\n", label, stats.NodesByLabel[label])
		}
		fmt.Fprintf(out, "Edges: %d\n", stats.EdgeCount)
		for _, relType := range sortedKeys(stats.EdgesByType) {
			fmt.Fprintf(out, "  %s: %d\n", relType, stats.EdgesByType[relType])
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the documents table and graph lookup indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// bootstrap migrates the documents table.
		a, err := bootstrap(ctx, cfg, components{graph: true, store: true})
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		if err := a.graph.CreateIndices(ctx); err != nil {
			return fmt.Errorf("failed to create graph indexes: %w", err)
		}
		a.logger.Info("Initialized stores", "graph", a.graph.Provider(), "documents", cfg.Documents.Driver)
		return nil
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every node and edge in the graph and every document record",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.New("refusing to delete all data without --yes")
		}
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := bootstrap(ctx, cfg, components{graph: true, store: true})
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		if err := a.graph.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear graph: %w", err)
		}
		if err := a.store.Reset(ctx); err != nil {
			return err
		}
		a.logger.Info("All graph data and document records deleted")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deletion")
	rootCmd.AddCommand(checkCmd, initCmd, resetCmd)
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

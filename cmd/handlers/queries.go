package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/llm"
	"curator/internal/logger"
	"curator/internal/queries"
)

// NewQueriesCmd creates the search-query planning command.
func NewQueriesCmd() *cobra.Command {
	var profileFile string
	var sourceList string
	var outputFile string

	queriesCmd := &cobra.Command{
		Use:   "queries",
		Short: "Generate ranked search queries for a profile",
		Long: `Turn a user profile into a per-source search query plan for the
upstream collectors. The plan is printed as JSON; feed it to whatever
does the actual collection.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runQueries(cmd.Context(), profileFile, sourceList, outputFile); err != nil {
				logger.Error("Query generation failed", err)
				os.Exit(1)
			}
		},
	}

	queriesCmd.Flags().StringVarP(&profileFile, "profile", "p", "", "JSON file with the user profile (required)")
	queriesCmd.Flags().StringVarP(&sourceList, "sources", "s", "rss,github,reddit,news", "comma-separated target sources")
	queriesCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the plan as JSON to this path")
	_ = queriesCmd.MarkFlagRequired("profile")

	return queriesCmd
}

func runQueries(ctx context.Context, profileFile, sourceList, outputFile string) error {
	profile, err := loadProfile(profileFile)
	if err != nil {
		return err
	}

	var targets []string
	for _, s := range strings.Split(sourceList, ",") {
		if s = strings.TrimSpace(s); s != "" {
			targets = append(targets, s)
		}
	}
	if len(targets) == 0 {
		return fmt.Errorf("no target sources given")
	}

	cfg := config.Get()
	client, err := llm.NewClient(cfg.Gemini.Model)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer client.Close()

	opts := queries.DefaultGeneratorOptions()
	opts.ModelName = cfg.Gemini.Model
	generator := queries.NewGenerator(client, opts)

	plan := generator.GenerateQueries(ctx, profile, targets)

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write plan: %w", err)
		}
		fmt.Printf("🔍 Query plan written to %s\n", outputFile)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

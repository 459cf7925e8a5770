package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"curator/internal/core"
	"curator/internal/logger"
	"curator/internal/pipeline"
)

// NewBatchCmd creates the batch generation command.
func NewBatchCmd() *cobra.Command {
	var groupsFile string
	var profileFile string
	var outputDir string
	var continueOnError bool
	var maxConcurrent int

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate multiple articles from grouped content",
		Long: `Run the pipeline once per source group from a JSON file containing an
array of content-item arrays. Failures are either collected or abort
the remaining groups, depending on --continue-on-error.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runBatch(cmd.Context(), groupsFile, profileFile, outputDir, continueOnError, maxConcurrent); err != nil {
				logger.Error("Batch generation failed", err)
				os.Exit(1)
			}
		},
	}

	batchCmd.Flags().StringVarP(&groupsFile, "groups", "g", "", "JSON file with an array of content-item groups (required)")
	batchCmd.Flags().StringVarP(&profileFile, "profile", "p", "", "JSON file with the user profile (required)")
	batchCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "write generated articles into this directory")
	batchCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "keep processing groups after a failure")
	batchCmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "concurrent groups (0 uses pipeline.max_concurrent)")
	_ = batchCmd.MarkFlagRequired("groups")
	_ = batchCmd.MarkFlagRequired("profile")

	return batchCmd
}

func runBatch(ctx context.Context, groupsFile, profileFile, outputDir string, continueOnError bool, maxConcurrent int) error {
	var groups [][]core.ContentItem
	if err := loadJSON(groupsFile, &groups); err != nil {
		return err
	}
	profile, err := loadProfile(profileFile)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(true)
	if err != nil {
		return err
	}
	defer rt.close()

	batch := rt.pipeline.GenerateArticlesBatch(ctx, groups, profile, pipeline.BatchOptions{
		MaxConcurrent:   maxConcurrent,
		ContinueOnError: continueOnError,
	})

	fmt.Printf("Batch finished: %d successful, %d failed of %d groups\n",
		len(batch.Successful), len(batch.Failed), len(groups))
	if len(batch.Successful) > 0 {
		fmt.Printf("Average quality %.1f, average interest %.1f\n", batch.AvgQuality, batch.AvgInterest)
	}

	for _, result := range batch.Successful {
		printResult(result)
		if outputDir != "" {
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			path := filepath.Join(outputDir, result.Article.ID+".md")
			if err := writeArticle(result.Article, path); err != nil {
				return err
			}
		}
	}
	for _, result := range batch.Failed {
		printResult(result)
	}

	if len(batch.Failed) > 0 && len(batch.Successful) == 0 {
		return fmt.Errorf("all %d groups failed", len(batch.Failed))
	}
	return nil
}

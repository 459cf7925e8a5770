package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"curator/internal/core"
	"curator/internal/logger"
)

// NewGenerateCmd creates the single-article generation command.
func NewGenerateCmd() *cobra.Command {
	var itemsFile string
	var profileFile string
	var outputFile string
	var noPersist bool

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one personalized article from collected content",
		Long: `Run the full pipeline over a JSON file of collected content items:
quality filtering, interest filtering, source selection, generation,
classification, tagging, and a final evaluation of the result.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runGenerate(cmd.Context(), itemsFile, profileFile, outputFile, !noPersist); err != nil {
				logger.Error("Generation failed", err)
				os.Exit(1)
			}
		},
	}

	generateCmd.Flags().StringVarP(&itemsFile, "items", "i", "", "JSON file of collected content items (required)")
	generateCmd.Flags().StringVarP(&profileFile, "profile", "p", "", "JSON file with the user profile (required)")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the article as markdown to this path")
	generateCmd.Flags().BoolVar(&noPersist, "no-persist", false, "skip saving the article to the local database")
	_ = generateCmd.MarkFlagRequired("items")
	_ = generateCmd.MarkFlagRequired("profile")

	return generateCmd
}

func runGenerate(ctx context.Context, itemsFile, profileFile, outputFile string, persist bool) error {
	var items []core.ContentItem
	if err := loadJSON(itemsFile, &items); err != nil {
		return err
	}
	profile, err := loadProfile(profileFile)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(persist)
	if err != nil {
		return err
	}
	defer rt.close()

	result := rt.pipeline.GenerateArticle(ctx, items, profile)
	printResult(result)

	if !result.Success {
		return fmt.Errorf("%s", result.Error)
	}

	if outputFile != "" {
		if err := writeArticle(result.Article, outputFile); err != nil {
			return err
		}
		fmt.Printf("📄 Article written to %s\n", outputFile)
	}

	return nil
}

package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"curator/internal/logger"
	"curator/internal/pipeline"
)

// NewDiagnoseCmd creates the pipeline self-diagnosis command.
func NewDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Probe every pipeline stage and report health",
		Long: `Exercise each pipeline stage with canned input and report per-stage
availability and latency. Overall health is healthy when every stage
responds, degraded when at least 60% respond, unhealthy otherwise.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runDiagnose(cmd.Context()); err != nil {
				logger.Error("Diagnostics failed", err)
				os.Exit(1)
			}
		},
	}
}

func runDiagnose(ctx context.Context) error {
	rt, err := buildRuntime(false)
	if err != nil {
		return err
	}
	defer rt.close()

	report := rt.pipeline.Diagnose(ctx)

	fmt.Println("🩺 Pipeline Diagnostics")
	fmt.Println("=======================")
	for _, s := range report.Stages {
		mark := "✅"
		if !s.Available {
			mark = "❌"
		}
		fmt.Printf("%s %-18s %6dms", mark, s.Stage, s.LatencyMs)
		if s.Detail != "" {
			fmt.Printf("  (%s)", s.Detail)
		}
		fmt.Println()
	}
	fmt.Printf("\nOverall: %s\n", report.Status)

	if report.Status == pipeline.HealthUnhealthy {
		return fmt.Errorf("pipeline is unhealthy")
	}
	return nil
}

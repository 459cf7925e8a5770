package handlers

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/logger"
	"curator/internal/store"
)

// NewCacheCmd creates the cache management command.
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local article and score cache",
		Long:  `Inspect and clean the SQLite database holding generated articles and durable score caches.`,
	}

	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheClearCmd())
	cacheCmd.AddCommand(newCacheCleanupCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics and storage information",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheStats(); err != nil {
				logger.Error("Failed to get cache stats", err)
				os.Exit(1)
			}
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached scores (generated articles are kept)",
		Run: func(cmd *cobra.Command, args []string) {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if err := runCacheClear(confirm); err != nil {
				logger.Error("Failed to clear cache", err)
				os.Exit(1)
			}
		},
	}
	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func newCacheCleanupCmd() *cobra.Command {
	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove cached scores older than a maximum age",
		Run: func(cmd *cobra.Command, args []string) {
			maxAge, _ := cmd.Flags().GetDuration("max-age")
			if err := runCacheCleanup(maxAge); err != nil {
				logger.Error("Failed to clean cache", err)
				os.Exit(1)
			}
		},
	}
	cleanupCmd.Flags().Duration("max-age", 7*24*time.Hour, "remove score entries older than this")
	return cleanupCmd
}

func openStore() (*store.Store, error) {
	s, err := store.NewStore(config.GetDataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	return s, nil
}

func runCacheStats() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.GetCacheStats()
	if err != nil {
		return fmt.Errorf("failed to get cache statistics: %w", err)
	}

	fmt.Println("📊 Cache Statistics")
	fmt.Println("==================")
	fmt.Printf("📄 Articles stored: %d\n", stats.ArticleCount)
	fmt.Printf("🔢 Scores cached: %d\n", stats.ScoreCount)
	fmt.Printf("💾 Database size: %.2f MB\n", float64(stats.FileSize)/1024/1024)
	fmt.Printf("📅 Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))

	return nil
}

func runCacheClear(confirm bool) error {
	if !confirm {
		fmt.Print("⚠️  This will remove all cached scores. Continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Println("Cache clear cancelled")
			return nil
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ClearCache(); err != nil {
		return err
	}
	fmt.Println("🧹 Score cache cleared")
	return nil
}

func runCacheCleanup(maxAge time.Duration) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.CleanupOldScores(maxAge); err != nil {
		return err
	}
	fmt.Printf("🧹 Removed score entries older than %s\n", maxAge)
	return nil
}

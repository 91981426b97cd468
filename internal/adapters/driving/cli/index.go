package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tutorforge/internal/connectors/filesystem"
	"github.com/custodia-labs/tutorforge/internal/core/domain"
	"github.com/custodia-labs/tutorforge/internal/core/ports/driving"
	"github.com/custodia-labs/tutorforge/internal/logger"
)

// watchDebounce is how long the folder must be quiet before reindexing.
var watchDebounce = 2 * time.Second

var (
	indexForce bool
	indexWatch bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the knowledge folder",
	Long: `Index the .txt, .md and .pdf files of the knowledge folder so the
rewriter can retrieve background material from them.

Files are indexed once; changed files are picked up on the next run.
Use --force to index everything again, and --watch to keep indexing as
files change.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "reindex files that were already indexed")
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "keep watching the folder for changes")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}
	knowledge := rt.Knowledge

	stats, err := knowledge.IndexFolder(cmd.Context(), indexForce)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	printIndexStats(cmd, knowledge.Folder(), stats)

	if !indexWatch {
		return nil
	}
	return watchFolder(cmd, knowledge)
}

// watchFolder reindexes the folder after each burst of changes until the
// command context is cancelled.
func watchFolder(cmd *cobra.Command, knowledge driving.KnowledgeService) error {
	ctx := cmd.Context()
	watcher := filesystem.NewWatcher(knowledge.Folder())
	defer watcher.Close()

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching %s: %w", knowledge.Folder(), err)
	}
	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", knowledge.Folder())

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("%s %s", change.Type, change.Path)
			timer.Reset(watchDebounce)
		case <-timer.C:
			reindex(ctx, cmd, knowledge)
		}
	}
}

func reindex(ctx context.Context, cmd *cobra.Command, knowledge driving.KnowledgeService) {
	stats, err := knowledge.IndexFolder(ctx, false)
	if err != nil {
		logger.Error("reindex: %v", err)
		return
	}
	if stats.Indexed > 0 || stats.Failed > 0 {
		printIndexStats(cmd, knowledge.Folder(), stats)
	}
}

func printIndexStats(cmd *cobra.Command, folder string, stats domain.IndexStats) {
	cmd.Printf("%s: %d indexed, %d skipped, %d failed\n", folder, stats.Indexed, stats.Skipped, stats.Failed)
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Arpanmondalz/zen-spend/internal/offline"
	"github.com/Arpanmondalz/zen-spend/web"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the offline asset cache",
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Install the current asset generation and evict stale ones",
	RunE:  runCacheWarm,
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show installed asset generations",
	RunE:  runCacheStatus,
}

func init() {
	cacheCmd.AddCommand(cacheWarmCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheWarm(cmd *cobra.Command, _ []string) error {
	loadEnvFile()
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	assets, err := buildOfflineController(cfg, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := assets.Install(ctx); err != nil {
		return fmt.Errorf("install assets: %w", err)
	}
	if err := assets.Activate(ctx); err != nil {
		return fmt.Errorf("activate cache: %w", err)
	}

	_, generation := assets.Status()
	logger.Info("Asset cache warmed", "generation", generation)
	return nil
}

func runCacheStatus(cmd *cobra.Command, _ []string) error {
	loadEnvFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	manifest, err := offline.ParseManifest(web.ManifestTOML)
	if err != nil {
		return err
	}
	store, err := offline.NewStore(cfg.CacheDir)
	if err != nil {
		return err
	}

	generations, err := store.Generations()
	if err != nil {
		return err
	}

	fmt.Printf("current generation: %s (%d assets)\n", manifest.Generation, manifest.AssetCount())
	if len(generations) == 0 {
		fmt.Println("installed: none")
		return nil
	}
	for _, gen := range generations {
		marker := ""
		if gen == manifest.Generation {
			marker = " *"
		}
		fmt.Printf("installed: %s%s\n", gen, marker)
	}
	return nil
}

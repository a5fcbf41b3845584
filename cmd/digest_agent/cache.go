package main

import (
	"fmt"

	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/observability"
	"github.com/jonathan/story-digest/internal/types"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and invalidate the asset cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove every cached asset of one index",
	Long:  "Removes the html, png, jpg, pdf and json assets of an index so the next resolve fetches them again.",
	RunE:  runCachePurge,
}

var cacheListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the cached assets of one index",
	RunE:  runCacheList,
}

var cacheIndex string

func init() {
	for _, cmd := range []*cobra.Command{cachePurgeCmd, cacheListCmd} {
		cmd.Flags().StringVar(&cacheIndex, "index", "", "Reference index (required)")
		if err := cmd.MarkFlagRequired("index"); err != nil {
			panic(fmt.Sprintf("failed to mark index flag as required: %v", err))
		}
		cacheCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(cacheCmd)
}

func openCache(cmd *cobra.Command) (*assets.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	return assets.NewCache(assets.NewFileStore(cfg.AssetDir), nil, logger), nil
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	if err := cache.Purge(types.Index(cacheIndex)); err != nil {
		return fmt.Errorf("failed to purge index %s: %w", cacheIndex, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Purged cached assets of index %s\n", cacheIndex)
	return nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	cache, err := openCache(cmd)
	if err != nil {
		return err
	}
	index := types.Index(cacheIndex)
	for _, kind := range assets.Kinds {
		if cache.Has(index, kind) {
			fmt.Fprintln(cmd.OutOrStdout(), cache.Path(index, kind))
		}
	}
	return nil
}

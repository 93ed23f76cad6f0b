package plugindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plugindex/plugindex"
	"github.com/plugindex/plugindex/pkg/config"
	"github.com/plugindex/plugindex/pkg/logger"
	"github.com/plugindex/plugindex/pkg/meta"
	"github.com/plugindex/plugindex/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a one-shot catalog search and print the result as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

var (
	searchPage        int
	searchLimit       int
	searchSort        string
	searchCategories  []string
	searchLabels      []string
	searchMaintainers []string
	searchCore        string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchPage, "page", 1, "Page number (1-based)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", plugindex.DefaultLimit, "Results per page")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "Sort order (firstRelease, installed, name, title, trend, updated)")
	searchCmd.Flags().StringSliceVar(&searchCategories, "category", nil, "Filter by category (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchLabels, "label", nil, "Filter by label (repeatable)")
	searchCmd.Flags().StringSliceVar(&searchMaintainers, "maintainer", nil, "Filter by maintainer (repeatable)")
	searchCmd.Flags().StringVar(&searchCore, "core", "", "Filter by required core version")
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.Log)

	sortBy, ok := types.ParseSortBy(searchSort)
	if !ok {
		return fmt.Errorf("unknown sort order %q", searchSort)
	}

	store, err := meta.Load()
	if err != nil {
		return fmt.Errorf("failed to load facet metadata: %w", err)
	}

	eng, closeEngine, err := newEngine(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer closeEngine()

	catalog := plugindex.New(eng, store,
		plugindex.WithCollection(cfg.Engine.Collection),
		plugindex.WithLogger(log),
	)

	req := types.SearchRequest{
		Query:       strings.Join(args, " "),
		Page:        searchPage,
		Limit:       searchLimit,
		Categories:  searchCategories,
		Labels:      searchLabels,
		Maintainers: searchMaintainers,
		CoreVersion: searchCore,
		SortBy:      sortBy,
	}

	page, err := catalog.Search(context.Background(), req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	movierec "github.com/kailas-cloud/movierec/pkg/sdk"
)

// clientOpener builds an SDK client from the persistent flags.
type clientOpener func(cmd *cobra.Command) (*movierec.Client, error)

func NewRootCmd(version string, open clientOpener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "movierecctl",
		Short:         "Query the movie recommender from the command line",
		Long:          `Rank similar movies from a precomputed similarity matrix and resolve their posters.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	rootCmd.AddCommand(
		NewRecommendCmd(open),
		NewTitlesCmd(open),
		NewPostersCmd(open),
		NewConvertMatrixCmd(),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("catalog", envOr("MOVIEREC_CATALOG", "data/movie_list.json"), "Catalog JSON file")
	f.String("matrix", envOr("MOVIEREC_MATRIX", "data/similarity.bin"), "Similarity matrix file (.bin or .json)")
	f.String("tmdb-key", os.Getenv("TMDB_API_KEY"), "TMDB API key; posters are skipped when empty")
	f.String("tmdb-base-url", "", "Override the TMDB API root")
	f.String("cache-addr", "", "Redis/Valkey address for the poster cache")
	f.Int("limit", 5, "Number of similar movies")
	f.Int("workers", 5, "Concurrent poster lookups")
	f.Bool("json", false, "Output in JSON format")
	f.BoolP("verbose", "v", false, "Log SDK operations to stderr")
	_ = f.MarkHidden("tmdb-base-url")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func openClient(cmd *cobra.Command) (*movierec.Client, error) {
	f := cmd.Flags()
	catalogPath, _ := f.GetString("catalog")
	matrixPath, _ := f.GetString("matrix")
	tmdbKey, _ := f.GetString("tmdb-key")
	tmdbBase, _ := f.GetString("tmdb-base-url")
	cacheAddr, _ := f.GetString("cache-addr")
	limit, _ := f.GetInt("limit")
	workers, _ := f.GetInt("workers")
	verbose, _ := f.GetBool("verbose")

	opts := []movierec.Option{
		movierec.WithArtifacts(catalogPath, matrixPath),
		movierec.WithLimit(limit),
		movierec.WithWorkers(workers),
	}
	if tmdbKey != "" {
		opts = append(opts, movierec.WithTMDB(tmdbKey))
		if tmdbBase != "" {
			opts = append(opts, movierec.WithTMDBEndpoints(tmdbBase, ""))
		}
	}
	if cacheAddr != "" {
		opts = append(opts, movierec.WithValkey(cacheAddr, os.Getenv("CACHE_PASSWORD")), movierec.WithStandalone())
	}
	if verbose {
		opts = append(opts, movierec.WithLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
			&slog.HandlerOptions{Level: slog.LevelDebug}))))
	}

	c, err := movierec.New(cmd.Context(), opts...)
	if err != nil {
		return nil, fmt.Errorf("open recommender: %w", err)
	}
	return c, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

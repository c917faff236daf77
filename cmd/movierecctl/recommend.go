package main

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	movierec "github.com/kailas-cloud/movierec/pkg/sdk"
)

func NewRecommendCmd(open clientOpener) *cobra.Command {
	return &cobra.Command{
		Use:     "recommend <title>",
		Aliases: []string{"rec"},
		Short:   "Show movies similar to a title, with posters",
		Args:    cobra.MinimumNArgs(1),
		RunE:    makeRecommendRunner(open),
	}
}

func makeRecommendRunner(open clientOpener) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := open(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		recs, err := client.Recommend(cmd.Context(), title)
		if errors.Is(err, movierec.ErrTitleNotFound) {
			return fmt.Errorf("%q is not in the catalog (try: movierecctl titles --grep %q)", title, firstWord(title))
		}
		if err != nil {
			return err
		}

		if asJSON {
			return outputRecommendJSON(cmd, title, recs)
		}

		out := cmd.OutOrStdout()
		for i, r := range recs {
			poster := "-"
			if r.Poster.Found {
				poster = r.Poster.URL
			}
			fmt.Fprintf(out, "%d. %s (%.3f) %s\n", i+1, r.Title, r.Score, poster)
		}
		return nil
	}
}

func outputRecommendJSON(cmd *cobra.Command, title string, recs []movierec.Recommendation) error {
	items := make([]map[string]any, 0, len(recs))
	for i, r := range recs {
		item := map[string]any{
			"rank":  i + 1,
			"title": r.Title,
			"score": nil,
		}
		if !math.IsNaN(r.Score) && !math.IsInf(r.Score, 0) {
			item["score"] = r.Score
		}
		if r.Poster.Found {
			item["poster_url"] = r.Poster.URL
		}
		items = append(items, item)
	}
	return writeJSON(cmd.OutOrStdout(), map[string]any{"query": title, "items": items})
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}

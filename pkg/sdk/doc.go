// Package movierec embeds the movie recommender in a Go program: it loads the
// precomputed catalog and similarity matrix, ranks similar titles and resolves
// their posters with a bounded pool of concurrent lookups.
//
//	client, err := movierec.New(ctx,
//	    movierec.WithArtifacts("data/movie_list.json", "data/similarity.bin"),
//	    movierec.WithTMDB(os.Getenv("TMDB_API_KEY")),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	recs, err := client.Recommend(ctx, "Avatar")
//	for _, r := range recs {
//	    fmt.Println(r.Title, r.PosterURL)
//	}
//
// Poster lookups can be cached in Redis or Valkey (WithRedis, WithValkey).
// A failed lookup only leaves that one title without a poster.
package movierec

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewPostersCmd(open clientOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "posters <title>...",
		Short: "Resolve posters for titles concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  makePostersRunner(open),
	}
}

func makePostersRunner(open clientOpener) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := open(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		posters := client.FetchPosters(cmd.Context(), args)

		if asJSON {
			data := make(map[string]*string, len(posters))
			for t, p := range posters {
				if p.Found {
					u := p.URL
					data[t] = &u
				} else {
					data[t] = nil
				}
			}
			return writeJSON(cmd.OutOrStdout(), data)
		}

		seen := make(map[string]struct{}, len(args))
		for _, t := range args {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			p := posters[t]
			url := "-"
			if p.Found {
				url = p.URL
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t, url)
		}
		return nil
	}
}

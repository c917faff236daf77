package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewTitlesCmd(open clientOpener) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "titles",
		Aliases: []string{"ls"},
		Short:   "List catalog titles",
		Args:    cobra.NoArgs,
		RunE:    makeTitlesRunner(open),
	}
	cmd.Flags().String("grep", "", "Case-insensitive substring filter")
	return cmd
}

func makeTitlesRunner(open clientOpener) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		grep, _ := cmd.Flags().GetString("grep")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := open(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		needle := strings.ToLower(grep)
		matched := make([]string, 0)
		for _, t := range client.Titles() {
			if needle == "" || strings.Contains(strings.ToLower(t), needle) {
				matched = append(matched, t)
			}
		}

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), matched)
		}
		for _, t := range matched {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	}
}

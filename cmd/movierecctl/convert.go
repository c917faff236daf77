package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/movierec/internal/repository/artifact"
)

func NewConvertMatrixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert-matrix <in> <out>",
		Short: "Convert a similarity matrix to the binary MSIM format",
		Long: `Read a matrix (JSON rows, or MSIM with float32/float64 elements)
and write it as float32 MSIM, which loads faster and is half the size.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := artifact.ReadMatrix(args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("create %s: %w", args[1], err)
			}
			if err := artifact.WriteMatrix(f, m); err != nil {
				_ = f.Close()
				return fmt.Errorf("write %s: %w", args[1], err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", args[1], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %dx%d matrix to %s\n", m.Size(), m.Size(), args[1])
			return nil
		},
	}
}

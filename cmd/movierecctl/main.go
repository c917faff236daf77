package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kailas-cloud/movierec/internal/version"
)

func main() {
	rootCmd := NewRootCmd(version.String(), openClient)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "movierecctl:", err)
		os.Exit(1)
	}
}

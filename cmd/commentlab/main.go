package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/ppiankov/commentlab/internal/cli"
	"github.com/ppiankov/commentlab/internal/model"
)

func main() {
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode is 2 for configuration errors, 3 for data errors and 1 otherwise.
func exitCode(err error) int {
	switch {
	case errors.Is(err, model.ErrConfig):
		return 2
	case errors.Is(err, model.ErrData):
		return 3
	}
	return 1
}

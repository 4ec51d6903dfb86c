package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"captionforge/internal/services"
)

func main() {
	err := newRootCommand().Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "captionforge:", err)
	}
	os.Exit(services.ExitCode(err))
}

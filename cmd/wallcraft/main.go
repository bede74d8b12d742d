package main

import (
	"fmt"
	"os"

	"github.com/FenadoAI/fv2-ai-wall-craft-sdk648/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	// Development convenience: re-exec when the binary is rebuilt.
	if os.Getenv("WALLCRAFT_AUTORESTART") == "1" {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

package main

// Run the career workflow against a local resume without the HTTP server:
//   go run ./cmd/coach run --resume ./resume.pdf --answers ./answers.txt

import (
	"os"

	"career-booster/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

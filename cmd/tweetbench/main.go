package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/kvellian/tweetbench/internal/cli"
	"github.com/kvellian/tweetbench/pkg/tweetbench"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(tweetbench.ExitPanic)
		}
	}()

	if os.Getenv("TWEETBENCH_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(tweetbench.ExitCodeForError(err))
	}
}

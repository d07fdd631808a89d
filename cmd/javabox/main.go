package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"javabox/internal/cli"
	"javabox/internal/dist"
	"javabox/internal/identity"
	"javabox/internal/launcher"
	"javabox/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	id, err := identity.Resolve(os.Args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "javabox: %v\n", err)
		return launcher.ExitFailure
	}

	env, err := launcher.Setup(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "javabox: %v\n", err)
		return launcher.ExitFailure
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if id == identity.Admin {
		if err := cli.Execute(ctx, env, os.Args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "javabox: %v\n", err)
			return launcher.ExitFailure
		}
		return 0
	}

	mode := tui.DetectMode(os.Stderr, env.Settings.NoProgress, false)
	reporter, progress := tui.NewReporter(os.Stderr, mode, "javabox "+id.String(), dist.LogReporter{Logger: env.Logger})
	l := env.Launcher(reporter, nil)
	l.Prepared = func() { _ = progress.Close() }

	// The tool owns the terminal once it starts; its own signal handling
	// decides how an interrupt ends the run.
	code, err := l.Run(ctx, id, os.Args[1:])
	if err != nil {
		_ = progress.Close()
		fmt.Fprintf(os.Stderr, "javabox: %v\n", err)
		return launcher.ExitCode(err)
	}
	return code
}

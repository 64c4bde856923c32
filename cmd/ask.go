package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/askviz/askviz/internal/log"
	"github.com/askviz/askviz/internal/pipeline"
	"github.com/askviz/askviz/internal/store"
)

// runAsk runs the pipeline once against the active thread and prints the
// result. The artifact is appended to the thread like an interactive run.
func runAsk(logger log.Logger, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("usage: askviz ask <question>")
	}

	rt, err := newRuntime(logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var thread *store.Thread
	if active, ok := rt.threads.Active(); ok {
		thread = &active
	}

	artifact, created, err := rt.runner.Run(ctx, question, thread, func(p pipeline.Phase) {
		switch p {
		case pipeline.PhaseAsking:
			fmt.Fprintln(os.Stderr, "Translating question to SQL...")
		case pipeline.PhaseCharting:
			fmt.Fprintln(os.Stderr, "Generating chart...")
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	rt.threads.AppendChart(artifact.ThreadID, artifact)
	if created {
		if err := rt.threads.SetActive(artifact.ThreadID); err != nil {
			logger.Warn("activating new thread", "error", err)
		}
	}

	fmt.Printf("Title: %s\n", artifact.Title)
	fmt.Printf("Thread: %s\n", artifact.ThreadID)
	fmt.Println()
	fmt.Println(artifact.SQL)
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/askviz/askviz/internal/log"
	"github.com/askviz/askviz/internal/tui"
)

// runTUI initializes the stack and starts the interactive interface.
func runTUI(logger log.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime(logger)
	if err != nil {
		return err
	}

	model, err := tui.New(rt.controller, rt.runner, logger)
	if err != nil {
		return fmt.Errorf("creating interface: %w", err)
	}

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("interface exited: %w", err)
	}
	return nil
}

// Package cmd provides CLI commands for askviz.
//
// Commands:
//   - (default): interactive terminal interface with Bubble Tea
//   - ask: one-shot question, prints the generated SQL and chart title
//   - threads: thread management (list, rename, delete, pin, unpin)
//
// The interactive interface handles cancellation via context: Esc aborts
// the in-flight question, Ctrl+D exits.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/askviz/askviz/internal/config"
	"github.com/askviz/askviz/internal/log"
	"github.com/askviz/askviz/internal/pipeline"
	"github.com/askviz/askviz/internal/session"
	"github.com/askviz/askviz/internal/store"
	"github.com/askviz/askviz/internal/wren"
)

// Execute is the main entry point for the askviz CLI application.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level})
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		return runTUI(logger)
	}

	switch os.Args[1] {
	case "tui":
		return runTUI(logger)
	case "ask":
		return runAsk(logger, os.Args[2:])
	case "threads":
		return runThreads(logger, os.Args[2:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runtime bundles the wired application stack shared by all commands.
type runtime struct {
	cfg        *config.Config
	logger     log.Logger
	threads    *store.ThreadStore
	pinned     *store.PinnedStore
	controller *session.Controller
	runner     *pipeline.Runner
}

// newRuntime loads configuration and wires stores, client, pipeline, and
// controller.
func newRuntime(logger log.Logger) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	storage, err := store.NewFileStorage(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening state storage: %w", err)
	}

	threads, err := store.NewThreadStore(storage, logger)
	if err != nil {
		return nil, fmt.Errorf("loading threads: %w", err)
	}
	pinned, err := store.NewPinnedStore(storage, logger)
	if err != nil {
		return nil, fmt.Errorf("loading pinned charts: %w", err)
	}

	client := wren.New(cfg.BaseURL, logger)
	runner := pipeline.New(client, cfg.MdlHash, cfg.Language, logger)
	controller := session.NewController(threads, pinned, logger)

	return &runtime{
		cfg:        cfg,
		logger:     logger,
		threads:    threads,
		pinned:     pinned,
		controller: controller,
		runner:     runner,
	}, nil
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("askviz - Ask your data, get charts")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  askviz                      Start the interactive interface")
	fmt.Println("  askviz ask <question>       Ask once and print SQL + chart title")
	fmt.Println("  askviz threads list         List conversation threads")
	fmt.Println("  askviz threads rename <id> <title>")
	fmt.Println("  askviz threads delete <id>")
	fmt.Println("  askviz threads pin <id> | unpin <id>")
	fmt.Println("  askviz --version            Show version information")
	fmt.Println("  askviz --help               Show this help")
	fmt.Println()
	fmt.Println("Interactive shortcuts:")
	fmt.Println("  Enter               Ask the typed question")
	fmt.Println("  Tab                 Switch between thread charts and pinned charts")
	fmt.Println("  Ctrl+P              Pin/unpin the selected chart")
	fmt.Println("  Ctrl+N              New thread; Ctrl+J/Ctrl+K switch threads")
	fmt.Println("  Ctrl+R / Ctrl+X     Rename / delete the active thread")
	fmt.Println("  Esc                 Cancel the in-flight question")
	fmt.Println("  Ctrl+D              Exit")
	fmt.Println()
	fmt.Println("Configuration (~/.askviz/config.yaml or ASKVIZ_* env):")
	fmt.Println("  base_url            Remote ask/chart service (default http://localhost:5555)")
	fmt.Println("  mdl_hash            Required: deployed semantic model identifier")
	fmt.Println("  language            Chart label language (default English)")
}

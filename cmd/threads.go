package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/askviz/askviz/internal/log"
	"github.com/askviz/askviz/internal/store"
)

// runThreads dispatches the thread management subcommands.
func runThreads(logger log.Logger, args []string) error {
	rt, err := newRuntime(logger)
	if err != nil {
		return err
	}

	sub := "list"
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		return threadsList(os.Stdout, rt.threads)
	case "rename":
		if len(args) < 3 {
			return errors.New("usage: askviz threads rename <id> <title>")
		}
		return rt.threads.Rename(args[1], args[2])
	case "delete":
		if len(args) < 2 {
			return errors.New("usage: askviz threads delete <id>")
		}
		return rt.threads.Delete(args[1])
	case "pin":
		if len(args) < 2 {
			return errors.New("usage: askviz threads pin <id>")
		}
		return rt.threads.SetPinned(args[1], true)
	case "unpin":
		if len(args) < 2 {
			return errors.New("usage: askviz threads unpin <id>")
		}
		return rt.threads.SetPinned(args[1], false)
	default:
		return fmt.Errorf("unknown threads subcommand: %s", sub)
	}
}

// threadsList prints the thread collection in display order.
func threadsList(w io.Writer, threads *store.ThreadStore) error {
	all := threads.Threads()
	if len(all) == 0 {
		fmt.Fprintln(w, "No threads yet. Run `askviz` and ask a question.")
		return nil
	}

	active := threads.ActiveID()
	for _, t := range all {
		marker := " "
		if t.ID == active {
			marker = "*"
		}
		pin := " "
		if t.Pinned {
			pin = "★"
		}
		fmt.Fprintf(w, "%s %s %-36s  %-30s  %2d charts  %s\n",
			marker, pin, t.ID, truncate(t.Title, 30), len(t.Charts), formatTime(t.CreatedAt))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format("2006-01-02 15:04")
}

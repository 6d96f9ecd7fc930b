package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/NoteNest/internal/goals"
)

const helpText = "Available commands: help, list, search [query], get <id>, add, edit <id>, delete <id>, goals, goal <steps|workout> <value>, exit"

// Shell is the interactive command loop of the client.
type Shell struct {
	api    *API
	prompt *Prompter
	out    io.Writer
}

// NewShell creates a Shell reading commands from in.
func NewShell(api *API, in io.Reader, out io.Writer) *Shell {
	return &Shell{api: api, prompt: NewPrompter(in, out), out: out}
}

// Run reads and executes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) {
	for ctx.Err() == nil {
		line, ok := s.prompt.Line("notenest> ")
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.out, "Bye")
			return
		}
		if err := s.exec(ctx, args[0], args[1:], line); err != nil {
			fmt.Fprintln(s.out, "Error:", err)
		}
	}
}

func (s *Shell) exec(ctx context.Context, cmd string, args []string, line string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "list":
		return s.list(ctx)
	case "search":
		q := strings.TrimSpace(strings.TrimPrefix(line, "search"))
		if err := s.api.Search(ctx, q); err != nil {
			return err
		}
		if q == "" {
			fmt.Fprintln(s.out, "Search cleared")
		} else {
			fmt.Fprintf(s.out, "Searching for %q\n", q)
		}
	case "get":
		id, err := parseID(args, "get")
		if err != nil {
			return err
		}
		n, err := s.api.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			fmt.Fprintln(s.out, "Note not found")
			return nil
		}
		if err != nil {
			return err
		}
		b, _ := json.MarshalIndent(n, "", "  ")
		fmt.Fprintln(s.out, string(b))
	case "add":
		if err := s.api.Add(ctx, s.prompt.PromptForNote()); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Note saved")
	case "edit":
		id, err := parseID(args, "edit")
		if err != nil {
			return err
		}
		cur, err := s.api.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			fmt.Fprintln(s.out, "Note not found")
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.api.Edit(ctx, id, s.prompt.PromptEditNote(cur)); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Note updated")
	case "delete":
		id, err := parseID(args, "delete")
		if err != nil {
			return err
		}
		if err := s.api.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Note deleted")
	case "goals":
		d, err := s.api.Goals(ctx)
		if err != nil {
			return err
		}
		printProgress(s.out, "Steps", d.Steps, "")
		printProgress(s.out, "Workout", d.Workout, " min")
	case "goal":
		if len(args) < 2 {
			return errors.New("usage: goal <steps|workout> <value>")
		}
		v, err := s.api.SetGoal(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s goal set to %d\n", args[0], v)
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func (s *Shell) list(ctx context.Context) error {
	notes, err := s.api.List(ctx)
	if err != nil {
		return err
	}
	if notes.Query != "" {
		fmt.Fprintf(s.out, "Filter: %q\n", notes.Query)
	}
	if len(notes.Notes) == 0 {
		fmt.Fprintln(s.out, "No notes")
		return nil
	}
	for _, n := range notes.Notes {
		ts := time.UnixMilli(n.Timestamp).Format("2006-01-02 15:04")
		fmt.Fprintf(s.out, "%d\t[%s]\t%s\t%s\n", n.ID, n.Category, ts, n.Title)
	}
	return nil
}

func printProgress(out io.Writer, name string, p goals.Progress, unit string) {
	fmt.Fprintf(out, "%s: %d/%d%s (%d%%)\n", name, p.Current, p.Goal, unit, p.Percent)
}

func parseID(args []string, cmd string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("usage: %s <id>", cmd)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

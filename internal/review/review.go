// Package review walks the catalog's probable duplicates interactively.
package review

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/steveyegge/partsbin/internal/deduplication"
	"github.com/steveyegge/partsbin/internal/storage"
	"github.com/steveyegge/partsbin/internal/types"
)

// ErrFinished is returned for review commands sent after the last flagged
// component has been visited
var ErrFinished = errors.New("review is finished")

// Session is one pass over the flagged components
type Session struct {
	store    storage.Storage
	engine   *deduplication.Engine
	out      io.Writer
	commands map[string]CommandHandler

	queue      []int64
	pos        int
	current    *types.Component
	candidates []*types.Component
	done       bool

	merged     int
	suppressed int
}

// CommandHandler handles a specific command
type CommandHandler func(ctx context.Context, args []string) error

// Config holds session configuration
type Config struct {
	Store  storage.Storage
	Engine *deduplication.Engine
	Out    io.Writer // defaults to os.Stdout
}

// New creates a new review session
func New(cfg *Config) (*Session, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	s := &Session{
		store:    cfg.Store,
		engine:   cfg.Engine,
		out:      out,
		commands: make(map[string]CommandHandler),
	}
	s.registerCommands()

	return s, nil
}

// Run starts the review loop on the terminal
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	if s.done {
		return nil
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("review> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("merge"),
			readline.PcItem("into"),
			readline.PcItem("not"),
			readline.PcItem("skip"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				s.printSummary()
				return nil
			}
			return err
		}

		if err := s.HandleLine(ctx, line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(s.out, "%s %v\n", red("Error:"), err)
		}
	}
}

// Start loads the flagged components and shows the first one
func (s *Session) Start(ctx context.Context) error {
	rows, err := s.engine.ListAnnotated(ctx, types.ComponentFilter{})
	if err != nil {
		return fmt.Errorf("failed to list components: %w", err)
	}

	s.queue = s.queue[:0]
	for _, row := range rows {
		if row.HasSimilar {
			s.queue = append(s.queue, row.ID)
		}
	}
	s.pos = -1

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(s.out, "\n%s %d component(s) flagged\n", cyan("Duplicate review:"), len(s.queue))
	fmt.Fprintln(s.out, "Type 'help' for available commands, 'quit' to stop")

	return s.advance(ctx)
}

// HandleLine processes one command. It returns io.EOF once the session is over.
func (s *Session) HandleLine(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	name := strings.ToLower(parts[0])
	handler, ok := s.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try 'help')", parts[0])
	}
	if s.needsCurrent(name) && (s.done || s.current == nil) {
		return ErrFinished
	}
	if err := handler(ctx, parts[1:]); err != nil {
		return err
	}
	if s.done {
		return io.EOF
	}
	return nil
}

// Done reports whether every flagged component has been visited
func (s *Session) Done() bool {
	return s.done
}

// Current returns the component under review, or nil when done
func (s *Session) Current() *types.Component {
	return s.current
}

// Candidates returns the current component's candidates
func (s *Session) Candidates() []*types.Component {
	return s.candidates
}

// needsCurrent reports whether command name acts on the component under review
func (s *Session) needsCurrent(name string) bool {
	switch name {
	case "merge", "into", "not", "skip":
		return true
	}
	return false
}

func (s *Session) registerCommands() {
	s.commands["merge"] = s.cmdMerge
	s.commands["into"] = s.cmdInto
	s.commands["not"] = s.cmdNot
	s.commands["skip"] = s.cmdSkip
	s.commands["help"] = s.cmdHelp
	s.commands["?"] = s.cmdHelp
	s.commands["quit"] = s.cmdQuit
	s.commands["exit"] = s.cmdQuit
}

// advance moves to the next flagged component that still has candidates
func (s *Session) advance(ctx context.Context) error {
	for s.pos++; s.pos < len(s.queue); s.pos++ {
		id := s.queue[s.pos]
		if err := s.load(ctx, id); err != nil {
			if errors.Is(err, deduplication.ErrNotFound) {
				continue // merged away earlier in this session
			}
			return err
		}
		if len(s.candidates) > 0 {
			s.show()
			return nil
		}
	}

	s.current = nil
	s.candidates = nil
	s.done = true
	s.printSummary()
	return nil
}

// load fetches id and its candidates into the session
func (s *Session) load(ctx context.Context, id int64) error {
	component, err := s.store.GetComponent(ctx, id)
	if err != nil {
		return err
	}
	candidates, err := s.engine.FindCandidates(ctx, id)
	if err != nil {
		return err
	}
	s.current = component
	s.candidates = candidates
	return nil
}

// refresh reloads the current component; moves on when nothing is left to decide
func (s *Session) refresh(ctx context.Context) error {
	if err := s.load(ctx, s.current.ID); err != nil {
		return err
	}
	if len(s.candidates) == 0 {
		return s.advance(ctx)
	}
	s.show()
	return nil
}

func (s *Session) candidateArg(args []string) (*types.Component, error) {
	if s.current == nil {
		return nil, ErrFinished
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("expected one candidate id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", args[0])
	}
	for _, c := range s.candidates {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("component %d is not a candidate for %d", id, s.current.ID)
}

// cmdMerge folds a candidate into the current component
func (s *Session) cmdMerge(ctx context.Context, args []string) error {
	candidate, err := s.candidateArg(args)
	if err != nil {
		return err
	}
	merged, err := s.engine.Merge(ctx, candidate.ID, s.current.ID)
	if err != nil {
		return err
	}
	s.merged++

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(s.out, "%s Merged %d into %d (quantity %d)\n", green("✓"), candidate.ID, merged.ID, merged.Quantity)
	return s.refresh(ctx)
}

// cmdInto folds the current component into a candidate
func (s *Session) cmdInto(ctx context.Context, args []string) error {
	candidate, err := s.candidateArg(args)
	if err != nil {
		return err
	}
	merged, err := s.engine.Merge(ctx, s.current.ID, candidate.ID)
	if err != nil {
		return err
	}
	s.merged++

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(s.out, "%s Merged %d into %d (quantity %d)\n", green("✓"), s.current.ID, merged.ID, merged.Quantity)
	return s.advance(ctx)
}

// cmdNot marks a candidate as not a duplicate of the current component
func (s *Session) cmdNot(ctx context.Context, args []string) error {
	candidate, err := s.candidateArg(args)
	if err != nil {
		return err
	}
	if err := s.engine.Suppress(ctx, s.current.ID, candidate.ID); err != nil {
		return err
	}
	s.suppressed++

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(s.out, "%s %d and %d will no longer be flagged\n", green("✓"), s.current.ID, candidate.ID)
	return s.refresh(ctx)
}

func (s *Session) cmdSkip(ctx context.Context, args []string) error {
	return s.advance(ctx)
}

func (s *Session) cmdQuit(ctx context.Context, args []string) error {
	s.printSummary()
	return io.EOF
}

func (s *Session) cmdHelp(ctx context.Context, args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintf(s.out, "\n%s\n", cyan("Available Commands:"))
	commands := []struct {
		name string
		desc string
	}{
		{"merge <id>", "Merge candidate <id> into the current component"},
		{"into <id>", "Merge the current component into candidate <id>"},
		{"not <id>", "Mark candidate <id> as not a duplicate"},
		{"skip", "Leave the current component and move on"},
		{"help, ?", "Show this help message"},
		{"quit, exit", "Stop reviewing"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(s.out, "  %-12s  %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Fprintln(s.out)
	return nil
}

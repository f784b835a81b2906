package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/facilitydir/internal/browse"
	"github.com/leapstack-labs/facilitydir/internal/cli/output"
	"github.com/leapstack-labs/facilitydir/internal/store"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/spf13/cobra"
)

const browsePrompt = "facilities> "

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse facilities interactively",
		Long: `Start an interactive session over the facility list.

Type to search by facility or amenity name. The search runs once typing
has paused for the debounce delay. Results arrive one page at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd)
		},
	}
}

func runBrowse(cmd *cobra.Command) error {
	c, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          browsePrompt,
		HistoryFile:     historyFile(c.Cfg.Database),
		AutoComplete:    browseCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := c.Renderer
	r.Printf("facilitydir browser (%s)\n", c.Cfg.Database)
	r.Println("Type to search, .help for commands, .quit to exit")
	r.Println("")

	b := newBrowser(c.Store, c.Renderer, c.Format,
		browse.WithPageSize(c.Cfg.PageSize),
		browse.WithDebounce(c.Cfg.Debounce),
		browse.WithLogger(c.Logger),
	)
	defer b.Close()

	return b.Run(cmd.Context(), rl)
}

// historyFile keeps REPL history next to the database.
func historyFile(database string) string {
	if database == store.MemoryPath {
		return ""
	}
	return filepath.Join(filepath.Dir(database), ".facilitydir_history")
}

// lineReader is the part of readline the browser needs.
type lineReader interface {
	Readline() (string, error)
}

// browser drives a list and a detail controller from typed commands.
type browser struct {
	list   *browse.ListController
	detail *browse.DetailController
	r      *output.Renderer
	format output.Format
}

func newBrowser(reader core.Reader, r *output.Renderer, format output.Format, opts ...browse.Option) *browser {
	return &browser{
		list:   browse.NewListController(reader, opts...),
		detail: browse.NewDetailController(reader, opts...),
		r:      r,
		format: format,
	}
}

// Close stops any pending search.
func (b *browser) Close() {
	b.list.Close()
}

// Run loads the first page and then executes lines until .quit or EOF.
func (b *browser) Run(ctx context.Context, in lineReader) error {
	b.list.Start(ctx)
	b.printResults(0)

	for {
		line, err := in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := b.handle(ctx, line); quit {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (b *browser) handle(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, ".") {
		b.search(ctx, line)
		return false
	}

	command, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true

	case ".help":
		printBrowseHelp(b.r.Out())

	case ".search":
		b.search(ctx, arg)

	case ".clear":
		b.search(ctx, "")

	case ".more":
		b.more(ctx)

	case ".refresh":
		b.list.Refresh(ctx)
		b.printResults(0)

	case ".show":
		if arg == "" {
			b.r.Error("usage: .show <row number|id>")
			break
		}
		b.show(ctx, arg)

	default:
		b.r.Error(fmt.Sprintf("unknown command: %s (type .help for commands)", command))
	}
	return false
}

// search sets the search text and waits for the debounced reload.
func (b *browser) search(ctx context.Context, text string) {
	b.list.SetSearchText(ctx, text)
	b.list.Wait()
	b.printResults(0)
}

func (b *browser) more(ctx context.Context) {
	if !b.list.HasMore() {
		b.r.Muted("end of results")
		return
	}
	before := len(b.list.State().Results)
	b.list.LoadMore(ctx)
	b.printResults(before)
}

func (b *browser) show(ctx context.Context, arg string) {
	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		results := b.list.State().Results
		if n < 1 || n > len(results) {
			b.r.Error(fmt.Sprintf("no row %d in the current results", n))
			return
		}
		id = results[n-1].ID
	}

	if b.detail.State().ID == id {
		b.detail.Refetch(ctx)
	} else {
		b.detail.SetID(ctx, id)
	}

	state := b.detail.State()
	switch {
	case state.Status == browse.DetailErrored:
		b.r.Error(state.Err.Error())
	case state.NotFound():
		b.r.Warning("facility not found: " + id)
	default:
		if err := b.r.Facility(state.Facility, b.format); err != nil {
			b.r.Error(err.Error())
		}
	}
}

// printResults writes the rows from index from onwards and a footer.
func (b *browser) printResults(from int) {
	state := b.list.State()
	if state.Errored {
		b.r.Error(state.Err.Error())
		return
	}
	if len(state.Results) == 0 {
		b.r.Muted("no facilities match")
		return
	}

	output.Page(b.r.Out(), state.Results[from:], from)
	if b.list.HasMore() {
		b.r.Muted(fmt.Sprintf("%d shown, .more for the next page", len(state.Results)))
	} else {
		b.r.Muted(fmt.Sprintf("%d shown, end of results", len(state.Results)))
	}
}

func printBrowseHelp(w io.Writer) {
	help := `
Commands:
  <text>            Search facility and amenity names
  .search <text>    Search for text that starts with a dot
  .clear            Clear the search
  .more             Load the next page
  .refresh          Reload from the first page
  .show <n|id>      Show row n of the results, or a facility id
  .help             Show this help message
  .quit / .exit     Exit the browser
`
	_, _ = fmt.Fprintln(w, help)
}

func browseCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".search"),
		readline.PcItem(".clear"),
		readline.PcItem(".more"),
		readline.PcItem(".refresh"),
		readline.PcItem(".show"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

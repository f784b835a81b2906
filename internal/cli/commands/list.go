package commands

import (
	"errors"

	"github.com/leapstack-labs/facilitydir/internal/browse"
	"github.com/leapstack-labs/facilitydir/internal/cli/output"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/spf13/cobra"
)

// ListOptions holds options for the list command.
type ListOptions struct {
	Search string
	Limit  int
	Offset int
	All    bool
	Format string
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	opts := &ListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List facilities",
		Long: `List facilities ordered by name.

--search matches facility names and amenity names, case-insensitively,
anywhere in the text. Addresses are not searched.`,
		Example: `  # First page
  facilitydir list

  # Everything with a pool, as JSON
  facilitydir list --search pool --all --format json

  # Second page of 10
  facilitydir list --limit 10 --offset 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "Filter by facility or amenity name")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Rows per page (default: page_size)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Rows to skip")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Fetch every page")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format (table|json|csv|md)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runList(cmd *cobra.Command, opts *ListOptions) error {
	if opts.All && opts.Offset != 0 {
		return errors.New("--all cannot be combined with --offset")
	}

	c, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := formatFlag(cmd, c.Format)
	if err != nil {
		return err
	}

	limit := opts.Limit
	if limit == 0 {
		limit = c.Cfg.PageSize
	}

	var facilities []core.Facility
	if opts.All {
		facilities, err = listAll(cmd, c, limit, opts.Search)
	} else {
		facilities, err = c.Store.ListFacilities(cmd.Context(), limit, opts.Offset, opts.Search)
	}
	if err != nil {
		return err
	}

	return output.Facilities(c.Renderer.Out(), facilities, format)
}

// listAll pages through the results with a list controller.
func listAll(cmd *cobra.Command, c *CommandContext, pageSize int, search string) ([]core.Facility, error) {
	ctx := cmd.Context()
	ctrl := browse.NewListController(c.Store,
		browse.WithPageSize(pageSize),
		browse.WithDebounce(0),
		browse.WithLogger(c.Logger),
	)
	defer ctrl.Close()

	if search == "" {
		ctrl.Start(ctx)
	} else {
		ctrl.SetSearchText(ctx, search)
		ctrl.Wait()
	}

	for {
		state := ctrl.State()
		if state.Errored {
			return nil, state.Err
		}
		if !ctrl.HasMore() {
			return state.Results, nil
		}
		ctrl.LoadMore(ctx)
	}
}

package commands

import (
	"fmt"

	"github.com/leapstack-labs/facilitydir/internal/browse"
	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one facility",
		Example: `  facilitydir show 8c0f5a1e-0b7a-4d35-9d0c-3f1a2b6c7d01
  facilitydir show 8c0f5a1e-0b7a-4d35-9d0c-3f1a2b6c7d01 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (table|json|csv|md)")

	return cmd
}

func runShow(cmd *cobra.Command, id string) error {
	c, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := formatFlag(cmd, c.Format)
	if err != nil {
		return err
	}

	ctrl := browse.NewDetailController(c.Store, browse.WithLogger(c.Logger))
	ctrl.SetID(cmd.Context(), id)

	state := ctrl.State()
	switch {
	case state.Status == browse.DetailErrored:
		return state.Err
	case state.NotFound():
		return fmt.Errorf("facility not found: %s", id)
	}
	return c.Renderer.Facility(state.Facility, format)
}

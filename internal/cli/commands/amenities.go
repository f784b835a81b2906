package commands

import (
	"github.com/leapstack-labs/facilitydir/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewAmenitiesCommand creates the amenities command.
func NewAmenitiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "amenities",
		Short: "List every amenity name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			amenities, err := c.Store.ListAmenities(cmd.Context())
			if err != nil {
				return err
			}
			return output.Amenities(c.Renderer.Out(), amenities, c.Format)
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts per table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			stats, err := c.Store.Counts(cmd.Context())
			if err != nil {
				return err
			}
			return output.Stats(c.Renderer.Out(), stats, c.Format)
		},
	}
}

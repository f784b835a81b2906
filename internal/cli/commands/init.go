package commands

import (
	"fmt"
	"path/filepath"

	"github.com/leapstack-labs/facilitydir/internal/config"
	"github.com/leapstack-labs/facilitydir/internal/store"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var writeConfig bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create the facility database",
		Long: `Create the facility database, apply the schema and seed it from the
dataset when any table is empty. Running init again is safe.

Use --write-config to also write a facilitydir.yaml with the default settings.`,
		Example: `  # Create facilitydir.db from the bundled dataset
  facilitydir init

  # Also write a config file into ./data
  facilitydir init data --write-config

  # Overwrite an existing config file
  facilitydir init --write-config --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, writeConfig, force)
		},
	}

	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "Write "+config.ConfigFileName+" with default settings")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, writeConfig, force bool) error {
	c, err := NewCommandContextWithoutStore(cmd)
	if err != nil {
		return err
	}
	r := c.Renderer
	ctx := cmd.Context()

	if writeConfig {
		target := filepath.Join(dir, config.ConfigFileName)
		written, err := writeTemplate(config.ConfigFileName, target, force)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		if !written {
			return fmt.Errorf("%s already exists. Use --force to overwrite", target)
		}
		r.Success("wrote " + target)
	}

	cfg := *c.Cfg
	if dir != "." && !filepath.IsAbs(cfg.Database) && cfg.Database != store.MemoryPath {
		cfg.Database = filepath.Join(dir, cfg.Database)
	}

	st, err := openStore(ctx, &cfg, c.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	version, err := st.MigrationVersion(ctx)
	if err != nil {
		return err
	}

	seeded, err := ensureSeeded(ctx, st, &cfg)
	if err != nil {
		return err
	}

	stats, err := st.Counts(ctx)
	if err != nil {
		return err
	}

	r.Header(1, "Facility directory")
	r.KeyValue("Database", cfg.Database)
	r.KeyValue("Schema", fmt.Sprintf("version %d", version))
	r.KeyValue("Rows", fmt.Sprintf("%d facilities, %d amenities, %d links", stats.Facilities, stats.Amenities, stats.Associations))
	r.Println("")
	if seeded {
		r.Success("database seeded")
	} else {
		r.Muted("database already seeded")
	}
	return nil
}

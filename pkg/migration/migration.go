package migration

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
)

// DefaultSourceURL is relative to the repository root
const DefaultSourceURL = "file://migrations"

func newMigrate(sourceURL string, dsn string) (*migrate.Migrate, error) {
	m, err := migrate.New(sourceURL, "mysql://"+dsn)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return m, nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// MigrateCommand returns the up / down / force / version commands,
// database drivers must be imported by the caller
func MigrateCommand(dsn string) *cobra.Command {
	var sourceURL string

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the marketing database",
	}
	root.PersistentFlags().StringVar(&sourceURL, "source", DefaultSourceURL, "migrations source url")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all up migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newMigrate(sourceURL, dsn)
				if err != nil {
					return err
				}
				return ignoreNoChange(m.Up())
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Apply N down migrations, all when N is omitted",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newMigrate(sourceURL, dsn)
				if err != nil {
					return err
				}
				if len(args) == 0 {
					return ignoreNoChange(m.Down())
				}
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid step count %q: %w", args[0], err)
				}
				return ignoreNoChange(m.Steps(-n))
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				m, err := newMigrate(sourceURL, dsn)
				if err != nil {
					return err
				}
				return m.Force(version)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current version",
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := newMigrate(sourceURL, dsn)
				if err != nil {
					return err
				}
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					cmd.Println("no migration applied")
					return nil
				}
				if err != nil {
					return err
				}
				cmd.Printf("version: %d, dirty: %v\n", version, dirty)
				return nil
			},
		},
	)
	return root
}

// MigrateUpForTesting drops everything and applies all migrations, panics on error
func MigrateUpForTesting(rootDir string, dsn string) {
	sourceURL := "file://" + filepath.Join(rootDir, "migrations")
	m, err := newMigrate(sourceURL, dsn)
	if err != nil {
		panic(err)
	}
	if err := m.Drop(); err != nil {
		panic(err)
	}

	// Drop also removes the version table
	m, err = newMigrate(sourceURL, dsn)
	if err != nil {
		panic(err)
	}
	if err := ignoreNoChange(m.Up()); err != nil {
		panic(err)
	}
}

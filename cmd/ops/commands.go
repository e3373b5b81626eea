package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"safetasks/internal/achievement"
	"safetasks/internal/config"
	"safetasks/internal/ops"
	"safetasks/internal/state"
	"safetasks/internal/stats"
	"safetasks/internal/storage"
	"safetasks/internal/xp"
)

type rootFlags struct {
	configPath string
	dataDir    string
	driver     string
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:   "safetasks-ops",
		Short: "Operator tools for a SafeTasks data directory",
		Long: `safetasks-ops reads and writes a SafeTasks data directory directly.
Stop the server first when using the badger driver; it holds an exclusive lock.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "safetasks_config.yml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&f.dataDir, "data-dir", "", "data directory (overrides config)")
	root.PersistentFlags().StringVar(&f.driver, "storage", "", "storage driver: file, badger or sqlite (overrides config)")

	root.AddCommand(
		newExportCmd(&f),
		newImportCmd(&f),
		newStatsCmd(&f),
		newBackupCmd(&f),
		newRestoreCmd(),
		newDrillCmd(&f),
	)
	return root
}

func (f *rootFlags) load() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f.dataDir != "" {
		cfg.Storage.DataDir = f.dataDir
	}
	if f.driver != "" {
		cfg.Storage.Driver = f.driver
	}
	return cfg, cfg.Validate()
}

// openStore opens the configured backend; the returned close func releases it.
func (f *rootFlags) openStore(ctx context.Context) (*config.Config, *state.Store, func(), error) {
	cfg, err := f.load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := cfg.Log.NewLogger(os.Stderr)
	backend, err := storage.Open(storage.Options{
		Driver:  cfg.Storage.Driver,
		DataDir: cfg.Storage.DataDir,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			logger.Warn("close storage", "err", err)
		}
	}
	store, err := state.Open(ctx, state.Options{Backend: backend, Logger: logger})
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return cfg, store, closeFn, nil
}

func newExportCmd(f *rootFlags) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the state as a dated backup document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, closeFn, err := f.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			path, err := ops.ExportFile(store, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "exports", "directory for the backup document")
	return cmd
}

func newImportCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the state with a backup document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, closeFn, err := f.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := ops.ImportFile(cmd.Context(), store, args[0]); err != nil {
				return err
			}
			snap := store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tasks, %d schedule entries, %d XP\n",
				len(snap.Tasks), len(snap.Schedule), snap.XP.Total)
			return nil
		},
	}
}

func newStatsCmd(f *rootFlags) *cobra.Command {
	var period, days, weeks int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print completion statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, store, closeFn, err := f.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			win := cfg.Stats.Window()
			if period > 0 {
				win.PeriodDays = period
			}
			if days > 0 {
				win.DailyDays = days
			}
			if weeks > 0 {
				win.WeeklyWeeks = weeks
			}
			snap := store.Snapshot()
			report := stats.Build(snap.Tasks, snap.XP.Total, win, store.Now())
			return ops.RenderReport(cmd.OutOrStdout(), report, xp.StandingOf(snap.XP.Total), achievement.Board(snap.Achievements.Unlocked))
		},
	}
	cmd.Flags().IntVar(&period, "period", 0, "completion-rate window in days")
	cmd.Flags().IntVar(&days, "days", 0, "days in the daily chart")
	cmd.Flags().IntVar(&weeks, "weeks", 0, "weeks in the weekly chart")
	return cmd
}

func newBackupCmd(f *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory as tar.gz",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join("backups", ops.BackupName(time.Now()))
			}
			if err := ops.BackupDataDir(cfg.Storage.DataDir, out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output archive path (.tar.gz)")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var archive, target string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Unpack a backup archive into a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ops.RestoreDataDir(archive, target)
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "input backup archive (.tar.gz)")
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "restore target directory")
	_ = cmd.MarkFlagRequired("archive")
	return cmd
}

func newDrillCmd(f *rootFlags) *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Back up, restore and verify the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			res, err := ops.Drill(cfg.Storage.DataDir, workDir, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "backup:", res.Archive)
			fmt.Fprintln(out, "restored:", res.RestoreDir)
			fmt.Fprintln(out, "digest:", res.Digest)
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	return cmd
}

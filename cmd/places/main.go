package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/places/internal/bookmarks"
	"github.com/nikbrunner/places/internal/metadata"
	"github.com/nikbrunner/places/internal/storage"
)

var (
	cfgFile       string
	bookmarksFile string
	noWatch       bool
)

var rootCmd = &cobra.Command{
	Use:   "places",
	Short: "Edit the file manager's bookmark list",
	Long: `places manages the bookmark list shared by GTK file managers
(the "Places" sidebar), stored one location per line in
$XDG_CONFIG_HOME/gtk-3.0/bookmarks.

Without a subcommand the interactive editor is opened.

Examples:
  places                          # Open the editor
  places list                     # Print all bookmarks with their index
  places add ~/Projects Work      # Append a bookmark with a custom name
  places mv 3 0                   # Move the fourth bookmark to the top
  places rm-uri file:///mnt/old   # Remove every bookmark of a location
  places check --prune            # Drop bookmarks whose targets are gone
  places open docs                # Fuzzy find a bookmark and open it`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runEdit,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/places/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&bookmarksFile, "bookmarks", "", "bookmarks file (overrides bookmarks_file)")
	rootCmd.PersistentFlags().BoolVar(&noWatch, "no-watch", false, "do not watch the bookmarks file for external changes")

	rootCmd.AddCommand(
		listCmd,
		addCmd,
		insertCmd,
		rmCmd,
		rmURICmd,
		mvCmd,
		renameCmd,
		searchCmd,
		openCmd,
		checkCmd,
		importCmd,
		exportCmd,
		watchCmd,
		editCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// app bundles everything a command needs to work on the bookmark list.
type app struct {
	cfg      *storage.Config
	logger   *slog.Logger
	settings *storage.SettingsStore
	provider *metadata.Local
	list     *bookmarks.List
}

// openApp loads the configuration, opens the backing store and waits for
// the initial load. watch enables the backing-file watcher unless
// --no-watch is given.
func openApp(cmd *cobra.Command, watch bool) (*app, error) {
	path := cfgFile
	if path == "" {
		path = storage.DefaultConfigFilePath()
	}
	cfg, err := storage.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if bookmarksFile != "" {
		cfg.BookmarksFile = bookmarksFile
		cfg.LegacyBookmarksFile = ""
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	store, err := storage.Open(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	params := bookmarks.Params{
		Storage:   store,
		Logger:    logger,
		RateLimit: cfg.WatchRateLimit,
		NoWatch:   !watch || noWatch,
	}

	// the list works without settings, it only loses the window geometry
	settings, err := storage.NewSettingsStore(cfg.SettingsDB)
	if err != nil {
		logger.Warn("settings unavailable", "path", cfg.SettingsDB, "error", err)
	} else {
		a.settings = settings
		params.Settings = settings
	}

	a.provider = metadata.NewLocal(logger)
	params.Provider = a.provider

	list, err := bookmarks.New(params)
	if err != nil {
		a.closeSupport()
		return nil, err
	}
	a.list = list

	if err := list.Flush(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close waits for pending saves and releases everything openApp opened.
func (a *app) Close() error {
	var err error
	if a.list != nil {
		err = a.list.Close()
	}
	return errors.Join(err, a.closeSupport())
}

func (a *app) closeSupport() error {
	var errs []error
	if a.provider != nil {
		errs = append(errs, a.provider.Close())
	}
	if a.settings != nil {
		errs = append(errs, a.settings.Close())
	}
	return errors.Join(errs...)
}

// withApp opens the app around fn and reports a failing Close.
func withApp(cmd *cobra.Command, watch bool, fn func(a *app) error) (err error) {
	a, err := openApp(cmd, watch)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nikbrunner/places/internal/culler"
	"github.com/nikbrunner/places/internal/editor"
	"github.com/nikbrunner/places/internal/exporter"
	"github.com/nikbrunner/places/internal/importer"
	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/model"
	"github.com/nikbrunner/places/internal/picker"
	"github.com/nikbrunner/places/internal/search"
)

var (
	searchGlob bool
	checkPrune bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print all bookmarks with their index",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(a *app) error {
			printEntries(cmd.OutOrStdout(), a.list.Snapshot())
			return nil
		})
	},
}

var addCmd = &cobra.Command{
	Use:   "add <location> [name...]",
	Short: "Append a bookmark",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(a *app) error {
			b, err := newBookmark(args[0], args[1:])
			if err != nil {
				return err
			}
			defer b.Close()

			if a.list.Contains(b) {
				return fmt.Errorf("%s is already bookmarked", b.URI())
			}
			if err := a.list.Append(b); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", b.URI())
			return nil
		})
	},
}

var insertCmd = &cobra.Command{
	Use:   "insert <index> <location> [name...]",
	Short: "Insert a bookmark before index",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, false, func(a *app) error {
			b, err := newBookmark(args[1], args[2:])
			if err != nil {
				return err
			}
			defer b.Close()

			if err := a.list.InsertItem(b, index); err != nil {
				return fmt.Errorf("insert at %d: %w", index, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %s at %d\n", b.URI(), index)
			return nil
		})
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <index>",
	Short: "Remove the bookmark at index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, false, func(a *app) error {
			b, err := a.list.ItemAt(index)
			if err != nil {
				return fmt.Errorf("remove %d: %w", index, err)
			}
			uri := b.URI()
			if err := a.list.DeleteItemAt(index); err != nil {
				return fmt.Errorf("remove %d: %w", index, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", uri)
			return nil
		})
	},
}

var rmURICmd = &cobra.Command{
	Use:   "rm-uri <location>",
	Short: "Remove every bookmark of a location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := parseTarget(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, false, func(a *app) error {
			n := a.list.DeleteItemsWithURI(loc.String())
			if n == 0 {
				return fmt.Errorf("%s is not bookmarked", loc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d bookmark(s) of %s\n", n, loc)
			return nil
		})
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <from> <to>",
	Short: "Move a bookmark so it ends up at index to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		to, err := parseIndex(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, false, func(a *app) error {
			if to >= a.list.Len() {
				return fmt.Errorf("move to %d: index out of range", to)
			}
			// MoveItem takes a drop slot counted before removal
			slot := to
			if to > from {
				slot = to + 1
			}
			if err := a.list.MoveItem(from, slot); err != nil {
				return fmt.Errorf("move %d to %d: %w", from, to, err)
			}
			return nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <index> [name...]",
	Short: "Set the name of a bookmark, or reset it when no name is given",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		name := strings.Join(args[1:], " ")
		return withApp(cmd, false, func(a *app) error {
			if err := a.list.RenameItemAt(index, &name); err != nil {
				return fmt.Errorf("rename %d: %w", index, err)
			}
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search bookmark names, or match locations with --glob",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withApp(cmd, false, func(a *app) error {
			results, err := find(a.list.Snapshot(), query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "%3d  %s  %s\n", r.Index, r.Entry.Title(), r.Entry.URI)
			}
			return nil
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open <query>",
	Short: "Find a bookmark and open it with the desktop's default handler",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withApp(cmd, false, func(a *app) error {
			results, err := find(a.list.Snapshot(), query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case len(results) == 0:
				fmt.Fprintf(out, "No bookmarks found for '%s'\n", query)
				return nil
			case len(results) == 1:
				return openTarget(out, results[0].Entry)
			case !isTerminal():
				return fmt.Errorf("%d bookmarks match '%s'", len(results), query)
			}

			final, err := tea.NewProgram(picker.New(results, query), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("run picker: %w", err)
			}
			selected, ok := final.(picker.Picker).Selected()
			if !ok {
				return nil
			}
			return openTarget(out, selected.Entry)
		})
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report bookmarks whose targets no longer resolve",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(a *app) error {
			entries := a.list.Snapshot()
			opts := culler.Options{
				Concurrency: a.cfg.CheckConcurrency,
				Timeout:     a.cfg.CheckTimeout,
			}
			if isTerminal() {
				errOut := cmd.ErrOrStderr()
				opts.OnProgress = func(completed, total int) {
					fmt.Fprintf(errOut, "\rChecking %d/%d", completed, total)
					if completed == total {
						fmt.Fprintln(errOut)
					}
				}
			}

			results, err := culler.CheckTargets(cmd.Context(), entries, a.provider, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var missing []string
			for _, r := range results {
				if r.Status == culler.Resolved || r.Status == culler.Remote {
					continue
				}
				detail := r.Status.String()
				if r.Error != "" {
					detail += ": " + r.Error
				}
				fmt.Fprintf(out, "%3d  %s  (%s)\n", r.Index, r.Entry.URI, detail)
				if r.Status == culler.Missing {
					missing = append(missing, r.Entry.URI)
				}
			}

			if !checkPrune {
				return nil
			}
			removed := 0
			for _, uri := range missing {
				removed += a.list.DeleteItemsWithURI(uri)
			}
			fmt.Fprintf(out, "Removed %d bookmark(s)\n", removed)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Append bookmarks from a Netscape bookmark HTML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := importer.ParseHTMLBookmarks(f)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		return withApp(cmd, false, func(a *app) error {
			added, duplicates := 0, 0
			for _, e := range res.Entries {
				loc, err := location.Parse(e.URI)
				if err != nil {
					continue
				}
				b := model.NewBookmarkAt(loc, e.CustomName, nil)
				if a.list.Contains(b) {
					duplicates++
				} else if err := a.list.Append(b); err != nil {
					b.Close()
					return err
				} else {
					added++
				}
				b.Close()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d bookmarks from %d folders", added, res.Folders)
			if duplicates > 0 || res.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), " (%d duplicates, %d unusable links skipped)", duplicates, res.Skipped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the bookmarks as a Netscape bookmark HTML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := exporter.DefaultExportPath()
		if len(args) == 1 {
			path = args[0]
		}
		return withApp(cmd, false, func(a *app) error {
			entries := a.list.Snapshot()
			if err := os.WriteFile(path, []byte(exporter.ExportHTML(entries)), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bookmarks to %s\n", len(entries), path)
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the list every time it changes on disk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(a *app) error {
			out := cmd.OutOrStdout()
			changed := make(chan struct{}, 1)
			sub := a.list.Subscribe(func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})
			defer a.list.Unsubscribe(sub)

			printEntries(out, a.list.Snapshot())
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case <-changed:
					fmt.Fprintln(out, "--")
					printEntries(out, a.list.Snapshot())
				}
			}
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the interactive editor",
	Args:  cobra.NoArgs,
	RunE:  runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !isTerminal() {
		return errors.New("the editor needs a terminal; see 'places --help' for commands")
	}
	return withApp(cmd, true, func(a *app) error {
		m := editor.New(editor.Params{List: a.list})
		defer m.Close()

		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run editor: %w", err)
		}
		return nil
	})
}

func init() {
	searchCmd.Flags().BoolVarP(&searchGlob, "glob", "g", false, "treat the query as a glob over locations")
	openCmd.Flags().BoolVarP(&searchGlob, "glob", "g", false, "treat the query as a glob over locations")
	checkCmd.Flags().BoolVar(&checkPrune, "prune", false, "remove bookmarks whose targets are missing")
}

func find(entries []model.Entry, query string) ([]search.SearchResult, error) {
	if searchGlob {
		return search.Glob(entries, query)
	}
	return search.Fuzzy(entries, query), nil
}

func printEntries(w io.Writer, entries []model.Entry) {
	for i, e := range entries {
		line := fmt.Sprintf("%3d  %s", i, e.URI)
		if e.CustomName != nil {
			line += "  " + *e.CustomName
		}
		if e.Missing {
			line += "  (missing)"
		}
		fmt.Fprintln(w, line)
	}
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid index %q", s)
	}
	return i, nil
}

// parseTarget accepts URIs, absolute paths and paths relative to the
// working directory.
func parseTarget(arg string) (location.Location, error) {
	if arg != "" && !strings.Contains(arg, ":") && !filepath.IsAbs(arg) {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return location.Location{}, err
		}
		arg = abs
	}
	return location.Parse(arg)
}

func newBookmark(target string, nameArgs []string) (*model.Bookmark, error) {
	loc, err := parseTarget(target)
	if err != nil {
		return nil, err
	}
	var name *string
	if len(nameArgs) > 0 {
		n := strings.Join(nameArgs, " ")
		name = &n
	}
	return model.NewBookmarkAt(loc, name, nil), nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// openTarget hands a location to the desktop's default handler.
func openTarget(out io.Writer, e model.Entry) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", e.URI)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", e.URI)
	default:
		c = exec.Command("xdg-open", e.URI)
	}
	fmt.Fprintf(out, "Opening: %s\n", e.Title())
	return c.Start()
}

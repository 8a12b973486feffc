package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"movie-catalog/internal/catalog"
	"movie-catalog/internal/database"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/startup"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newRootCmd(open opener) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Manage the movie catalog from the command line",
		Long: `catalogctl runs catalog operations against the same watched directory,
preview store and catalog file as the server, configured through the same
environment variables and CONFIG_FILE. Do not run it while the server is
modifying the catalog.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Keep command output readable; warnings and errors still show.
			if !verbose && logging.GetLevel() < logging.LevelWarn {
				logging.SetLevel(logging.LevelWarn)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "keep the configured log level")

	root.AddCommand(
		scanCommand(open),
		listCommand(open),
		searchCommand(open),
		statsCommand(open),
		ingestCommand(open),
		updateCommand(open),
		deleteCommand(open, os.Stdin, isTerminal),
		previewCommand(open),
		playbackCommand(open),
		vacuumCommand(open),
		versionCommand(),
	)
	return root
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// withSession opens the catalog, runs fn and closes it.
func withSession(ctx context.Context, open opener, fn func(s *session) error) (err error) {
	s, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func scanCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Reconcile the watched directory with the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				report, err := s.svc.Scan(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d movies, %d added, %d removed\n", report.Total, report.Added, report.Removed)
				for _, d := range report.Degraded {
					fmt.Fprintf(out, "degraded: %v\n", d)
				}
				for _, c := range report.CleanupErrors {
					fmt.Fprintf(out, "cleanup failed: %v\n", c)
				}
				return nil
			})
		},
	}
}

func listCommand(open opener) *cobra.Command {
	var asJSON, noScan bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Scan, then list every movie in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				var movies []catalog.Entry
				if noScan {
					movies = s.svc.Entries()
				} else {
					var err error
					if movies, err = s.svc.List(cmd.Context()); err != nil {
						return err
					}
				}
				return printMovies(cmd.OutOrStdout(), movies, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the entries as JSON")
	cmd.Flags().BoolVar(&noScan, "no-scan", false, "list the stored catalog without scanning")
	return cmd
}

func searchCommand(open opener) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find movies by title, genre, description or year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				movies, err := s.svc.Search(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printMovies(cmd.OutOrStdout(), movies, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the entries as JSON")
	return cmd
}

func printMovies(out io.Writer, movies []catalog.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(movies)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tGENRE\tRATING\tDURATION\tSIZE")
	for _, m := range movies {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Title, m.ReleaseYear, m.Genre, formatRating(m.Rating),
			formatDuration(m.DurationSeconds), humanize.Bytes(uint64(max(m.SizeBytes, 0))))
	}
	return tw.Flush()
}

func formatRating(r *float64) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *r)
}

func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}

func statsCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print catalog totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				st := s.svc.Stats()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Movies:         %s\n", humanize.Comma(int64(st.TotalMovies)))
				fmt.Fprintf(out, "Total size:     %s\n", humanize.Bytes(uint64(max(st.TotalSize, 0))))
				fmt.Fprintf(out, "Total duration: %s\n", formatDuration(st.TotalDuration))
				fmt.Fprintf(out, "Average rating: %.1f\n", st.AverageRating)
				return nil
			})
		},
	}
}

func ingestCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Copy a movie file into the watched directory and catalog it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				e, err := s.svc.Ingest(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) as %s\n", e.Title, e.SourcePath, e.ID)
				return nil
			})
		},
	}
}

func updateCommand(open opener) *cobra.Command {
	var title, genre, year, rating, description string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit the title, genre, year, rating or description of a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				current, err := s.svc.Get(args[0])
				if err != nil {
					return err
				}
				req := catalog.UpdateRequest{
					Title:       current.Title,
					Genre:       current.Genre,
					Year:        string(current.ReleaseYear),
					Description: current.Description,
				}
				flags := cmd.Flags()
				if flags.Changed("title") {
					req.Title = title
				}
				if flags.Changed("genre") {
					req.Genre = genre
				}
				if flags.Changed("year") {
					req.Year = year
				}
				if flags.Changed("rating") {
					req.Rating = &rating
				}
				if flags.Changed("description") {
					req.Description = description
				}

				e, err := s.svc.Update(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s (%s), %s, rating %s\n",
					e.ID, e.Title, e.ReleaseYear, e.Genre, formatRating(e.Rating))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&genre, "genre", "", "new genre")
	cmd.Flags().StringVar(&year, "year", "", "new release year")
	cmd.Flags().StringVar(&rating, "rating", "", "new rating")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	return cmd
}

func deleteCommand(open opener, in io.Reader, interactive func() bool) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a movie together with its file and preview",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				e, err := s.svc.Get(args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !yes {
					if !interactive() {
						return errors.New("refusing to delete without --yes when stdin is not a terminal")
					}
					if !confirm(in, out, fmt.Sprintf("Delete %q and its file %s?", e.Title, e.SourcePath)) {
						fmt.Fprintln(out, "Aborted.")
						return nil
					}
				}

				report, err := s.svc.Delete(cmd.Context(), e.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %s\n", e.Title)
				for _, c := range report.CleanupErrors {
					fmt.Fprintf(out, "warning: %v\n", c)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question and reads one line of input.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	var answer string
	if _, err := fmt.Fscanln(in, &answer); err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func previewCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <id> <image>",
		Short: "Replace the preview of a movie with an image file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				e, err := s.svc.ReplacePreview(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Preview of %s is now %s\n", e.Title, *e.PreviewAsset)
				return nil
			})
		},
	}
}

func playbackCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "playback <file>",
		Short: "Print the URL path a movie file is served at",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				url, err := s.svc.PlaybackURL(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}
}

func vacuumCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "vacuum",
		Short: "Compact the SQLite catalog database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd.Context(), open, func(s *session) error {
				db, ok := s.store.(*database.Database)
				if !ok {
					return fmt.Errorf("vacuum needs the sqlite backend, catalog uses %s", s.store.Name())
				}
				if err := db.Vacuum(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Vacuumed %s\n", db.Path())
				return nil
			})
		},
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info := startup.GetBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "catalogctl %s (commit %s, built %s, %s %s/%s)\n",
				info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		},
	}
}

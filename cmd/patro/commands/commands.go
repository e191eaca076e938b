// Package commands implements the patro command line.
package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/patro"
	"github.com/tsawler/patro/assets"
	"github.com/tsawler/patro/bsdate"
	"github.com/tsawler/patro/content"
	"github.com/tsawler/patro/format"
	"github.com/tsawler/patro/internal/config"
	"github.com/tsawler/patro/internal/logger"
	"github.com/tsawler/patro/internal/server"
	"github.com/tsawler/patro/monthgrid"
	"github.com/tsawler/patro/paper"
)

// Version is set at build time with -ldflags "-X ...commands.Version=...".
var Version = "dev"

// NewRootCommand builds the patro command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "patro",
		Short:         "Bikram Sambat calendars and chapter booklets",
		Long:          "patro converts dates between AD and a simulated Bikram Sambat calendar and generates printable calendar and chapter PDFs.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("log-level", "", "override the configured log level")

	root.AddCommand(
		NewCalendarCommand(),
		NewChapterCommand(),
		NewConvertCommand(),
		NewGridCommand(),
		NewServeCommand(),
		NewVersionCommand(),
	)
	return root
}

// env is what every command loads before running.
type env struct {
	cfg *config.Config
	log *logger.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logger.Level = level
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &env{cfg: cfg, log: log}, nil
}

// fetcher serves http(s), data: and local images. Relative paths resolve
// against the configured asset root, else the working directory.
func (e *env) fetcher() *assets.MultiFetcher {
	return assets.NewMultiFetcher(assets.HTTPConfig{
		Timeout:           e.cfg.Fetch.Timeout,
		RequestsPerSecond: e.cfg.Fetch.RequestsPerSecond,
		Burst:             e.cfg.Fetch.Burst,
		MaxBytes:          e.cfg.Fetch.MaxBytes,
		UserAgent:         "patro/" + Version,
		Logger:            e.log.Zap(),
	}, e.cfg.Document.AssetRoot)
}

// font reads the fallback font named by flag, else by the config. A
// missing file is an error; an unusable payload is left to the generator,
// which degrades to the base font with a warning.
func (e *env) font(flag string) ([]byte, error) {
	path := flag
	if path == "" {
		path = e.cfg.Document.FontPath
	}
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	return data, nil
}

func (e *env) paper(flag string) (paper.Size, error) {
	if flag == "" {
		return e.cfg.Document.PaperSize(), nil
	}
	return paper.ParseSize(flag)
}

// readRecords opens path and detects its format from the extension, then
// from its content.
func readRecords(path string) ([]byte, format.Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, format.Unknown, err
	}
	f := format.Detect(path)
	if f == format.Unknown {
		f = format.DetectFromMagic(data)
	}
	return data, f, nil
}

func loadEvents(paths []string) ([]content.Event, error) {
	var all []content.Event
	for _, p := range paths {
		data, f, err := readRecords(p)
		if err != nil {
			return nil, err
		}
		events, err := content.LoadEvents(bytes.NewReader(data), f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		all = append(all, events...)
	}
	return all, nil
}

func loadThemes(path string) ([]content.ThemeImage, error) {
	if path == "" {
		return nil, nil
	}
	data, f, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	themes, err := content.LoadThemes(bytes.NewReader(data), f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return themes, nil
}

func reportWarnings(w io.Writer, warnings []patro.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "%d warning(s):\n%s\n", len(warnings), patro.FormatWarnings(warnings))
}

// NewCalendarCommand creates the calendar command
func NewCalendarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Generate a year calendar PDF",
		Example: `  patro calendar --year 2081 --paper A4 --events events.yaml --themes themes.json
  patro calendar --year 2081 --months 1,2,3 --events festivals.ics --out q1.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.log.Sync()

			flags := cmd.Flags()
			year, _ := flags.GetInt("year")
			paperName, _ := flags.GetString("paper")
			eventFiles, _ := flags.GetStringSlice("events")
			themeFile, _ := flags.GetString("themes")
			fontFile, _ := flags.GetString("font")
			months, _ := flags.GetIntSlice("months")
			title, _ := flags.GetString("title")
			today, _ := flags.GetString("today")
			out, _ := flags.GetString("out")

			size, err := e.paper(paperName)
			if err != nil {
				return err
			}
			events, err := loadEvents(eventFiles)
			if err != nil {
				return err
			}
			themes, err := loadThemes(themeFile)
			if err != nil {
				return err
			}
			font, err := e.font(fontFile)
			if err != nil {
				return err
			}

			b := patro.Calendar(year).
				Paper(size).
				Events(events...).
				Themes(themes...).
				Fetcher(e.fetcher()).
				Contact(e.cfg.Document.ContactText, e.cfg.Document.ContactURL).
				Logger(e.log.Zap())
			if len(months) > 0 {
				b = b.Months(months...)
			}
			if title != "" {
				b = b.Title(title)
			}
			if font != nil {
				b = b.FallbackFont(font)
			}
			if today != "" {
				t, err := content.ParseDate(today)
				if err != nil {
					return err
				}
				b = b.Today(t)
			}
			if out == "" {
				out = fmt.Sprintf("calendar-%d.pdf", year)
			}

			start := time.Now()
			warnings, err := b.Save(cmd.Context(), out)
			if err != nil {
				return err
			}
			e.log.Infow("Document written", "document", "calendar", "file", out,
				"warnings", len(warnings), "duration_ms", time.Since(start).Milliseconds())
			reportWarnings(cmd.ErrOrStderr(), warnings)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int("year", 0, "BS year (required)")
	cmd.Flags().String("paper", "", "paper size: A5, A4, A3 or A2")
	cmd.Flags().StringSlice("events", nil, "event files (JSON, YAML or ICS)")
	cmd.Flags().String("themes", "", "theme image file (JSON or YAML)")
	cmd.Flags().String("font", "", "TrueType font for non-Latin text")
	cmd.Flags().IntSlice("months", nil, "BS months to include (default all)")
	cmd.Flags().String("title", "", "document title")
	cmd.Flags().String("today", "", "AD date marked as today (YYYY-MM-DD)")
	cmd.Flags().String("out", "", "output file (default calendar-<year>.pdf)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

// NewChapterCommand creates the chapter command
func NewChapterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapter",
		Short: "Generate a chapter PDF from JSON, YAML, HTML or text",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.log.Sync()

			flags := cmd.Flags()
			file, _ := flags.GetString("file")
			paperName, _ := flags.GetString("paper")
			fontFile, _ := flags.GetString("font")
			out, _ := flags.GetString("out")

			size, err := e.paper(paperName)
			if err != nil {
				return err
			}
			data, f, err := readRecords(file)
			if err != nil {
				return err
			}
			ch, err := content.LoadChapter(bytes.NewReader(data), f)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			font, err := e.font(fontFile)
			if err != nil {
				return err
			}

			b := patro.Chapter(ch).
				Paper(size).
				Fetcher(e.fetcher()).
				Contact(e.cfg.Document.ContactText, e.cfg.Document.ContactURL).
				Logger(e.log.Zap())
			if font != nil {
				b = b.FallbackFont(font)
			}
			if out == "" {
				out = "chapter.pdf"
			}

			start := time.Now()
			warnings, err := b.Save(cmd.Context(), out)
			if err != nil {
				return err
			}
			e.log.Infow("Document written", "document", "chapter", "file", out,
				"warnings", len(warnings), "duration_ms", time.Since(start).Milliseconds())
			reportWarnings(cmd.ErrOrStderr(), warnings)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().String("file", "", "chapter file (required)")
	cmd.Flags().String("paper", "", "paper size: A5, A4, A3 or A2")
	cmd.Flags().String("font", "", "TrueType font for non-Latin text")
	cmd.Flags().String("out", "", "output file (default chapter.pdf)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// NewConvertCommand creates the convert command with its ad and bs
// subcommands.
func NewConvertCommand() *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert dates between AD and BS",
	}

	convertCmd.AddCommand(&cobra.Command{
		Use:     "ad YYYY-MM-DD",
		Short:   "Convert an AD date to BS",
		Example: "  patro convert ad 2024-01-15",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := content.ParseDate(args[0])
			if err != nil {
				return err
			}
			bs := bsdate.ToBS(t)
			line := fmt.Sprintf("%s BS (%s, %s)", bs, bs.ISO(), bs.Weekday)
			if bs.Clamped {
				line += " clamped"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	})

	convertCmd.AddCommand(&cobra.Command{
		Use:     "bs YEAR MONTH DAY",
		Short:   "Convert a BS date to AD",
		Example: "  patro convert bs 2080 10 2",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := atoiAll(args)
			if err != nil {
				return err
			}
			if _, err := bsdate.New(nums[2], nums[1], nums[0]); err != nil {
				return err
			}
			conv := bsdate.ToAD(nums[2], nums[1], nums[0])
			line := conv.Time.Format("2006-01-02 (Monday)")
			if !conv.Exact {
				line += " approximate"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	})

	return convertCmd
}

// NewGridCommand creates the grid command, which prints a month grid.
func NewGridCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "grid YEAR MONTH",
		Short:   "Print the grid of a BS month",
		Example: "  patro grid 2081 1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nums, err := atoiAll(args)
			if err != nil {
				return err
			}
			year, month := nums[0], nums[1]
			if year < 1 || month < 1 || month > 12 {
				return fmt.Errorf("no such month %d/%d", year, month)
			}
			printGrid(cmd.OutOrStdout(), monthgrid.Build(month, year, nil, time.Now(), nil))
			return nil
		},
	}
}

func printGrid(w io.Writer, g monthgrid.Grid) {
	first, last := g.Span()
	fmt.Fprintf(w, "%s %d  (%s to %s)\n", bsdate.MonthName(g.Month), g.Year,
		first.Format("2 Jan 2006"), last.Format("2 Jan 2006"))
	fmt.Fprintln(w, " Sun Mon Tue Wed Thu Fri Sat")
	for _, row := range g.Rows() {
		var b strings.Builder
		for _, c := range row {
			switch {
			case c.Kind == monthgrid.Blank:
				b.WriteString("    ")
			case c.IsToday:
				fmt.Fprintf(&b, " %2d*", c.BSDay)
			default:
				fmt.Fprintf(&b, " %3d", c.BSDay)
			}
		}
		fmt.Fprintln(w, b.String())
	}
}

func atoiAll(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", a)
		}
		out[i] = n
	}
	return out, nil
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Serve date conversion, month grids and PDF generation over HTTP, with Prometheus metrics on /metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.log.Sync()

			font, err := e.font("")
			if err != nil {
				return err
			}
			fetcher := e.fetcher()
			if e.cfg.Document.AssetRoot == "" {
				// Without an asset root the server reads no local files.
				fetcher.File = nil
			}
			srv := server.New(server.Options{
				Config:  e.cfg,
				Logger:  e.log,
				Fetcher: fetcher,
				Font:    font,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the patro version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "patro %s\n", Version)
		},
	}
}

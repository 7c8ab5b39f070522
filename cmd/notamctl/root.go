package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/llm"
	"github.com/couchcryptid/notam-briefing-service/internal/app"
	"github.com/couchcryptid/notam-briefing-service/internal/config"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
	"github.com/couchcryptid/notam-briefing-service/internal/pipeline"
)

type rootFlags struct {
	logLevel string
	asJSON   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "notamctl",
		Short:         "Fetch, parse and summarize NOTAMs",
		Long:          "notamctl retrieves NOTAMs for an airport from the FAA with NAV CANADA fallback, filters them to a time window and produces operational briefings.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flags.asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(newFetchCmd(flags))
	root.AddCommand(newBriefCmd(flags))
	root.AddCommand(newParseCmd(flags))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notamctl %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func newFetchCmd(flags *rootFlags) *cobra.Command {
	var (
		value    int
		unit     string
		noFilter bool
	)
	cmd := &cobra.Command{
		Use:   "fetch ICAO",
		Short: "List NOTAMs for an airport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadApp(cmd.ErrOrStderr(), flags.logLevel)
			if err != nil {
				return err
			}
			res, err := svc.Fetcher.FetchNotams(cmd.Context(), pipeline.FetchRequest{
				ICAO:            args[0],
				TimeValue:       value,
				TimeUnit:        domain.TimeUnit(unit),
				EnableFiltering: !noFilter,
			})
			if err != nil {
				return err
			}
			if flags.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			writeFetchResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVar(&value, "value", pipeline.DefaultTimeValue, "look-ahead window length")
	cmd.Flags().StringVar(&unit, "unit", string(domain.UnitHours), "window unit (hours or days)")
	cmd.Flags().BoolVar(&noFilter, "no-filter", false, "return every NOTAM regardless of validity window")
	return cmd
}

func newBriefCmd(flags *rootFlags) *cobra.Command {
	var (
		value int
		unit  string
		focus string
	)
	cmd := &cobra.Command{
		Use:   "brief ICAO",
		Short: "Produce an operational briefing for an airport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := loadApp(cmd.ErrOrStderr(), flags.logLevel)
			if err != nil {
				return err
			}
			brief, err := svc.Briefer.Brief(cmd.Context(), pipeline.BriefingRequest{
				ICAO:      args[0],
				TimeValue: value,
				TimeUnit:  domain.TimeUnit(unit),
				Focus:     llm.Focus(focus),
			})
			if err != nil {
				return err
			}
			if flags.asJSON {
				return writeJSON(cmd.OutOrStdout(), brief)
			}
			writeBriefing(cmd.OutOrStdout(), brief)
			return nil
		},
	}
	cmd.Flags().IntVar(&value, "value", pipeline.DefaultTimeValue, "look-ahead window length")
	cmd.Flags().StringVar(&unit, "unit", string(domain.UnitHours), "window unit (hours or days)")
	cmd.Flags().StringVar(&focus, "focus", "general", "briefing focus (general, runway, airspace)")
	return cmd
}

func newParseCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Split a raw ICAO NOTAM into its fields",
		Long:  "Parse reads a raw NOTAM from FILE, or from standard input when FILE is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return fmt.Errorf("read NOTAM: %w", err)
			}
			parsed := domain.ParseRawNotam(string(raw))
			if parsed == nil {
				return &domain.ValidationError{Field: "NOTAM text", Reason: "text is required"}
			}
			if flags.asJSON {
				return writeJSON(cmd.OutOrStdout(), parsed)
			}
			writeParsed(cmd.OutOrStdout(), parsed)
			return nil
		},
	}
}

func loadApp(stderr io.Writer, logLevel string) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := observability.NewConsoleLogger(stderr, logLevel)
	slog.SetDefault(logger)
	return app.New(cfg, logger, observability.NewMetrics())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFetchResult(w io.Writer, res pipeline.FetchResult) {
	fmt.Fprintf(w, "%s: %d NOTAMs from %s", res.ICAO, len(res.Records), res.Source)
	if res.Window != nil {
		fmt.Fprintf(w, " active in the next %s (%d fetched)", res.Window.Describe(), res.FetchedCount)
	}
	fmt.Fprintln(w)
	for _, rec := range res.Records {
		fmt.Fprintf(w, "\n%s  %s -> %s\n", rec.Number, orDash(rec.EffectiveStart), orDash(rec.EffectiveEnd))
		fmt.Fprintln(w, indent(rec.Text))
	}
}

func writeBriefing(w io.Writer, b pipeline.Briefing) {
	fmt.Fprintf(w, "%s briefing, next %s (%s)\n", b.ICAO, b.Window.Describe(), b.Source)
	fmt.Fprintf(w, "%d NOTAMs, %d cancellations", b.Total, b.Cancelled)
	if b.Provider != "" {
		fmt.Fprintf(w, ", %d analyzed by %s", b.Analyzed, b.Provider)
	}
	if b.Truncated {
		fmt.Fprint(w, ", input truncated")
	}
	fmt.Fprintln(w)
	if b.Summary == "" {
		for _, rec := range b.Records {
			fmt.Fprintf(w, "\n%s\n%s\n", rec.Number, indent(rec.Text))
		}
		return
	}
	fmt.Fprintf(w, "\n%s\n", b.Summary)
}

func writeParsed(w io.Writer, p *domain.ParsedNotamBody) {
	fields := []struct{ label, value string }{
		{"Number", p.NotamNumber},
		{"Q)", p.QLine},
		{"A)", p.Aerodrome},
		{"B)", p.ValidFromRaw},
		{"C)", p.ValidToRaw},
		{"D)", p.Schedule},
	}
	for _, f := range fields {
		if f.value != "" {
			fmt.Fprintf(w, "%-7s %s\n", f.label, f.value)
		}
	}
	if p.IsCancellation {
		fmt.Fprintf(w, "%-7s %s\n", "Cancels", p.CancelsNotam)
	}
	if p.Body != "" {
		fmt.Fprintf(w, "%-7s %s\n", "E)", strings.ReplaceAll(p.Body, "\n", "\n        "))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func indent(text string) string {
	return "  " + strings.ReplaceAll(text, "\n", "\n  ")
}

// Command decode converts a saved SYNOP bulletin export into a GeoJSON file.
//
// Usage:
//
//	go run ./cmd/decode -in ogimet_data.txt -out weather_stations.geojson
//	go run ./cmd/decode -fetch -country India
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/couchcryptid/synop-etl/internal/adapter/ogimet"
	"github.com/couchcryptid/synop-etl/internal/config"
	"github.com/couchcryptid/synop-etl/internal/domain"
	"github.com/couchcryptid/synop-etl/internal/geojson"
	"github.com/couchcryptid/synop-etl/internal/observability"
)

var (
	labelColor   = color.New(color.FgCyan)
	numberColor  = color.New(color.FgGreen)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type options struct {
	in      string
	out     string
	fetch   bool
	country string
	noColor bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.in, "in", "ogimet_data.txt", "bulletin text file, - for stdin")
	fs.StringVar(&o.out, "out", "weather_stations.geojson", "GeoJSON output file, - for stdout")
	fs.BoolVar(&o.fetch, "fetch", false, "fetch the latest synoptic window first and save it to -in")
	fs.StringVar(&o.country, "country", "", "country to fetch (defaults to OGIMET_COUNTRY)")
	fs.BoolVar(&o.noColor, "no-color", false, "disable color output")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.fetch && o.in == "-" {
		return options{}, fmt.Errorf("-fetch needs a file for -in")
	}
	return o, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if o.noColor {
		color.NoColor = true // disables colorized output globally
	}

	if o.fetch {
		if err := fetchLatest(o, stderr); err != nil {
			errorColor.Fprintf(stderr, "fetch failed: %v\n", err)
			return 1
		}
	}

	text, err := readInput(o.in, stdin)
	if err != nil {
		errorColor.Fprintf(stderr, "read bulletin: %v\n", err)
		return 1
	}

	records, stats := domain.DecodeBulletinStats(text)
	if stats.Headers == 0 {
		warningColor.Fprintln(stderr, "no station headers found in input")
	}

	if err := writeOutput(o.out, stdout, records); err != nil {
		errorColor.Fprintf(stderr, "write GeoJSON: %v\n", err)
		return 1
	}

	printSummary(stderr, o.out, stats)
	return 0
}

func fetchLatest(o options, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.country != "" {
		cfg.OgimetCountry = o.country
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := ogimet.NewClient(cfg, observability.NewMetricsForTesting(), logger)

	w := domain.CurrentWindow()
	fmt.Fprintf(stderr, "%s %s\n", labelColor.Sprint("Fetching:"), client.URL(w))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := client.FetchBulletin(ctx, w)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.in, []byte(b.Text), 0o644); err != nil {
		return fmt.Errorf("save bulletin: %w", err)
	}
	fmt.Fprintf(stderr, "%s %s\n", labelColor.Sprint("Saved:"), o.in)
	return nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeOutput(path string, stdout io.Writer, records []domain.ObservationRecord) error {
	fc := geojson.NewFeatureCollection(records)
	if path == "-" {
		return geojson.Encode(stdout, fc, true)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := geojson.Encode(f, fc, true); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(w io.Writer, out string, stats domain.DecodeStats) {
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Headers found:"), numberColor.Sprint(stats.Headers))
	fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Stations decoded:"), numberColor.Sprint(stats.Records))
	if n := len(stats.Dropped); n > 0 {
		fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Stations dropped:"), warningColor.Sprint(n))
		for _, d := range stats.Dropped {
			fmt.Fprintf(w, "  %s %v\n", warningColor.Sprint(d.StationID), d.Reason)
		}
	}
	if stats.UnparsedGroups > 0 {
		fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Unparsed groups:"), warningColor.Sprint(stats.UnparsedGroups))
	}
	if out != "-" {
		fmt.Fprintf(w, "%s %s\n", labelColor.Sprint("Written:"), out)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Meijaisharma/PathshalaPro/pkg/cli"
	"github.com/Meijaisharma/PathshalaPro/pkg/config"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger/export"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger/retention"
	"github.com/Meijaisharma/PathshalaPro/pkg/ledger/storage"

	"github.com/spf13/cobra"
)

type ledgerQueryOptions struct {
	since     time.Duration
	timeRange string
	route     string
	client    int64
	outcome   string
	status    int
	limit     int
	offset    int
	sortBy    string
	sortOrder string
	format    string
	output    string
}

func newLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and maintain the playback ledger",
		Long: `Query, summarise and prune the playback ledger.

Every media request handled by the relay leaves one record: the content it
asked for, the byte window served, how many bytes reached the client and how
the stream ended.

Subcommands:
  query   - List records with filters
  report  - Summarise records by outcome and route
  prune   - Apply the retention policy now`,
	}
	cmd.AddCommand(newLedgerQueryCmd(), newLedgerReportCmd(), newLedgerPruneCmd())
	return cmd
}

func newLedgerQueryCmd() *cobra.Command {
	opts := &ledgerQueryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query playback records",
		Long: `Query playback records with filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-03-01T00:00:00Z/2026-03-02T00:00:00Z"

Examples:
  # Streams that failed after headers were sent, last 24 hours
  pathshala ledger query --since 24h --outcome aborted

  # Everything for one lecture as CSV
  pathshala ledger query --client 42 --format csv --output lecture42.csv

  # Largest transfers first
  pathshala ledger query --sort bytes_sent --order desc --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return queryLedger(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.DurationVar(&opts.since, "since", 0, "only records newer than this (e.g. 24h)")
	f.StringVar(&opts.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	f.StringVar(&opts.route, "route", "", "filter by route template (e.g. /api/video/{id})")
	f.Int64Var(&opts.client, "client", -1, "filter by public content ID")
	f.StringVar(&opts.outcome, "outcome", "", "filter by outcome (complete, client_gone, aborted, rejected)")
	f.IntVar(&opts.status, "status", 0, "filter by HTTP status")
	f.IntVar(&opts.limit, "limit", ledger.DefaultLimit, "max results")
	f.IntVar(&opts.offset, "offset", 0, "pagination offset")
	f.StringVar(&opts.sortBy, "sort", "request_time", "sort field: request_time, bytes_sent, duration")
	f.StringVar(&opts.sortOrder, "order", "desc", "sort order: asc, desc")
	f.StringVar(&opts.format, "format", "text", "output format: text, json, csv")
	f.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// buildQuery converts flags into a validated ledger query.
func (o *ledgerQueryOptions) buildQuery(now time.Time) (*ledger.Query, error) {
	q := &ledger.Query{
		Route:     o.route,
		Outcome:   o.outcome,
		Status:    o.status,
		Limit:     o.limit,
		Offset:    o.offset,
		SortBy:    o.sortBy,
		SortOrder: o.sortOrder,
	}
	if o.client >= 0 {
		client := o.client
		q.ClientID = &client
	}

	if o.since > 0 && o.timeRange != "" {
		return nil, fmt.Errorf("--since and --time-range are mutually exclusive")
	}
	if o.since > 0 {
		start := now.Add(-o.since)
		q.StartTime = &start
	}
	if o.timeRange != "" {
		start, end, err := parseTimeRange(o.timeRange)
		if err != nil {
			return nil, err
		}
		q.StartTime, q.EndTime = &start, &end
	}

	ledger.ApplyDefaults(q)
	if err := ledger.Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

func parseTimeRange(s string) (time.Time, time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid time range format (expected: start/end)")
	}
	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	return start, end, nil
}

// openLedger opens the storage configured under ledger.
func openLedger(cmd *cobra.Command) (ledger.Storage, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Ledger.Backend == "memory" {
		return nil, nil, cli.NewConfigError("ledger.backend", "the memory ledger only lives inside a running relay", nil)
	}
	store, err := storage.New(&cfg.Ledger)
	if err != nil {
		return nil, nil, cli.NewCommandError("ledger", fmt.Errorf("failed to open ledger: %w", err))
	}
	return store, cfg, nil
}

func queryLedger(cmd *cobra.Command, opts *ledgerQueryOptions) error {
	query, err := opts.buildQuery(time.Now())
	if err != nil {
		return cli.NewCommandError("ledger query", err)
	}
	store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	records, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("ledger query", fmt.Errorf("query failed: %w", err))
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return cli.NewCommandError("ledger query", fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		out = f
	}

	if opts.format == "" || opts.format == string(cli.FormatText) {
		return cli.NewFormatter(cli.FormatText).FormatTo(out, recordTable(records))
	}
	exporter, err := export.New(opts.format)
	if err != nil {
		return cli.NewCommandError("ledger query", err)
	}
	return exporter.Export(ctx, records, out)
}

func recordTable(records []*ledger.Record) *cli.Table {
	table := &cli.Table{Headers: []string{"TIME", "ROUTE", "ID", "RANGE", "STATUS", "BYTES", "OUTCOME", "DURATION"}}
	for _, r := range records {
		window := "-"
		if r.RangeStart >= 0 && r.RangeEnd >= 0 {
			window = fmt.Sprintf("%d-%d/%d", r.RangeStart, r.RangeEnd, r.TotalSize)
		}
		table.AddRow(
			r.RequestTime.UTC().Format(time.RFC3339),
			r.Route,
			strconv.FormatInt(r.ClientID, 10),
			window,
			strconv.Itoa(r.Status),
			cli.FormatBytes(r.BytesSent),
			r.Outcome,
			r.Duration.Round(time.Millisecond).String(),
		)
	}
	return table
}

func newLedgerReportCmd() *cobra.Command {
	var since time.Duration
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise playback records",
		Long: `Report counts records by outcome and route and totals the bytes served.

Example:
  pathshala ledger report --since 168h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			q := &ledger.Query{Limit: ledger.MaxLimit}
			if since > 0 {
				start := time.Now().Add(-since)
				q.StartTime = &start
			}
			ledger.ApplyDefaults(q)

			ctx := context.Background()
			total, err := store.Count(ctx, q)
			if err != nil {
				return cli.NewCommandError("ledger report", err)
			}
			records, err := store.Query(ctx, q)
			if err != nil {
				return cli.NewCommandError("ledger report", err)
			}
			return writeReport(cmd.OutOrStdout(), total, records)
		},
	}
	cmd.Flags().DurationVar(&since, "since", 0, "only records newer than this (e.g. 168h)")
	return cmd
}

func writeReport(w io.Writer, total int64, records []*ledger.Record) error {
	fmt.Fprintln(w, "Playback Report")
	fmt.Fprintln(w, "===============")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Total Requests: %d\n", total)
	if int64(len(records)) < total {
		fmt.Fprintf(w, "Summarising the newest %d records\n", len(records))
	}

	var bytes int64
	outcomes := make(map[string]int)
	routes := make(map[string]int)
	for _, r := range records {
		bytes += r.BytesSent
		outcomes[r.Outcome]++
		routes[r.Route]++
	}
	fmt.Fprintf(w, "Bytes Served: %s\n", cli.FormatBytes(bytes))
	fmt.Fprintln(w)

	writeBreakdown(w, "By Outcome:", outcomes, len(records))
	writeBreakdown(w, "By Route:", routes, len(records))
	return nil
}

func writeBreakdown(w io.Writer, title string, counts map[string]int, n int) {
	fmt.Fprintln(w, title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pct := float64(counts[k]) / float64(n) * 100
		fmt.Fprintf(w, "  %s: %d requests (%.0f%%)\n", k, counts[k], pct)
	}
	fmt.Fprintln(w)
}

func newLedgerPruneCmd() *cobra.Command {
	var (
		days       int
		maxRecords int64
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Apply the retention policy now",
		Long: `Prune deletes records older than ledger.retention.days and the oldest
records beyond ledger.retention.max_records, exactly as the scheduled job does.

Examples:
  pathshala ledger prune
  pathshala ledger prune --days 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			rc := cfg.Ledger.Retention
			if cmd.Flags().Changed("days") {
				rc.Days = days
			}
			if cmd.Flags().Changed("max-records") {
				rc.MaxRecords = maxRecords
			}

			deleted, err := retention.NewPruner(store, rc).Prune(context.Background())
			if err != nil {
				return cli.NewCommandError("ledger prune", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d records\n", deleted)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "override retention days")
	cmd.Flags().Int64Var(&maxRecords, "max-records", 0, "override the record cap")
	return cmd
}

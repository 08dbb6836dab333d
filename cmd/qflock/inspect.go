package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/qflock/pkg/columnar"
	"github.com/ajitpratap0/qflock/pkg/compression"
	"github.com/ajitpratap0/qflock/pkg/config"
	"github.com/ajitpratap0/qflock/pkg/ingest"
	"github.com/ajitpratap0/qflock/pkg/logger"
	"github.com/ajitpratap0/qflock/pkg/manifest"
	"github.com/ajitpratap0/qflock/pkg/metrics"
	"github.com/ajitpratap0/qflock/pkg/resultset"
	stringpool "github.com/ajitpratap0/qflock/pkg/strings"
)

type inspectOptions struct {
	limit int
	trim  bool
}

func newInspectCommand(flags *globalFlags) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect <fixture-dir>",
		Short: "Decode a fixture and print its rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := setup(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			return runInspect(cmd.Context(), cfg, args[0], opts, os.Stdout, os.Stderr)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Maximum rows to print (0 = all)")
	cmd.Flags().BoolVar(&opts.trim, "trim", false, "Trim trailing padding from text values")

	return cmd
}

func runInspect(ctx context.Context, cfg *config.Config, dir string, opts inspectOptions, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, logger.QueryIDKey, filepath.Base(dir))
	log := logger.WithContext(ctx, nil)

	fixture, err := manifest.Open(dir)
	if err != nil {
		return err
	}
	defer fixture.Close()

	bytesMapped, pagesMapped := fixture.Stats()
	log.Debug("fixture mapped",
		zap.Int("columns", len(fixture.Manifest.Columns)),
		zap.Int64("bytes", bytesMapped),
		zap.Int64("pages", pagesMapped))

	compCfg := cfg.Reader.Compression
	compCfg.Algorithm = fixture.Manifest.Algorithm()
	comp, err := compression.NewCompressor(&compCfg)
	if err != nil {
		return err
	}

	ingestOpts := []ingest.Option{ingest.WithCompressor(comp)}
	if cfg.Reader.IsLimited() {
		ingestOpts = append(ingestOpts, ingest.WithMaxColumnBytes(cfg.Reader.MaxColumnBytes))
	}
	rsOpts := []resultset.Option{
		resultset.WithLogger(log),
		resultset.WithIngestOptions(ingestOpts...),
	}
	if cfg.Metrics.Enabled {
		rsOpts = append(rsOpts, resultset.WithMetrics(metrics.Default()))
		if cfg.Metrics.ListenAddr != "" {
			srv := metrics.NewServer(cfg.Metrics.ListenAddr, prometheus.DefaultGatherer, log)
			if err := srv.Start(); err != nil {
				return err
			}
			defer srv.Stop()
		}
	}

	rs, err := resultset.New(ctx, fixture.Input, rsOpts...)
	if err != nil {
		return err
	}
	defer rs.Close()

	printed, err := printRows(rs, opts, out)
	if err != nil {
		return err
	}

	total, err := rs.NumRows()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "(%d of %d rows)\n", printed, total)

	warnings, err := rs.Warnings()
	if err != nil {
		return err
	}
	for _, w := range warnings {
		fmt.Fprintln(errOut, w.String())
	}
	log.Debug("fixture inspected", zap.Int("rows", total), zap.Int("warnings", len(warnings)))
	return nil
}

func printRows(rs *resultset.ResultSet, opts inspectOptions, out io.Writer) (int, error) {
	meta, err := rs.Metadata()
	if err != nil {
		return 0, err
	}

	header := make([]string, meta.ColumnCount())
	for i := range header {
		c, err := meta.Column(i + 1)
		if err != nil {
			return 0, err
		}
		header[i] = fmt.Sprintf("%s (%s)", c.Name, c.Type)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)

	printed := 0
	for opts.limit == 0 || printed < opts.limit {
		ok, err := rs.Next()
		if err != nil {
			return printed, err
		}
		if !ok {
			break
		}

		row := make([]string, meta.ColumnCount())
		for i := range row {
			cell, err := formatCell(rs, i+1, opts)
			if err != nil {
				return printed, err
			}
			row[i] = cell
		}
		table.Append(row)
		printed++
	}

	table.SetBorder(false)
	table.Render()
	return printed, nil
}

func formatCell(rs *resultset.ResultSet, col int, opts inspectOptions) (string, error) {
	c, err := rs.Column(col)
	if err != nil {
		return "", err
	}
	if !c.Type.Decodable() {
		b, err := rs.Bytes(col)
		if err != nil {
			return "", err
		}
		return "0x" + hex.EncodeToString(b), nil
	}

	v, err := rs.Object(col)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case columnar.TextValue:
		if opts.trim {
			return stringpool.TrimPadding(string(v)), nil
		}
		return strconv.Quote(string(v)), nil
	case columnar.TimestampValue:
		return time.Time(v).Format(time.RFC3339Nano), nil
	case columnar.Float32Value:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	default:
		return fmt.Sprint(v.Any()), nil
	}
}

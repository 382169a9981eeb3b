// Command fastrow stream-parses CSV input in bounded memory and re-emits it
// as normalized CSV (first separator, \n terminators, minimal quoting), or
// just counts rows and fields. Input may be a file, stdin, or an
// lz4-compressed file.
package main

import (
	"bufio"
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fastrow/fastrow"
	"github.com/fastrow/fastrow/metric"
)

func main() {
	var (
		sepFlag     = flag.String("sep", ",", "comma-separated list of separator tokens (\\t recognized, up to 8)")
		escFlag     = flag.String("esc", `"`, "escape (quote) pattern, 1-16 bytes")
		chunkSize   = flag.Int("chunk", 256*1024, "feed size in bytes for streaming mode")
		maxRow      = flag.Int("max-row", 0, "maximum row size in bytes (0 = unlimited)")
		countOnly   = flag.Bool("count", false, "print row/field counts instead of normalized CSV")
		parallel    = flag.Int("parallel", 0, "read the whole input and parse with N workers (0 = streaming mode)")
		forceLZ4    = flag.Bool("lz4", false, "treat input as lz4-compressed regardless of extension")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := buildConfig(*sepFlag, *escFlag)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	in, name, err := openInput(flag.Arg(0), *forceLZ4)
	if err != nil {
		logger.Error("open input", "error", err)
		os.Exit(1)
	}

	metrics := metric.NewParserMetrics("")
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			logger.Error("register metrics", "error", err)
			os.Exit(1)
		}
		go serveMetrics(*metricsAddr, reg, logger)
	}

	out := bufio.NewWriter(os.Stdout)
	sink := newSink(out, cfg, *countOnly)

	if *parallel > 0 {
		err = parseWhole(in, cfg, *parallel, sink, metrics)
	} else {
		err = parseStreaming(in, cfg, *chunkSize, *maxRow, sink, metrics)
	}
	sink.report(logger)
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		logger.Error("parse failed", "input", name, "error", err)
		os.Exit(1)
	}
}

// buildConfig turns the flag values into a validated Config.
func buildConfig(sepFlag, escFlag string) (*fastrow.Config, error) {
	var seps [][]byte
	for _, tok := range strings.Split(sepFlag, ",") {
		tok = strings.ReplaceAll(tok, `\t`, "\t")
		if tok == "" {
			continue
		}
		seps = append(seps, []byte(tok))
	}
	if len(seps) == 0 {
		seps = [][]byte{[]byte(",")}
	}
	return fastrow.NewConfig(seps, []byte(escFlag))
}

// openInput opens the named file (stdin when empty or "-"), layering an lz4
// reader for .lz4 files.
func openInput(name string, forceLZ4 bool) (io.Reader, string, error) {
	if name == "" || name == "-" {
		if forceLZ4 {
			return lz4.NewReader(os.Stdin), "stdin", nil
		}
		return os.Stdin, "stdin", nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, name, err
	}
	if forceLZ4 || strings.HasSuffix(name, ".lz4") {
		return lz4.NewReader(f), name, nil
	}
	return f, name, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

// parseStreaming feeds the input through the streaming coordinator chunk by
// chunk, emitting rows as they complete.
func parseStreaming(in io.Reader, cfg *fastrow.Config, chunkSize, maxRow int, sink *rowSink, metrics *metric.ParserMetrics) error {
	s := fastrow.NewStreamer(cfg)
	s.MaxRowSize = maxRow

	chunk := make([]byte, chunkSize)
	for {
		n, readErr := in.Read(chunk)
		if n > 0 {
			metrics.ObserveBytes(n)
			rows, err := s.Feed(chunk[:n])
			metrics.ObserveRows(rows)
			backlog, _ := s.Status()
			metrics.SetBacklog(backlog)
			if err := sink.emit(rows, err, metrics); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}
	rows, err := s.Finalize()
	metrics.ObserveRows(rows)
	metrics.SetBacklog(0)
	return sink.emit(rows, err, metrics)
}

// parseWhole reads everything and uses the parallel strategy.
func parseWhole(in io.Reader, cfg *fastrow.Config, workers int, sink *rowSink, metrics *metric.ParserMetrics) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	metrics.ObserveBytes(len(data))
	rows, perr := fastrow.ParseParallel(context.Background(), data, cfg, workers)
	metrics.ObserveRows(rows)
	return sink.emit(rows, perr, metrics)
}

// rowSink writes parsed rows as normalized CSV, or just counts them.
type rowSink struct {
	out       *bufio.Writer
	sep       []byte
	esc       []byte
	countOnly bool
	rows      int
	fields    int
}

func newSink(out *bufio.Writer, cfg *fastrow.Config, countOnly bool) *rowSink {
	return &rowSink{
		out:       out,
		sep:       cfg.Separators()[0],
		esc:       cfg.Escape(),
		countOnly: countOnly,
	}
}

func (k *rowSink) emit(rows [][][]byte, err error, metrics *metric.ParserMetrics) error {
	for _, row := range rows {
		k.rows++
		k.fields += len(row)
		if k.countOnly {
			continue
		}
		if werr := k.writeRow(row); werr != nil {
			return werr
		}
	}
	if err != nil {
		metrics.ObserveError(err)
	}
	return err
}

// writeRow joins a row with the primary separator, quoting fields that
// contain structural bytes.
func (k *rowSink) writeRow(row [][]byte) error {
	for i, field := range row {
		if i > 0 {
			if _, err := k.out.Write(k.sep); err != nil {
				return err
			}
		}
		if err := k.writeField(field); err != nil {
			return err
		}
	}
	return k.out.WriteByte('\n')
}

func (k *rowSink) writeField(field []byte) error {
	if !k.fieldNeedsQuoting(field) {
		_, err := k.out.Write(field)
		return err
	}
	if _, err := k.out.Write(k.esc); err != nil {
		return err
	}
	for i := 0; i < len(field); {
		if i+len(k.esc) <= len(field) && bytes.Equal(field[i:i+len(k.esc)], k.esc) {
			if _, err := k.out.Write(k.esc); err != nil {
				return err
			}
			if _, err := k.out.Write(k.esc); err != nil {
				return err
			}
			i += len(k.esc)
			continue
		}
		if err := k.out.WriteByte(field[i]); err != nil {
			return err
		}
		i++
	}
	_, err := k.out.Write(k.esc)
	return err
}

func (k *rowSink) fieldNeedsQuoting(field []byte) bool {
	if bytes.Contains(field, k.esc) || bytes.Contains(field, k.sep) {
		return true
	}
	return bytes.ContainsAny(field, "\r\n")
}

func (k *rowSink) report(logger *slog.Logger) {
	if k.countOnly {
		fmt.Fprintf(k.out, "%d rows, %d fields\n", k.rows, k.fields)
	}
	logger.Info("done", "rows", k.rows, "fields", k.fields)
}

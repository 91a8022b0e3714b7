// Command ordercheck compares a factory order acknowledgement against a purchase
// order and prints the discrepancy report.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	rediscache "ordercheck/internal/cache/redis"
	"ordercheck/internal/config"
	"ordercheck/internal/extract"
	"ordercheck/internal/logging"
	"ordercheck/internal/port"
	"ordercheck/internal/render"
	"ordercheck/internal/service"
	"ordercheck/internal/storage"
	"ordercheck/internal/summarize/providers"
	"ordercheck/internal/vocabulary"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type options struct {
	oa         string
	po         string
	customerPO string
	datasheet  string
	vocabulary string
	format     string
	out        string
	summarize  bool
	showText   bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("ordercheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.oa, "oa", "", "order acknowledgement (path, s3://bucket/key or gs://bucket/object)")
	fs.StringVar(&opts.po, "po", "", "purchase order")
	fs.StringVar(&opts.customerPO, "customer-po", "", "optional customer purchase order")
	fs.StringVar(&opts.datasheet, "datasheet", "", "optional datasheet")
	fs.StringVar(&opts.vocabulary, "vocabulary", "", "role vocabulary JSON (default: built-in)")
	fs.StringVar(&opts.format, "format", "", "report format: markdown, json, csv, xlsx or pdf")
	fs.StringVar(&opts.out, "out", "", "output location; stdout when empty, a trailing / picks a file name")
	fs.BoolVar(&opts.summarize, "summarize", false, "append an LLM summary of the report")
	fs.BoolVar(&opts.showText, "show-text", false, "include the filtered text of every document")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.oa == "" || opts.po == "" {
		return nil, errors.New("both -oa and -po are required")
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "ordercheck: %v\n", err)
		return exitUsage
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "ordercheck: failed to load config: %v\n", err)
		return exitFailure
	}
	if opts.format == "" {
		opts.format = cfg.Report.Format
	}
	renderer, err := render.NewRegistry().Get(opts.format)
	if err != nil {
		fmt.Fprintf(stderr, "ordercheck: %v\n", err)
		return exitUsage
	}

	log := logging.New(cfg.Log)
	if err := compareDocuments(context.Background(), cfg, opts, renderer, stdout, log); err != nil {
		log.WithError(err).Error("ordercheck: run failed")
		fmt.Fprintf(stderr, "ordercheck: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func compareDocuments(ctx context.Context, cfg *config.Config, opts *options, renderer render.Renderer, stdout io.Writer, log *logrus.Logger) error {
	vocabPath := cfg.Vocabulary.Path
	if opts.vocabulary != "" {
		vocabPath = opts.vocabulary
	}
	vocab, err := vocabulary.Load(vocabPath)
	if err != nil {
		return err
	}

	var extractor port.TextExtractor = extract.New(cfg.Extract.Timeout(), cfg.Extract.MaxPages, log)
	if cfg.Cache.RedisAddr != "" {
		cache := rediscache.New(&cfg.Cache, log)
		defer cache.Close()
		extractor = extract.NewCached(extractor, cache, cfg.Extract.MaxPages, log)
	}

	var summarizer port.Summarizer
	if opts.summarize {
		cfg.Summarizer.Enabled = true
		s, err := providers.NewFactory().Build(&cfg.Summarizer, log)
		if err != nil {
			log.WithError(err).Warn("ordercheck: summarizer not available")
		} else {
			summarizer = s
		}
	}

	resolver := storage.NewDefaultResolver(cfg)
	input := &service.CompareInput{Summarize: opts.summarize}
	for _, d := range []struct {
		raw    string
		target **service.DocumentInput
	}{
		{opts.oa, &input.OA},
		{opts.po, &input.PO},
		{opts.customerPO, &input.CustomerPO},
		{opts.datasheet, &input.Datasheet},
	} {
		if d.raw == "" {
			continue
		}
		data, loc, err := resolver.Read(ctx, d.raw)
		if err != nil {
			return fmt.Errorf("reading %s: %w", d.raw, err)
		}
		*d.target = &service.DocumentInput{Name: loc.Name(), Data: data}
	}

	svc := service.NewComparisonService(extractor, summarizer, service.SettingsFromConfig(cfg, vocab), nil, log)
	result, err := svc.Compare(ctx, input)
	if err != nil {
		return err
	}

	in := render.Input{Reports: result.Reports(), Summary: result.Summary}
	if opts.showText {
		in.Texts = result.Texts
	}

	if opts.out == "" {
		return renderer.Render(stdout, in)
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, in); err != nil {
		return err
	}
	target := opts.out
	if strings.HasSuffix(target, "/") {
		target += render.BuildFilename(result.RunID, renderer.Extension(), time.Now())
	}
	where, err := resolver.Write(ctx, target, buf.Bytes(), renderer.ContentType())
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	log.WithFields(logrus.Fields{"run_id": result.RunID, "location": where}).Info("ordercheck: report written")
	return nil
}

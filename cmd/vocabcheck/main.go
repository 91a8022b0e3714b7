// Command vocabcheck validates a role vocabulary and shows how a document classifies
// under it, for tuning keywords against real templates.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"ordercheck/internal/classify"
	"ordercheck/internal/config"
	"ordercheck/internal/domain"
	"ordercheck/internal/extract"
	"ordercheck/internal/logging"
	"ordercheck/internal/port"
	"ordercheck/internal/storage"
	"ordercheck/internal/vocabulary"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseRole(s string) (domain.DocumentRole, error) {
	for _, r := range []domain.DocumentRole{domain.RoleOA, domain.RolePO, domain.RoleCustomerPO, domain.RoleDatasheet} {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q (want oa, po, customer_po or datasheet)", s)
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vocabcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	vocabPath := fs.String("vocabulary", "", "role vocabulary JSON (default: built-in)")
	docPath := fs.String("doc", "", "optional document to classify (path, s3:// or gs://)")
	roleName := fs.String("role", string(domain.RolePO), "role of -doc")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	role, err := parseRole(*roleName)
	if err != nil {
		fmt.Fprintf(stderr, "vocabcheck: %v\n", err)
		return exitUsage
	}

	vocab, err := vocabulary.Load(*vocabPath)
	if err != nil {
		fmt.Fprintf(stderr, "vocabcheck: %v\n", err)
		return exitFailure
	}
	version := vocab.Version()
	if version == "" {
		version = "unversioned"
	}
	fmt.Fprintf(stdout, "vocabulary ok: %s, %d roles, %d keywords, %d patterns\n",
		version, len(vocab.Roles()), len(vocab.Keywords()), len(vocab.Patterns()))
	if *docPath == "" {
		return exitOK
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "vocabcheck: failed to load config: %v\n", err)
		return exitFailure
	}
	log := logging.New(cfg.Log)

	ctx := context.Background()
	data, loc, err := storage.NewDefaultResolver(cfg).Read(ctx, *docPath)
	if err != nil {
		fmt.Fprintf(stderr, "vocabcheck: %v\n", err)
		return exitFailure
	}
	doc, err := extract.New(cfg.Extract.Timeout(), cfg.Extract.MaxPages, log).
		Extract(ctx, port.ExtractInput{Role: role, Name: loc.Name(), Data: data})
	if err != nil {
		fmt.Fprintf(stderr, "vocabcheck: %v\n", err)
		return exitFailure
	}

	res := classify.New(vocab).Classify(doc)
	for _, line := range res.Lines {
		fmt.Fprintf(stdout, "p%d l%d: %s\n", line.Page, line.Line, line.Text)
		for _, m := range line.Matches {
			fmt.Fprintf(stdout, "    %-14s %q -> %q\n", m.Role, m.Keyword, m.Value)
		}
	}
	fmt.Fprintf(stdout, "kept %d of %d lines, dropped %d\n", len(res.Lines), res.Total, res.Dropped)
	if doc.Truncated() {
		fmt.Fprintf(stdout, "read %d of %d pages\n", doc.PagesRead, doc.PagesTotal)
	}
	return exitOK
}

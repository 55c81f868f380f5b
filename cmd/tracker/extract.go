package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/jonathan/candidate-tracker/internal/fetch"
	"github.com/jonathan/candidate-tracker/internal/observability"
	"github.com/jonathan/candidate-tracker/internal/schemas"
	"github.com/jonathan/candidate-tracker/internal/store"
	"github.com/jonathan/candidate-tracker/internal/types"
)

var (
	extractOutput   string
	extractURL      string
	extractValidate bool
	extractSave     bool
	extractSchema   string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file-or-url>...",
	Short: "Extract candidate profiles to JSON",
	Long: `Extract candidate profiles from saved profile pages or profile URLs and
write them as a JSON array. Pages are processed concurrently.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "out", "o", "", "Output file (default stdout)")
	extractCmd.Flags().StringVar(&extractURL, "url", "", "Page URL for saved files without a canonical link")
	extractCmd.Flags().BoolVar(&extractValidate, "validate", false, "Check each record against the candidate profile schema")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "Append new candidates to the configured store")
	extractCmd.Flags().StringVar(&extractSchema, "schema", "", "JSON Schema the written --out file must satisfy")
	rootCmd.AddCommand(extractCmd)
}

// extractOptions configures extractAll.
type extractOptions struct {
	PageURL  string
	Workers  int
	Validate bool
	Store    store.CandidateStore
	Fetch    *fetch.ProfileOptions
	Printer  *observability.Printer
	Now      func() time.Time
}

// extractResult is one input's outcome, in input order.
type extractResult struct {
	Source  string
	Profile *types.CandidateProfile
	Err     error
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := extractOptions{
		PageURL:  extractURL,
		Workers:  cfg.Workers,
		Validate: extractValidate,
	}
	if cfg.Verbose {
		opts.Printer = observability.NewPrinter(cmd.ErrOrStderr())
	}
	for _, a := range args {
		if isRemote(a) {
			opts.Fetch = profileOptions(ctx, cfg)
			break
		}
	}
	if extractSchema != "" && extractOutput == "" {
		return fmt.Errorf("--schema requires --out")
	}
	if extractSave {
		s, closeStore, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()
		opts.Store = s
	}

	results, err := extractAll(ctx, args, opts)
	if err != nil {
		return err
	}
	if extractOutput == "" {
		return writeResults(cmd.OutOrStdout(), results)
	}
	return writeResultsFile(extractOutput, extractSchema, results)
}

// writeResultsFile writes results to path and, when schemaPath is set,
// validates the written file against it.
func writeResultsFile(path, schemaPath string, results []extractResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	writeErr := writeResults(f, results)
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if schemaPath == "" {
		return writeErr
	}

	resolved := schemas.ResolveSchemaPath(schemaPath)
	if resolved == "" {
		return errors.Join(writeErr, fmt.Errorf("schema file not found: %s", schemaPath))
	}
	if err := schemas.ValidateJSON(resolved, path); err != nil {
		return errors.Join(writeErr, fmt.Errorf("%s does not match %s: %w", path, schemaPath, err))
	}
	return writeErr
}

// extractAll extracts every source with at most opts.Workers in flight. A
// failing source is reported in its result; only context cancellation
// aborts the batch.
func extractAll(ctx context.Context, sources []string, opts extractOptions) ([]extractResult, error) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	start := now()
	extractor := extraction.NewExtractor(extraction.WithClock(now), extraction.WithLogger(slog.Default()))

	results := make([]extractResult, len(sources))
	var printMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, source := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := extractOne(gctx, extractor, source, opts)
			results[i] = res

			if opts.Printer != nil {
				printMu.Lock()
				defer printMu.Unlock()
				if res.Profile != nil {
					opts.Printer.PrintCandidate(res.Profile)
				}
				var verr *schemas.ValidationError
				if errors.As(res.Err, &verr) {
					opts.Printer.PrintValidation(source, verr)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			slog.Error("extraction failed", "source", r.Source, "error", r.Err)
		}
	}
	if opts.Printer != nil {
		opts.Printer.PrintBatchSummary(len(sources), failed, now().Sub(start))
	}
	return results, nil
}

func extractOne(ctx context.Context, extractor *extraction.Extractor, source string, opts extractOptions) extractResult {
	res := extractResult{Source: source}

	page, err := loadPage(ctx, source, opts.PageURL, opts.Fetch)
	if err != nil {
		res.Err = err
		return res
	}
	profile, err := extractor.Extract(page)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", source, err)
		return res
	}
	res.Profile = profile

	if opts.Validate {
		if err := schemas.ValidateProfile(profile); err != nil {
			res.Err = err
			return res
		}
	}
	if opts.Store != nil {
		res.Err = appendIfNew(ctx, opts.Store, profile)
	}
	return res
}

func appendIfNew(ctx context.Context, s store.CandidateStore, profile *types.CandidateProfile) error {
	existence, err := s.Exists(ctx, profile.MemberID)
	if err != nil {
		return err
	}
	if existence.Exists {
		slog.Debug("candidate already tracked", "member_id", profile.MemberID)
		return nil
	}
	return s.Append(ctx, profile)
}

// writeResults writes the extracted profiles as an indented JSON array and
// reports whether any source failed.
func writeResults(w io.Writer, results []extractResult) error {
	profiles := make([]*types.CandidateProfile, 0, len(results))
	failed := 0
	for _, r := range results {
		if r.Profile != nil {
			profiles = append(profiles, r.Profile)
		}
		if r.Err != nil {
			failed++
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profiles); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(results))
	}
	return nil
}

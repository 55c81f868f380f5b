package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-tracker/internal/extraction"
	"github.com/jonathan/candidate-tracker/internal/store"
	"github.com/jonathan/candidate-tracker/internal/tracker"
)

var (
	trackProcessedBy string
	trackNotes       string
	trackRemove      bool
)

var trackCmd = &cobra.Command{
	Use:   "track <profile-url>...",
	Short: "Visit profiles and record new candidates in the store",
	Long: `Visit each profile in turn, pacing navigation like a recruiter would,
and record candidates that are not yet tracked. With --remove the visited
candidates are deleted from the store instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().StringVar(&trackProcessedBy, "processed-by", "", "Recruiter recorded on added candidates (default from RECRUITER)")
	trackCmd.Flags().StringVar(&trackNotes, "notes", "", "Notes recorded on added candidates")
	trackCmd.Flags().BoolVar(&trackRemove, "remove", false, "Delete the visited candidates instead of adding them")
	rootCmd.AddCommand(trackCmd)
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	fetchOpts := profileOptions(ctx, cfg)
	load := func(source string) tracker.PageLoader {
		return func(ctx context.Context) (*extraction.Page, error) {
			return loadPage(ctx, source, "", fetchOpts)
		}
	}

	t := newTrackSession(s, tracker.Config{
		MinProcessInterval: cfg.ProcessInterval(),
		Debounce:           cfg.Debounce(),
		MinNavigationGap:   cfg.MinNavigationGap(),
	})
	defer t.ctrl.Stop()

	if trackRemove {
		return t.removeAll(ctx, args, load, cmd.OutOrStdout())
	}

	processedBy := trackProcessedBy
	if processedBy == "" {
		processedBy = cfg.Recruiter
	}
	var edits store.Fields
	if processedBy != "" {
		edits.ProcessedBy = &processedBy
	}
	if trackNotes != "" {
		edits.Notes = &trackNotes
	}
	return t.trackAll(ctx, args, load, edits, cmd.OutOrStdout())
}

// trackSession drives one controller and collects the outcomes of its
// debounced passes.
type trackSession struct {
	ctrl     *tracker.Controller
	outcomes chan tracker.Outcome
}

func newTrackSession(s store.CandidateStore, c tracker.Config) *trackSession {
	t := &trackSession{outcomes: make(chan tracker.Outcome, 1)}
	c.OnOutcome = func(o tracker.Outcome) { t.outcomes <- o }
	t.ctrl = tracker.NewController(s, nil, c)
	return t
}

// trackAll navigates to each URL and waits for its pass. Added candidates
// receive edits. Failed passes are reported and counted.
func (t *trackSession) trackAll(ctx context.Context, urls []string, load func(string) tracker.PageLoader, edits store.Fields, w io.Writer) error {
	failed := 0
	for _, url := range urls {
		if !extraction.IsProfileURL(url) {
			fmt.Fprintf(w, "%-12s %s not a profile page\n", "skipped", url)
			continue
		}
		if !t.ctrl.Navigate(ctx, url, load(url)) {
			fmt.Fprintf(w, "%-12s %s\n", tracker.StatusUnchanged, url)
			continue
		}

		var out tracker.Outcome
		select {
		case out = <-t.outcomes:
		case <-ctx.Done():
			return ctx.Err()
		}
		fmt.Fprintf(w, "%-12s %s %s\n", out.Status, url, describe(out))

		if out.Status == tracker.StatusFailed {
			failed++
			continue
		}
		if out.Status == tracker.StatusAdded && !edits.IsEmpty() {
			if err := t.ctrl.Save(ctx, out.MemberID, edits); err != nil {
				failed++
				fmt.Fprintf(w, "%-12s %s %v\n", tracker.StatusFailed, url, err)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d profiles failed", failed, len(urls))
	}
	return nil
}

// removeAll loads each URL and deletes its candidate from the store.
func (t *trackSession) removeAll(ctx context.Context, urls []string, load func(string) tracker.PageLoader, w io.Writer) error {
	var errs []error
	for _, url := range urls {
		page, err := load(url)(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		removed, err := t.ctrl.Remove(ctx, page)
		switch {
		case err != nil:
			errs = append(errs, err)
		case removed:
			fmt.Fprintf(w, "%-12s %s\n", "removed", url)
		default:
			fmt.Fprintf(w, "%-12s %s\n", "not_tracked", url)
		}
	}
	return errors.Join(errs...)
}

func describe(o tracker.Outcome) string {
	switch {
	case o.Err != nil:
		return o.Err.Error()
	case o.Profile != nil && o.ProcessedBy != "":
		return fmt.Sprintf("%s (%s, processed by %s)", o.Profile.FullName, o.MemberID, o.ProcessedBy)
	case o.Profile != nil:
		return fmt.Sprintf("%s (%s)", o.Profile.FullName, o.MemberID)
	default:
		return o.MemberID
	}
}

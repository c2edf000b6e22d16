// Package photos downloads resolved player images into the asset directory and records
// their paths on the catalog entries.
package photos

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/roster-photos/internal/fetch"
	"github.com/jonathan/roster-photos/internal/resolve"
	"github.com/jonathan/roster-photos/internal/types"
)

const (
	// DefaultDelay is the pause after every attempted player.
	DefaultDelay = 50 * time.Millisecond
	// DefaultFailDelay replaces DefaultDelay when no image was found.
	DefaultFailDelay = 60 * time.Millisecond
)

// Resolver finds the image URL for a player.
type Resolver interface {
	Resolve(ctx context.Context, id, nick string) (*resolve.Result, error)
}

// Downloader fetches raw bytes and the reported content type.
type Downloader interface {
	Bytes(ctx context.Context, url string) ([]byte, string, error)
}

// Reporter receives one status line per player.
type Reporter interface {
	Skip(nick, id string)
	Fail(nick, id string)
	OK(nick, rel string)
	Err(nick, id string, err error)
}

// Recorder persists per-player outcomes, e.g. to the run ledger.
type Recorder interface {
	RecordOutcome(ctx context.Context, outcome Outcome) error
}

var (
	_ Resolver   = (*resolve.Resolver)(nil)
	_ Downloader = (*fetch.Client)(nil)
)

// Status is the result class of one player.
type Status string

const (
	// StatusOK means an image was downloaded and stored.
	StatusOK Status = "ok"
	// StatusFail means no image could be resolved.
	StatusFail Status = "fail"
	// StatusSkip means the row had no id or nick.
	StatusSkip Status = "skip"
	// StatusError means resolution, download or storage failed.
	StatusError Status = "error"
)

// Outcome describes what happened to one player during a run.
type Outcome struct {
	PlayerID  string
	Nick      string
	Status    Status
	Tier      resolve.Tier
	Title     string
	SourceURL string
	Photo     string
	Message   string
}

// Summary counts a run's results. Skipped rows count as failures.
type Summary struct {
	Total int
	OK    int
	Fail  int
}

// Options configures a Syncer.
type Options struct {
	// Root is the directory photo paths are made relative to.
	Root string
	// AssetDir receives the image files.
	AssetDir  string
	Delay     time.Duration
	FailDelay time.Duration
	Verbose   bool
}

// Syncer runs the fetch-and-persist loop over a catalog.
type Syncer struct {
	resolver   Resolver
	downloader Downloader
	reporter   Reporter
	recorder   Recorder
	opts       Options
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewSyncer creates a Syncer.
func NewSyncer(r Resolver, d Downloader, rep Reporter, opts Options) *Syncer {
	return &Syncer{
		resolver:   r,
		downloader: d,
		reporter:   rep,
		opts:       opts,
		sleep:      sleepContext,
	}
}

// WithRecorder attaches an outcome recorder. Recorder failures are logged, never returned.
func (s *Syncer) WithRecorder(rec Recorder) *Syncer {
	s.recorder = rec
	return s
}

// Run processes players in order, updating Photo on each success. Per-player problems
// are counted and reported; only context cancellation stops the loop early.
func (s *Syncer) Run(ctx context.Context, players []*types.Player) (Summary, error) {
	summary := Summary{Total: len(players)}

	if err := os.MkdirAll(s.opts.AssetDir, 0755); err != nil {
		return summary, fmt.Errorf("failed to create asset directory: %w", err)
	}

	for _, p := range players {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if p == nil || p.ID == "" || p.Nick == "" {
			summary.Fail++
			var id, nick string
			if p != nil {
				id, nick = p.ID, p.Nick
			}
			s.reporter.Skip(nick, id)
			s.record(ctx, Outcome{PlayerID: id, Nick: nick, Status: StatusSkip, Message: "invalid row"})
			continue
		}

		outcome, err := s.sync(ctx, p)
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		delay := s.opts.Delay
		switch {
		case errors.Is(err, resolve.ErrNotFound):
			summary.Fail++
			s.reporter.Fail(p.Nick, p.ID)
			outcome.Status, outcome.Message = StatusFail, err.Error()
			delay = s.opts.FailDelay
		case err != nil:
			summary.Fail++
			s.reporter.Err(p.Nick, p.ID, err)
			outcome.Status, outcome.Message = StatusError, err.Error()
		default:
			summary.OK++
			s.reporter.OK(p.Nick, p.Photo)
			outcome.Status = StatusOK
		}
		s.record(ctx, outcome)

		if err := s.sleep(ctx, delay); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// sync resolves, downloads and stores one player's image, then updates p.Photo.
func (s *Syncer) sync(ctx context.Context, p *types.Player) (Outcome, error) {
	outcome := Outcome{PlayerID: p.ID, Nick: p.Nick}

	result, err := s.resolver.Resolve(ctx, p.ID, p.Nick)
	if err != nil {
		return outcome, err
	}
	outcome.Tier, outcome.Title, outcome.SourceURL = result.Tier, result.Title, result.URL

	body, header, err := s.downloader.Bytes(ctx, result.URL)
	if err != nil {
		return outcome, err
	}
	ctype, err := ContentType(header, body)
	if err != nil {
		return outcome, err
	}

	rel, err := s.store(p.ID, ExtFrom(ctype, result.URL), body)
	if err != nil {
		return outcome, err
	}
	p.Photo = rel
	outcome.Photo = rel

	if s.opts.Verbose {
		log.Printf("[PHOTOS] %s: %d bytes (%s) via %s %q", p.ID, len(body), ctype, result.Tier, result.Title)
	}
	return outcome, nil
}

// store removes the player's other known extensions, writes <id><ext> and returns the
// slash-separated path relative to the root. A failed removal leaves nothing new on disk.
func (s *Syncer) store(id, ext string, body []byte) (string, error) {
	for _, other := range knownExtensions {
		if other == ext {
			continue
		}
		stale := filepath.Join(s.opts.AssetDir, id+other)
		if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to remove stale image %s: %w", stale, err)
		}
	}

	out := filepath.Join(s.opts.AssetDir, id+ext)
	if err := os.WriteFile(out, body, 0644); err != nil {
		_ = os.Remove(out)
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return RelativePath(s.opts.Root, out), nil
}

func (s *Syncer) record(ctx context.Context, outcome Outcome) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordOutcome(ctx, outcome); err != nil {
		log.Printf("[LEDGER] failed to record outcome for %q: %v", outcome.PlayerID, err)
	}
}

// RelativePath returns path relative to root with forward slashes. Paths outside root
// are returned slash-separated but otherwise unchanged.
func RelativePath(root, path string) string {
	if root != "" {
		absRoot, err1 := filepath.Abs(root)
		absPath, err2 := filepath.Abs(path)
		if err1 == nil && err2 == nil {
			if rel, err := filepath.Rel(absRoot, absPath); err == nil && rel != ".." && !hasParentPrefix(rel) {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(path)
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alnah/go-md2wechat/internal/dom"
	"golang.org/x/net/html"
)

// Default settle timing.
const (
	DefaultSettleInterval   = 16 * time.Millisecond
	DefaultSettleMinObserve = 48 * time.Millisecond
	DefaultSettleTimeout    = 500 * time.Millisecond
)

// ErrInvalidTiming indicates a negative settle duration.
var ErrInvalidTiming = errors.New("invalid settle timing")

// SettleOptions controls DOM settle polling.
type SettleOptions struct {
	Interval   time.Duration // delay between polls
	MinObserve time.Duration // observation window when nothing is pending yet; 0 disables it
	Timeout    time.Duration // overall bound; reaching it is not an error
}

// DefaultSettleOptions returns 16ms/48ms/500ms.
func DefaultSettleOptions() SettleOptions {
	return SettleOptions{
		Interval:   DefaultSettleInterval,
		MinObserve: DefaultSettleMinObserve,
		Timeout:    DefaultSettleTimeout,
	}
}

// Validate rejects negative durations.
func (o SettleOptions) Validate() error {
	if o.Interval < 0 {
		return fmt.Errorf("%w: interval %v", ErrInvalidTiming, o.Interval)
	}
	if o.MinObserve < 0 {
		return fmt.Errorf("%w: minimum observation %v", ErrInvalidTiming, o.MinObserve)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("%w: timeout %v", ErrInvalidTiming, o.Timeout)
	}
	return nil
}

// withDefaults fills zero Interval and Timeout. A zero MinObserve stays zero.
func (o SettleOptions) withDefaults() SettleOptions {
	if o.Interval == 0 {
		o.Interval = DefaultSettleInterval
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultSettleTimeout
	}
	return o
}

// SettleReport describes how a wait ended.
type SettleReport struct {
	Settled    bool          // false when the timeout was reached with embeds still pending
	Unresolved int           // unresolved embeds at the last poll
	Polls      int           // number of polls performed
	Elapsed    time.Duration // time spent waiting
}

// isUnresolvedEmbed reports whether n is an image-embed container with no <img> yet.
func isUnresolvedEmbed(n *html.Node) bool {
	if !dom.IsElement(n, "span", "div") || !dom.HasClass(n, "image-embed") {
		return false
	}
	return !dom.HasDescendant(n, func(c *html.Node) bool { return dom.IsElement(c, "img") })
}

// CountUnresolvedEmbeds counts image-embed placeholders lacking an image child.
func CountUnresolvedEmbeds(root *html.Node) int {
	return len(dom.FindAll(root, isUnresolvedEmbed))
}

func countSubtree(target *dom.Subtree) int {
	var n int
	target.View(func(root *html.Node) {
		n = CountUnresolvedEmbeds(root)
	})
	return n
}

// WaitForSettle polls target until no unresolved embed remains.
//
// With nothing pending and no observation window it returns at once. With
// nothing pending and a window, it polls until the window elapses and returns
// unless an unresolved embed shows up. Otherwise it polls until two
// consecutive polls see zero unresolved embeds, or until the timeout.
// Reaching the timeout is reported in SettleReport, never as an error; only
// context cancellation is returned.
func WaitForSettle(ctx context.Context, target *dom.Subtree, opts SettleOptions) (SettleReport, error) {
	opts = opts.withDefaults()
	start := time.Now()
	report := SettleReport{}

	poll := func() int {
		report.Polls++
		report.Unresolved = countSubtree(target)
		return report.Unresolved
	}
	finish := func(settled bool) (SettleReport, error) {
		report.Settled = settled
		report.Elapsed = time.Since(start)
		return report, nil
	}

	if poll() == 0 {
		if opts.MinObserve <= 0 {
			return finish(true)
		}
		appeared := false
		for time.Since(start) < opts.MinObserve {
			if err := sleep(ctx, opts.Interval); err != nil {
				report.Elapsed = time.Since(start)
				return report, err
			}
			if poll() > 0 {
				appeared = true
				break
			}
		}
		if !appeared {
			return finish(true)
		}
	}

	stable := 0
	for time.Since(start) < opts.Timeout {
		if poll() == 0 {
			stable++
			if stable >= 2 {
				return finish(true)
			}
		} else {
			stable = 0
		}
		if err := sleep(ctx, opts.Interval); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}
	}

	return finish(poll() == 0 && stable >= 1)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

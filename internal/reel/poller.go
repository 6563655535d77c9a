package reel

import (
	"context"
	"fmt"
	"time"

	"scriptreel/internal/domain"
)

// DefaultPollInterval is the wait before each status check.
const DefaultPollInterval = 10 * time.Second

// ProgressMessages rotate while a generation is pending.
var ProgressMessages = []string{
	"The AI director is reviewing your script...",
	"Setting up the virtual production studio...",
	"This can take a few minutes, please be patient...",
	"Rendering initial frames...",
	"Adding special effects and details...",
	"Finalizing the video composition...",
	"Almost there, preparing for final output...",
}

// StatusChecker refreshes an operation handle.
type StatusChecker interface {
	GetVideoStatus(ctx context.Context, op domain.Operation) (domain.Operation, error)
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ProgressMessage renders the message shown before status check n (0-based).
func ProgressMessage(n int) string {
	return fmt.Sprintf("%s (Status check %d)", ProgressMessages[n%len(ProgressMessages)], n+1)
}

// PollError aborts a wait after a failed status check. Err is always a
// *domain.UpstreamError wrapping the transport or decode failure.
type PollError struct {
	Check int
	Err   error
}

func (e *PollError) Error() string {
	return "Failed to get video generation status. Please try again later."
}

func (e *PollError) Unwrap() error { return e.Err }

// Poller waits for an operation to finish. There is no retry cap: the loop
// ends when the operation is done, a check fails, or ctx is cancelled.
type Poller struct {
	Checker  StatusChecker
	Interval time.Duration
	Sleep    Sleeper
	Progress func(string)
}

// Wait polls op until it reports done. Exactly one status query is in flight
// at any time and each query carries the handle returned by the previous one.
// Cancelling ctx abandons the wait; the provider job keeps running.
func (p *Poller) Wait(ctx context.Context, op domain.Operation) (domain.Operation, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	current := op
	for n := 0; !current.Done(); n++ {
		if p.Progress != nil {
			p.Progress(ProgressMessage(n))
		}
		if err := sleep(ctx, interval); err != nil {
			return current, err
		}
		next, err := p.Checker.GetVideoStatus(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return current, ctx.Err()
			}
			return current, &PollError{
				Check: n + 1,
				Err:   &domain.UpstreamError{Op: "get video generation status", Err: err},
			}
		}
		current = next
	}
	return current, nil
}

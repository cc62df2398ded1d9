package monitor

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/jobwatch/pkg/remote"
)

// ErrWaitTimeout is returned by Wait when the budget elapses without a
// terminal state being observed. It is a marker, not a hard failure.
var ErrWaitTimeout = errors.New("no terminal state observed within wait budget")

// MessageHandler receives each non-empty batch of progress messages, in
// arrival order.
type MessageHandler func(messages []remote.ProgressMessage)

// Wait polls until the job reaches a terminal state or the wall-clock budget
// elapses. A budget of zero or less waits indefinitely. If handler is
// non-nil it is invoked once per non-empty message batch.
//
// Wait returns the terminal state on success. On timeout it returns
// StateUnknown with ErrWaitTimeout. If ctx is cancelled mid-wait, ctx's
// error is returned instead so interruption is never reported as a timeout.
// No other errors escape: transient probe and message failures are logged
// and absorbed into the backoff schedule.
func (j *Job) Wait(ctx context.Context, budget time.Duration, handler MessageHandler) (remote.JobState, error) {
	messagesSpec := j.cfg.messagesSpec()
	if budget > 0 {
		messagesSpec.MaxCumulative = budget
	}
	cursor := messagesSpec.Cursor(j.cfg.Clock)

	// Wall-clock time from the very first request is the authority for the
	// overall budget; any one cursor only knows about its own lifetime.
	start := j.cfg.Clock.Now()

	var watermark time.Time
	state := remote.StateUnknown
	for {
		// Fetch status before messages so that, once the job finishes, the
		// final iteration still drains the trailing messages.
		state = j.stateWithRetries(ctx, j.cfg.probeSpec().Cursor(j.cfg.Clock))
		hadError := state == remote.StateUnknown

		if handler != nil && !hadError {
			batch, err := j.fetchMessages(ctx, watermark)
			if err != nil {
				hadError = true
				j.log.Warn("there were problems getting current job messages", zap.Error(err))
			} else if len(batch) > 0 {
				watermark = batch[len(batch)-1].Time
				handler(batch)
			}
		}

		if !hadError {
			if state.IsTerminal() {
				return state, nil
			}

			if budget > 0 {
				// Recompute the remaining budget from elapsed wall-clock
				// time every iteration and resize the schedule to it.
				remaining := budget - j.cfg.Clock.Now().Sub(start)
				if remaining <= 0 {
					break
				}
				spec := messagesSpec
				spec.MaxCumulative = remaining
				cursor = spec.Cursor(j.cfg.Clock)
			} else {
				cursor.Reset()
			}
		}

		d, ok := cursor.Next()
		if !ok {
			break
		}
		if err := j.cfg.Sleep(ctx, d); err != nil {
			return remote.StateUnknown, err
		}
	}

	j.log.Warn("no terminal state was returned", zap.String("last_state", state.String()))
	return remote.StateUnknown, ErrWaitTimeout
}

package email

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ErlanBelekov/authmail/internal/domain"
	"github.com/ErlanBelekov/authmail/internal/metrics"
)

const DefaultSendTimeout = 30 * time.Second

// Dispatcher hands messages to a Sender in the background. Callers never
// learn the delivery outcome; failures are logged and counted.
type Dispatcher struct {
	sender  Sender
	from    string
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher uses from for messages that leave Mail.From empty.
func NewDispatcher(sender Sender, from string, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	return &Dispatcher{
		sender:  sender,
		from:    from,
		timeout: timeout,
		logger:  logger.With("component", "mail_dispatcher"),
	}
}

// Dispatch returns immediately. The send outlives ctx's cancellation but
// keeps its values (request id) for logging. Messages that arrive after Wait
// has been called are dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, kind string, m domain.Mail) {
	if m.From == "" {
		m.From = d.from
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		metrics.MailDispatchedTotal.WithLabelValues(kind, "dropped").Inc()
		d.logger.WarnContext(ctx, "dispatcher closed, email dropped", "kind", kind, "to", m.To)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	metrics.MailInFlight.Inc()
	go func() {
		defer d.wg.Done()
		defer metrics.MailInFlight.Dec()

		sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		start := time.Now()
		err := d.sender.Send(sendCtx, m)
		metrics.MailSendDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.MailDispatchedTotal.WithLabelValues(kind, "failed").Inc()
			d.logger.ErrorContext(ctx, "email delivery failed", "kind", kind, "to", m.To, "error", err)
			return
		}
		metrics.MailDispatchedTotal.WithLabelValues(kind, "sent").Inc()
		d.logger.InfoContext(ctx, "email sent", "kind", kind, "to", m.To)
	}()
}

// Wait stops accepting new messages, then blocks until every dispatched
// message has finished or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

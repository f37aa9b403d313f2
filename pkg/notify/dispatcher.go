package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/geo"
)

// ErrNotConfigured is returned before any send is attempted when the alert
// channel has no sender or an empty roster.
var ErrNotConfigured = errors.New("alert channel not configured")

// DefaultSendTimeout bounds a single send to one recipient.
const DefaultSendTimeout = 15 * time.Second

// Sender delivers one message to one recipient. Implementations are external
// providers (SMS in production, fakes in tests).
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}

// Outcome is the result of one delivery attempt.
type Outcome struct {
	Recipient string `json:"recipient"`
	Ok        bool   `json:"ok"`
	Detail    string `json:"detail,omitempty"`
}

// Result aggregates the delivery attempts of one alert.
type Result struct {
	Outcomes  []Outcome `json:"outcomes"`
	Delivered int       `json:"delivered"`
	Total     int       `json:"total"`
}

// Complete reports whether every recipient was reached.
func (r Result) Complete() bool { return r.Delivered == r.Total }

// Partial reports whether some but not all recipients were reached.
func (r Result) Partial() bool { return r.Delivered > 0 && r.Delivered < r.Total }

// Failed reports whether no recipient was reached.
func (r Result) Failed() bool { return r.Delivered == 0 }

// Dispatcher sends an SOS alert to a fixed roster of trusted contacts.
// Each recipient gets exactly one attempt; failures are collected, never
// retried, and never abort the remaining sends.
type Dispatcher struct {
	sender  Sender
	roster  []string
	timeout time.Duration
	log     *slog.Logger
}

// NewDispatcher builds a dispatcher for the given channel and roster.
// A zero timeout falls back to DefaultSendTimeout.
func NewDispatcher(sender Sender, roster []string, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{sender: sender, roster: roster, timeout: timeout, log: log}
}

// SendAlert builds the alert message for the given location and attempts
// delivery to every roster entry concurrently, waiting for all outcomes
// before returning. The only error it returns is ErrNotConfigured; delivery
// failures are reported through the Result.
func (d *Dispatcher) SendAlert(ctx context.Context, at geo.Point) (Result, error) {
	if d.sender == nil || len(d.roster) == 0 {
		return Result{}, ErrNotConfigured
	}

	text := alertText(at)
	outcomes := make([]Outcome, len(d.roster))

	var wg sync.WaitGroup
	for i, recipient := range d.roster {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()
			if err := d.sender.Send(sendCtx, recipient, text); err != nil {
				d.log.Warn("alert delivery failed", "recipient", recipient, "err", err)
				outcomes[i] = Outcome{Recipient: recipient, Detail: err.Error()}
				return
			}
			outcomes[i] = Outcome{Recipient: recipient, Ok: true}
		}(i, recipient)
	}
	wg.Wait()

	res := Result{Outcomes: outcomes, Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Ok {
			res.Delivered++
		}
	}
	d.log.Info("alert dispatched", "delivered", res.Delivered, "total", res.Total)
	return res, nil
}

func alertText(at geo.Point) string {
	return fmt.Sprintf("EMERGENCY! I need help. My current location: %s", at.MapURL())
}

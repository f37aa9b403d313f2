package coordinator

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Shweta-Mathanker/womanSafetyDTI/models"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/events"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/geo"
	"github.com/Shweta-Mathanker/womanSafetyDTI/pkg/notify"
)

// Publisher fans a serialized event out to live subscribers.
type Publisher interface {
	Broadcast(payload []byte)
}

// Alerter dispatches an SOS alert to the trusted-contact roster.
type Alerter interface {
	SendAlert(ctx context.Context, at geo.Point) (notify.Result, error)
}

// Coordinator glues confirmed store mutations to the event broker and SOS
// requests to the alert dispatcher. It holds no state of its own; callers
// must invoke the marker hooks only after the store confirmed the write.
type Coordinator struct {
	publisher Publisher
	alerter   Alerter
	log       *slog.Logger
}

func New(publisher Publisher, alerter Alerter, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{publisher: publisher, alerter: alerter, log: log}
}

// MarkerCreated publishes a new-marker event for a freshly stored marker.
func (c *Coordinator) MarkerCreated(m models.Marker) {
	c.publish(events.MarkerCreated(m))
}

// MarkerDeleted publishes a delete-marker event carrying the coordinates the
// removal matched on.
func (c *Coordinator) MarkerDeleted(at geo.Point) {
	c.publish(events.MarkerDeleted(at))
}

// TriggerSOS delegates to the dispatcher and returns its result unchanged.
func (c *Coordinator) TriggerSOS(ctx context.Context, at geo.Point) (notify.Result, error) {
	return c.alerter.SendAlert(ctx, at)
}

func (c *Coordinator) publish(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.log.Error("failed to marshal change event", "err", err)
		return
	}
	c.publisher.Broadcast(payload)
}

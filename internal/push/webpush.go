// Package push informs the relay that a user's set of registered device
// endpoints changed. The relay transport itself is an external collaborator;
// this package only defines the boundary and a default in-process publisher.
package push

import (
	"context"
	"log/slog"

	"github.com/vimaec/nextcloud-notifications/internal/observability/metrics"
)

const (
	ActionAdd    = "add"
	ActionDelete = "delete"
)

type Content struct {
	Action string `json:"action"`
}

type Publisher interface {
	Publish(ctx context.Context, userID string, content Content) error
}

// WebPush wraps a Publisher with the two registration-change signals the
// endpoint emits.
type WebPush struct {
	publisher Publisher
}

func NewWebPush(p Publisher) *WebPush { return &WebPush{publisher: p} }

func (w *WebPush) PushNotify(ctx context.Context, userID string) error {
	return w.publish(ctx, userID, Content{Action: ActionAdd})
}

func (w *WebPush) PushDelete(ctx context.Context, userID string) error {
	return w.publish(ctx, userID, Content{Action: ActionDelete})
}

func (w *WebPush) publish(ctx context.Context, userID string, content Content) error {
	if err := w.publisher.Publish(ctx, userID, content); err != nil {
		return err
	}
	metrics.PushSignalsTotal.WithLabelValues(content.Action).Inc()
	return nil
}

// LogPublisher records registration-change signals in the service log. It
// stands in until a relay transport is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, userID string, content Content) error {
	slog.Info("push registration change", "user_id", userID, "action", content.Action)
	return nil
}

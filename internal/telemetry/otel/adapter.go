package otel

import (
	"context"
	"encoding/json"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"taskhub/internal/events"
)

// recordEmitter is the part of otellog.Logger the event emitter needs.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an events.Emitter that sends domain events as OTel log records via the
// given LoggerProvider. If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) events.Emitter {
	if provider == nil {
		return noopEmitter{}
	}
	return NewEventEmitterWithLogger(provider.Logger("taskhub.events"))
}

// NewEventEmitterWithLogger returns an events.Emitter writing to logger.
func NewEventEmitterWithLogger(logger recordEmitter) events.Emitter {
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *events.Event) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the event to an OTel log record: event data becomes the JSON body and the
// envelope fields become attributes.
func (e *otelEmitter) Emit(ctx context.Context, event *events.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetEventName(event.Type)
	if len(event.Data) > 0 {
		body, err := json.Marshal(event.Data)
		if err != nil {
			return err
		}
		rec.SetBody(otellog.BytesValue(body))
	}
	attrs := []struct{ key, value string }{
		{"event_id", event.ID},
		{"event_type", event.Type},
		{"workspace_id", event.WorkspaceID},
		{"actor_id", event.ActorID},
		{"resource_id", event.ResourceID},
	}
	for _, a := range attrs {
		if a.value != "" {
			rec.AddAttributes(otellog.String(a.key, a.value))
		}
	}
	e.logger.Emit(ctx, rec)
	return nil
}

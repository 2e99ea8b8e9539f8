package service

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/unclebandit/customer-service/internal/model"
)

// Worker handles change notifications one at a time. Process runs inside the
// queue subscription, so a delivery is only acknowledged once Handle returns.
type Worker struct {
	Handle func(model.CustomerEvent) error
	Logger *slog.Logger
}

// Constructor
func NewWorker(handle func(model.CustomerEvent) error, logger *slog.Logger) *Worker {
	return &Worker{
		Handle: handle,
		Logger: logger,
	}
}

// Process hands ev to Handle and reports its error back to the queue.
func (w *Worker) Process(ev model.CustomerEvent) error {
	if err := w.Handle(ev); err != nil {
		w.Logger.Error("failed to handle customer event", "type", ev.Type, "id", ev.Customer.ID, "err", err)
		return err
	}
	return nil
}

// LogEvent is the default handler: one structured log line per change.
func LogEvent(logger *slog.Logger) func(model.CustomerEvent) error {
	return func(ev model.CustomerEvent) error {
		logger.Info("customer changed",
			"type", ev.Type,
			"id", ev.Customer.ID,
			"name", ev.Customer.Name,
			"occurred_at", ev.OccurredAt,
		)
		return nil
	}
}

// DecodeEvent accepts what either queue implementation delivers: the event
// itself from the in-memory queue, or its JSON body from RabbitMQ.
func DecodeEvent(payload any) (model.CustomerEvent, error) {
	var raw []byte
	switch v := payload.(type) {
	case model.CustomerEvent:
		return v, nil
	case *model.CustomerEvent:
		return *v, nil
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		return model.CustomerEvent{}, fmt.Errorf("unexpected event payload type %T", payload)
	}

	var ev model.CustomerEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return model.CustomerEvent{}, fmt.Errorf("decode customer event: %w", err)
	}
	if ev.Type == "" {
		return model.CustomerEvent{}, fmt.Errorf("customer event without type")
	}
	return ev, nil
}

// Subscriber adapts an event handler to a queue subscription. Malformed
// payloads are dropped; retrying them cannot help.
func Subscriber(handle func(model.CustomerEvent) error, logger *slog.Logger) func(payload any) error {
	return func(payload any) error {
		ev, err := DecodeEvent(payload)
		if err != nil {
			logger.Warn("dropping malformed customer event", "err", err)
			return nil
		}
		return handle(ev)
	}
}

package sinks

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/wardrive-core/internal/survey"
)

// Publisher is the subset of the MQTT client the sink needs.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

var _ Publisher = (*mqtt.Client)(nil)

// ConversionEvent is the payload published for every finished conversion.
type ConversionEvent struct {
	RunID     string `json:"run_id"`
	Source    string `json:"source"`
	Output    string `json:"output,omitempty"`
	Format    string `json:"format"`
	Status    string `json:"status"`
	Records   int    `json:"records"`
	Attempted int    `json:"attempted"`
	Failed    int    `json:"failed"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// MQTTSink announces conversions on wardrive/conversion/{format} and keeps
// the latest one retained on wardrive/system/last_run.
type MQTTSink struct {
	pub Publisher
}

var _ survey.Sink = (*MQTTSink)(nil)

// NewMQTTSink creates a sink publishing through pub.
func NewMQTTSink(pub Publisher) *MQTTSink {
	return &MQTTSink{pub: pub}
}

// Name implements survey.Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// Handle publishes the conversion event, then retains it as the last run.
func (s *MQTTSink) Handle(_ context.Context, res *survey.Result) error {
	event := EventFromResult(res)
	if err := s.pub.PublishJSON(mqtt.Topics{}.Conversion(event.Format), event, false); err != nil {
		return fmt.Errorf("publishing conversion event: %w", err)
	}
	if err := s.pub.PublishJSON(mqtt.Topics{}.LastRun(), event, true); err != nil {
		return fmt.Errorf("publishing last run: %w", err)
	}
	return nil
}

// EventFromResult builds the event payload for res.
func EventFromResult(res *survey.Result) ConversionEvent {
	return ConversionEvent{
		RunID:     res.RunID,
		Source:    res.Source,
		Output:    res.Output,
		Format:    string(res.Format),
		Status:    res.Status,
		Records:   len(res.Records),
		Attempted: res.Stats.Attempted,
		Failed:    res.Stats.Failed,
		Error:     res.Error,
		Timestamp: res.FinishedAt.UTC().Format(time.RFC3339),
	}
}

package logger

import (
	"context"
	"testing"
	"time"
)

type capturePublisher struct {
	ch chan []AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	logs, _ := payload.([]AggregatedLogEntry)
	p.ch <- logs
	return nil
}

func TestCollectorAggregatesRepeatedLogs(t *testing.T) {
	pub := &capturePublisher{ch: make(chan []AggregatedLogEntry, 1)}
	c := NewLogCollector(&CollectionConfig{
		TimeInterval:   time.Hour, // flush only on Close
		CountThreshold: 100,
		Topic:          "logs",
		Publisher:      pub,
	})

	fields := map[string]interface{}{"ticker": "SPY"}
	c.AddLog("error", "fetch failed", fields, "pipeline.go:1")
	c.AddLog("error", "fetch failed", fields, "pipeline.go:1")
	c.Close()

	select {
	case logs := <-pub.ch:
		if len(logs) != 1 {
			t.Fatalf("aggregated entries = %d, want 1", len(logs))
		}
		if logs[0].Count != 2 {
			t.Errorf("count = %d, want 2", logs[0].Count)
		}
		if logs[0].Message != "fetch failed" {
			t.Errorf("message = %q, want %q", logs[0].Message, "fetch failed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no aggregated logs published")
	}
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &capturePublisher{ch: make(chan []AggregatedLogEntry, 1)}
	l, err := New(&Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatal(err)
	}
	l.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "logs",
		Publisher:      pub,
	})

	l.Error("archive store failed", String("ticker", "SPY"))
	l.RemoveCollector()

	select {
	case logs := <-pub.ch:
		if len(logs) != 1 {
			t.Fatalf("aggregated entries = %d, want 1", len(logs))
		}
		if logs[0].Message != "archive store failed" {
			t.Errorf("message = %q, want %q", logs[0].Message, "archive store failed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no aggregated logs published")
	}
}

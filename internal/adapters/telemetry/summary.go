package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/fans/internal/core/domain"
)

// Stats counts what a run did, as seen through its spans.
type Stats struct {
	Resolved  int
	TopLevel  int
	Nested    int
	Covered   int
	Skipped   int
	LockHits  int
	Installed int
	Failed    int
}

// Summary implements sdktrace.SpanProcessor and tallies resolve and install
// spans as they end. Resolve spans carry a "placement" attribute and install
// spans carry a "path" attribute. Other spans are ignored.
type Summary struct {
	mu    sync.Mutex
	stats Stats
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{}
}

// OnStart does nothing.
func (s *Summary) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (s *Summary) OnEnd(span sdktrace.ReadOnlySpan) {
	var (
		placement string
		lockHit   bool
		install   bool
	)
	for _, kv := range span.Attributes() {
		switch kv.Key {
		case "placement":
			placement = kv.Value.AsString()
		case "lock_hit":
			lockHit = kv.Value.Type() == attribute.BOOL && kv.Value.AsBool()
		case "path":
			install = true
		}
	}
	failed := span.Status().Code == codes.Error

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case placement != "":
		s.stats.Resolved++
		if lockHit {
			s.stats.LockHits++
		}
		switch domain.Placement(placement) {
		case domain.PlacementTopLevel:
			s.stats.TopLevel++
		case domain.PlacementNested:
			s.stats.Nested++
		case domain.PlacementCovered:
			s.stats.Covered++
		case domain.PlacementSkipped:
			s.stats.Skipped++
		}
	case install && failed:
		s.stats.Failed++
	case install:
		s.stats.Installed++
	}
}

// Snapshot returns the counts gathered so far.
func (s *Summary) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ForceFlush does nothing.
func (s *Summary) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (s *Summary) Shutdown(context.Context) error {
	return nil
}

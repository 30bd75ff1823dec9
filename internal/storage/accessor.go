package storage

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/julianstephens/deeply/internal/logger"
	"github.com/julianstephens/deeply/internal/telemetry"
)

// Accessor serializes load/mutate/save cycles against a Provider. Every call
// reads the document fresh; nothing is cached between calls.
type Accessor struct {
	mu       sync.Mutex
	provider Provider
}

func NewAccessor(p Provider) *Accessor {
	return &Accessor{provider: p}
}

func (a *Accessor) Provider() Provider {
	return a.provider
}

// View loads the document and passes it to fn. Changes made by fn are discarded.
func (a *Accessor) View(ctx context.Context, fn func(doc *Document) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update loads the document, passes it to fn and saves it when fn returns nil.
func (a *Accessor) Update(ctx context.Context, fn func(doc *Document) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc, err := a.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return a.save(ctx, doc)
}

func (a *Accessor) load(ctx context.Context) (*Document, error) {
	ctx, span := a.start(ctx, "storage.load")
	defer span.End()

	doc, err := a.provider.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		logger.Error("failed to load document", "storage", a.provider.Kind(), "error", err)
		return nil, err
	}
	doc.normalize()

	span.SetAttributes(
		attribute.Int("deeply.todos", len(doc.Todos)),
		attribute.Int("deeply.sessions", len(doc.Sessions)),
	)
	logger.Debug("loaded document", "storage", a.provider.Kind(), "todos", len(doc.Todos), "sessions", len(doc.Sessions))
	return doc, nil
}

func (a *Accessor) save(ctx context.Context, doc *Document) error {
	ctx, span := a.start(ctx, "storage.save")
	defer span.End()

	if err := a.provider.Save(ctx, doc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		logger.Error("failed to save document", "storage", a.provider.Kind(), "error", err)
		return err
	}

	logger.Debug("saved document", "storage", a.provider.Kind(), "todos", len(doc.Todos), "sessions", len(doc.Sessions))
	return nil
}

func (a *Accessor) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name,
		trace.WithAttributes(attribute.String("deeply.storage", string(a.provider.Kind()))),
	)
}

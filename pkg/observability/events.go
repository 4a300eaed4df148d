package observability

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventParse  EventType = "parse"
	EventRender EventType = "render"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      EventType     `json:"type"`
	Template  string        `json:"template"` // Name of the template, empty for inline sources.
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// ParseEvent is fired after a template source was parsed.
type ParseEvent struct {
	EventBase
	Cached bool `json:"cached"`
}

// RenderEvent is fired after a render finished, successfully or not.
type RenderEvent struct {
	EventBase
	Bytes int `json:"bytes"`
}

// Outcome is "ok" or "error", depending on Err.
func (e EventBase) Outcome() string {
	if e.Err != nil {
		return "error"
	}
	return "ok"
}

// Hooks defines callbacks for engine observability. Nil callbacks are skipped.
type Hooks struct {
	OnParse  func(context.Context, *ParseEvent)
	OnRender func(context.Context, *RenderEvent)
}

// Parse invokes OnParse if set.
func (h Hooks) Parse(ctx context.Context, e *ParseEvent) {
	if h.OnParse != nil {
		h.OnParse(ctx, e)
	}
}

// Render invokes OnRender if set.
func (h Hooks) Render(ctx context.Context, e *RenderEvent) {
	if h.OnRender != nil {
		h.OnRender(ctx, e)
	}
}

// Chain returns Hooks that call each of hooks in order.
func Chain(hooks ...Hooks) Hooks {
	return Hooks{
		OnParse: func(ctx context.Context, e *ParseEvent) {
			for _, h := range hooks {
				h.Parse(ctx, e)
			}
		},
		OnRender: func(ctx context.Context, e *RenderEvent) {
			for _, h := range hooks {
				h.Render(ctx, e)
			}
		},
	}
}

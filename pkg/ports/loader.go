package ports

import (
	"context"
	"errors"
)

// ErrTemplateNotFound is returned by a TemplateSource when the name is unknown.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateSource defines how the engine retrieves template sources by name.
// This allows the storage layer (files, Redis, memory) to be decoupled.
type TemplateSource interface {
	// Load returns the source text of the named template.
	// It returns an error wrapping ErrTemplateNotFound if the name is unknown.
	Load(ctx context.Context, name string) (string, error)

	// List returns the names of all available templates, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for watch mode in the CLI.
type Watchable interface {
	// Watch returns a channel that is signaled when any template changes.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}

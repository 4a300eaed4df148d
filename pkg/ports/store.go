package ports

import "context"

// TemplateStore is a TemplateSource that templates can be published to.
type TemplateStore interface {
	TemplateSource

	// Save stores source under name, replacing any previous version.
	Save(ctx context.Context, name, source string) error

	// Delete removes the named template. Deleting an unknown name is not an error.
	Delete(ctx context.Context, name string) error
}

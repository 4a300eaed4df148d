/*
Package ports defines the driven ports (interfaces) for the Tinct engine.

These interfaces decouple template rendering from where templates live,
allowing the engine to work with files on disk, an in-memory set or a shared
Redis instance.

# Key Interfaces

  - TemplateSource: Resolves a template name to its source text.
  - TemplateStore: A TemplateSource that can also publish and remove templates.
  - Watchable: A source that can signal when its templates change.
*/
package ports

package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/natefinch/atomic"

	"github.com/aretw0/tinct/pkg/ports"
)

// Ext is the extension assumed for template names that carry none.
const Ext = ".tmpl"

// Store implements ports.TemplateStore over a directory.
// Template names are slash-separated paths relative to the directory; the
// .tmpl extension may be omitted.
type Store struct {
	BasePath string
	logger   *slog.Logger
}

type Option func(*Store)

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a new Store rooted at basePath.
// If basePath is empty, it defaults to "templates".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = "templates"
	}
	s := &Store{BasePath: basePath, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// candidates returns the file names a template name may refer to, in lookup order.
func candidates(name string) ([]string, error) {
	if !fs.ValidPath(name) || name == "." {
		return nil, fmt.Errorf("invalid template name %q", name)
	}
	if path.Ext(name) == Ext {
		return []string{name}, nil
	}
	return []string{name, name + Ext}, nil
}

// Load reads a template from disk.
func (s *Store) Load(ctx context.Context, name string) (string, error) {
	files, err := candidates(name)
	if err != nil {
		return "", err
	}

	fsys := os.DirFS(s.BasePath)
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !isDir(fsys, f) {
			return "", fmt.Errorf("failed to read template %q: %w", name, err)
		}
	}
	return "", fmt.Errorf("%w: %s", ports.ErrTemplateNotFound, name)
}

func isDir(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && info.IsDir()
}

// List returns all template names below the base directory. Hidden files and
// directories are skipped.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	err := fs.WalkDir(os.DirFS(s.BasePath), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		names = append(names, strings.TrimSuffix(p, Ext))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}

// Save writes a template atomically. Names without an extension are stored
// with the .tmpl extension.
func (s *Store) Save(ctx context.Context, name, source string) error {
	if _, err := candidates(name); err != nil {
		return err
	}
	file := name
	if path.Ext(name) == "" {
		file += Ext
	}
	dest := filepath.Join(s.BasePath, filepath.FromSlash(file))

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to ensure template directory: %w", err)
	}
	if err := atomic.WriteFile(dest, strings.NewReader(source)); err != nil {
		return fmt.Errorf("failed to write template %q: %w", name, err)
	}
	return nil
}

// Delete removes every file the name may refer to.
func (s *Store) Delete(ctx context.Context, name string) error {
	files, err := candidates(name)
	if err != nil {
		return err
	}
	for _, f := range files {
		err := os.Remove(filepath.Join(s.BasePath, filepath.FromSlash(f)))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete template %q: %w", name, err)
		}
	}
	return nil
}

// Watch signals on the returned channel whenever a file below the base
// directory changes. Bursts of events collapse into a single signal.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(s.BasePath, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.BasePath, err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = watcher.Add(ev.Name)
					}
				}
				s.logger.Debug("Template change detected", "file", ev.Name, "op", ev.Op.String())
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Error("Watcher error", "err", err)
			}
		}
	}()

	return changes, nil
}

var (
	_ ports.TemplateStore = (*Store)(nil)
	_ ports.Watchable     = (*Store)(nil)
)

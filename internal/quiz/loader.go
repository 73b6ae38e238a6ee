package quiz

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrLoad is returned, wrapped, for every missing or malformed quiz source.
var ErrLoad = errors.New("loading quiz")

// Loader resolves a quiz source to a definition.
type Loader interface {
	Load(ctx context.Context, source string) (*Definition, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, source string) (*Definition, error)

func (f LoaderFunc) Load(ctx context.Context, source string) (*Definition, error) {
	return f(ctx, source)
}

// LoadError wraps err so that errors.Is(err, ErrLoad) holds.
func LoadError(source string, err error) error {
	return fmt.Errorf("%w %q: %w", ErrLoad, source, err)
}

// FileLoader reads YAML or JSON definitions below Dir. Sources must be
// local relative paths.
type FileLoader struct {
	Dir string
}

func (l FileLoader) Load(_ context.Context, source string) (*Definition, error) {
	if !filepath.IsLocal(source) {
		return nil, LoadError(source, errors.New("path must be relative and inside the quiz directory"))
	}
	format, ok := FormatFromExt(filepath.Ext(source))
	if !ok {
		return nil, LoadError(source, errors.New("unknown file extension"))
	}

	data, err := os.ReadFile(filepath.Join(l.Dir, source))
	if err != nil {
		return nil, LoadError(source, err)
	}
	d, err := Parse(data, format)
	if err != nil {
		return nil, LoadError(source, err)
	}
	return d, nil
}

// Router picks a loader by the scheme prefix of a source ("library:demo").
// Sources without a registered scheme go to Default.
type Router struct {
	Default Loader
	Schemes map[string]Loader
}

func (r Router) Load(ctx context.Context, source string) (*Definition, error) {
	if scheme, rest, ok := strings.Cut(source, ":"); ok {
		if l, ok := r.Schemes[scheme]; ok {
			return l.Load(ctx, rest)
		}
	}
	if r.Default == nil {
		return nil, LoadError(source, errors.New("no loader for source"))
	}
	return r.Default.Load(ctx, source)
}

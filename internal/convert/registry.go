package convert

import (
	"context"
	"fmt"
	"log/slog"

	"nbr/internal/envelope"
	"nbr/internal/loaders"
	"nbr/internal/logging"
	"nbr/internal/resource"
)

// Asset is a loaded source descriptor.
type Asset interface {
	Release()
}

// LoadFunc decodes one source file.
type LoadFunc func(path string) (Asset, error)

// EncodeFunc turns a loaded descriptor into an envelope payload.
type EncodeFunc func(Asset) (envelope.Payload, error)

type capability struct {
	load   LoadFunc
	encode EncodeFunc
}

// Registry converts source files into envelopes, one capability pair per
// resource type.
type Registry struct {
	table  [resource.TypeCount]capability
	font   loaders.FontOptions
	logger *slog.Logger
}

type Option func(*Registry)

// WithLoader replaces the loader used for t.
func WithLoader(t resource.Type, load LoadFunc) Option {
	return func(r *Registry) {
		if t.Valid() && load != nil {
			r.table[t].load = load
		}
	}
}

// WithFontOptions sets the size and resolution fonts are rasterized at.
func WithFontOptions(opts loaders.FontOptions) Option {
	return func(r *Registry) { r.font = opts }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New returns a registry wired to the default loaders.
func New(opts ...Option) *Registry {
	r := &Registry{logger: logging.NewNop()}
	r.table = [resource.TypeCount]capability{
		resource.Texture: {
			load:   func(path string) (Asset, error) { return loaders.LoadImage(path) },
			encode: encodeTexture,
		},
		resource.Cubemap: {
			load:   func(path string) (Asset, error) { return loaders.LoadCubemap(path) },
			encode: encodeCubemap,
		},
		resource.Shader: {
			load:   func(path string) (Asset, error) { return loaders.LoadShader(path) },
			encode: encodeShader,
		},
		resource.Model: {
			load:   func(path string) (Asset, error) { return loaders.LoadModel(path) },
			encode: encodeModel,
		},
		resource.Font: {
			load:   func(path string) (Asset, error) { return loaders.LoadFont(path, r.font) },
			encode: encodeFont,
		},
		resource.AudioBuffer: {
			load:   func(path string) (Asset, error) { return loaders.LoadAudio(path) },
			encode: encodeAudio,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "convert")
	return r
}

// Supports reports whether t has a complete capability pair.
func (r *Registry) Supports(t resource.Type) bool {
	return t.Valid() && r.table[t].load != nil && r.table[t].encode != nil
}

// Convert loads path, encodes it as t and writes the envelope into outDir.
// It returns the envelope path. Loader resources are released whether or not
// the write succeeds.
func (r *Registry) Convert(ctx context.Context, path, outDir string, t resource.Type) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !r.Supports(t) {
		return "", fmt.Errorf("%w: %s", ErrNoConverter, t)
	}
	c := r.table[t]

	asset, err := c.load(path)
	if err != nil {
		return "", &LoaderError{Source: path, Type: t, Err: err}
	}
	defer asset.Release()

	output := envelope.Path(outDir, path, t)
	payload, err := c.encode(asset)
	if err != nil {
		return "", &WriteError{Source: path, Output: output, Err: err}
	}
	if err := envelope.WriteFile(output, payload); err != nil {
		return "", &WriteError{Source: path, Output: output, Err: err}
	}
	r.logger.Debug("envelope written",
		logging.String(logging.FieldSource, path),
		logging.String(logging.FieldOutput, output),
		logging.String(logging.FieldResourceType, t.String()),
		logging.String("payload", payload.Summary()),
	)
	return output, nil
}

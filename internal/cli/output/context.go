package output

import "context"

type rendererKey struct{}

// WithRenderer returns a context carrying r.
func WithRenderer(ctx context.Context, r *Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// FromContext returns the renderer stored by WithRenderer.
func FromContext(ctx context.Context) (*Renderer, bool) {
	if ctx == nil {
		return nil, false
	}
	r, ok := ctx.Value(rendererKey{}).(*Renderer)
	return r, ok && r != nil
}

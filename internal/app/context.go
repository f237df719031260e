package app

import (
	"context"

	"medmcq/internal/domain"
)

type viewerKey struct{}

// WithViewer attaches the authenticated caller to ctx.
func WithViewer(ctx context.Context, v *domain.Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFrom returns the caller stored in ctx, or nil for anonymous requests.
func ViewerFrom(ctx context.Context) *domain.Viewer {
	v, _ := ctx.Value(viewerKey{}).(*domain.Viewer)
	return v
}

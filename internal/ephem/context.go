package ephem

import (
	"context"

	"github.com/litescript/lunas/internal/astro"
)

// contextProvider fails every position query once its context is done.
type contextProvider struct {
	Provider
	ctx context.Context
}

// WithContext binds p to ctx. Searches driven by the returned provider stop
// at their next position query after ctx is cancelled or times out.
func WithContext(ctx context.Context, p Provider) Provider {
	return &contextProvider{Provider: p, ctx: ctx}
}

func (p *contextProvider) Position(body astro.Body, at astro.Instant) (astro.Vec3, error) {
	if err := p.ctx.Err(); err != nil {
		return astro.Vec3{}, err
	}
	return p.Provider.Position(body, at)
}

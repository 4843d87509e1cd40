package service

import "context"

type controllerKey struct{}

// WithController returns a copy of ctx carrying c.
func WithController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, controllerKey{}, c)
}

// ControllerFrom returns the controller bound to ctx, or nil.
func ControllerFrom(ctx context.Context) *Controller {
	c, _ := ctx.Value(controllerKey{}).(*Controller)
	return c
}

// ContextAuth authenticates API calls with the controller bound to the
// request context. Calls without a controller go out anonymously.
type ContextAuth struct{}

func (ContextAuth) BearerToken(ctx context.Context) string {
	if c := ControllerFrom(ctx); c != nil {
		return c.Token(ctx)
	}
	return ""
}

func (ContextAuth) Unauthorized(ctx context.Context) {
	if c := ControllerFrom(ctx); c != nil {
		c.Unauthorized(ctx)
	}
}

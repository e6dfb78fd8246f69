package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type newRelicContextKey struct{}

// NewRelicContextKey is the context key under which the New Relic application
// is stored.
var NewRelicContextKey = newRelicContextKey{}

// WithNewRelic returns a child context carrying app. A nil app returns ctx
// unchanged.
func WithNewRelic(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}

func appFromContext(ctx context.Context) (*newrelic.Application, bool) {
	if ctx == nil {
		return nil, false
	}
	nr, ok := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	return nr, ok && nr != nil
}

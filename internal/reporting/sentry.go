// Package reporting forwards degraded-path events and unexpected errors to Sentry.
// Every function is a no-op until Init has been called with a non-empty DSN.
package reporting

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

// Init configures the global Sentry client. It returns a flush function to call on shutdown.
func Init(dsn, environment, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureError reports err with the given tags, using the request hub when ctx carries one.
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		hub.CaptureException(err)
	})
}

// Package testutil holds helpers shared by the colconv tests: loggers,
// contexts, temp files and in-memory connectors.
package testutil

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// defaultTimeout bounds a test context when the test binary has no deadline.
const defaultTimeout = 30 * time.Second

// TestLogger returns a debug level logger that writes through t.Log, so
// output only shows for failing or verbose tests.
func TestLogger(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t,
		zaptest.Level(zap.DebugLevel),
		zaptest.WrapOptions(zap.AddCaller(), zap.Fields(zap.String("test", t.Name()))),
	)
}

// TestContext returns a context that ends shortly before the test binary
// deadline, or after 30 seconds. It is also cancelled when the test ends.
func TestContext(t testing.TB) (context.Context, context.CancelFunc) {
	deadline := time.Now().Add(defaultTimeout)
	if d, ok := t.(interface{ Deadline() (time.Time, bool) }); ok {
		if end, set := d.Deadline(); set && end.Before(deadline) {
			deadline = end.Add(-time.Second)
		}
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	t.Cleanup(cancel)
	return ctx, cancel
}

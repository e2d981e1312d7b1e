package store

import (
	"time"

	"github.com/sakif/civic-sync/internal/clock"
)

var testEpoch = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

func newTestClock() *clock.FakeClock {
	return clock.Fake(testEpoch)
}

func ptr[T any](v T) *T { return &v }

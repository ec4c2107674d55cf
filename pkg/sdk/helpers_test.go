package sdk_test

import "time"

const (
	testTimeout = 2 * time.Second
	testTick    = 10 * time.Millisecond
)

func ptr[T any](v T) *T {
	return &v
}

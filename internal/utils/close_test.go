package utils

import (
	"errors"
	"testing"

	"github.com/MrSnakeDoc/marksync/internal/logger"
)

type fakeCloser struct {
	closed bool
	err    error
}

func (f *fakeCloser) Close() error {
	f.closed = true
	return f.err
}

func TestMustClose(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"clean close", nil},
		{"close error is logged, not returned", errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCloser{err: tt.err}
			MustClose(c, "fake", logger.NewNop())
			if !c.closed {
				t.Error("MustClose() did not call Close")
			}
		})
	}
}

package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestGracefulRunsEveryFunc(t *testing.T) {
	var order []string
	first := errors.New("first")
	third := errors.New("third")

	err := Graceful(time.Second,
		func(context.Context) error { order = append(order, "a"); return first },
		nil,
		func(context.Context) error { order = append(order, "b"); return nil },
		func(context.Context) error { order = append(order, "c"); return third },
	)

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.ElementsMatch(t, []error{first, third}, multierr.Errors(err))
}

func TestGracefulDeadline(t *testing.T) {
	err := Graceful(time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.NoError(t, Graceful(0, func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return nil
	}))
}

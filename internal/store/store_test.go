package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowTable struct {
	delay time.Duration
	err   error
}

func (s *slowTable) wait(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *slowTable) List(ctx context.Context) ([]Row, error) { return nil, s.wait(ctx) }
func (s *slowTable) Update(ctx context.Context, _ string, _ map[string]any) error {
	return s.wait(ctx)
}
func (s *slowTable) Delete(ctx context.Context, _ string) error { return s.wait(ctx) }
func (s *slowTable) Ping(ctx context.Context) error             { return s.wait(ctx) }

func TestErrors_MatchSentinels_When_Wrapped(t *testing.T) {
	t.Parallel()

	nf := fmt.Errorf("update: %w", &NotFoundError{ID: "rec1"})
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsConnection(nf))

	var target *NotFoundError
	require.True(t, errors.As(nf, &target))
	assert.Equal(t, "rec1", target.ID)

	cause := errors.New("dial tcp: refused")
	ce := fmt.Errorf("fetch: %w", &ConnectionError{Op: "list", Err: cause})
	assert.True(t, IsConnection(ce))
	assert.True(t, errors.Is(ce, cause))
	assert.Equal(t, "fetch: list: dial tcp: refused", ce.Error())
}

func TestWithTimeout_ReturnsConnectionError_When_CallExceedsDeadline(t *testing.T) {
	t.Parallel()

	tbl := WithTimeout(&slowTable{delay: time.Second}, 10*time.Millisecond)

	_, err := tbl.List(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnection(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestWithTimeout_PassesNotFoundThrough(t *testing.T) {
	t.Parallel()

	tbl := WithTimeout(&slowTable{err: &NotFoundError{ID: "x"}}, time.Second)

	err := tbl.Delete(context.Background(), "x")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConnection(err))
}

func TestWithTimeout_WrapsOtherFailures(t *testing.T) {
	t.Parallel()

	tbl := WithTimeout(&slowTable{err: errors.New("boom")}, time.Second)

	err := tbl.Update(context.Background(), "x", nil)
	var ce *ConnectionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "update", ce.Op)

	assert.NoError(t, WithTimeout(&slowTable{}, 0).Ping(context.Background()))
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "dashboard")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "dashboard", `{"today":1}`, 0))
	v, err := m.Get(ctx, "dashboard")
	require.NoError(t, err)
	assert.Equal(t, `{"today":1}`, v)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))

	now = now.Add(30 * time.Second)
	_, err := m.Get(ctx, "k")
	assert.NoError(t, err)

	now = now.Add(31 * time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyURL(t *testing.T) {
	c, err := New(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), "not-a-url://")
	assert.Error(t, err)
}

func TestNew_PingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.NoError(t, c.Health(context.Background()))

	mr.Close()
	assert.Error(t, c.Health(context.Background()))
}

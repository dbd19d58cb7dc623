package registry

import (
	"testing"

	"github.com/nfrund/quay/internal/config"
	"github.com/stretchr/testify/assert"
)

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

func TestRegistry(t *testing.T) {
	cfg := &config.Config{AppAddr: ":9999"}
	r := New(cfg)
	assert.Same(t, cfg, r.Config())

	key := Key[greeter]("test.greeter")

	_, ok := Get(r, key)
	assert.False(t, ok)
	assert.Panics(t, func() { MustGet(r, key) })

	Set[greeter](r, key, english{})
	g, ok := Get(r, key)
	assert.True(t, ok)
	assert.Equal(t, "hello", g.Greet())
	assert.Equal(t, "hello", MustGet(r, key).Greet())

	t.Run("same name with another type is a miss", func(t *testing.T) {
		_, ok := Get(r, Key[string]("test.greeter"))
		assert.False(t, ok)
	})
}

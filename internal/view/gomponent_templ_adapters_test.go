package view

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

func TestAdaptGomponentToTempl(t *testing.T) {
	t.Run("renders the node", func(t *testing.T) {
		var buf bytes.Buffer
		c := AdaptGomponentToTempl(P(g.Text("hello & welcome")))
		require.NoError(t, c.Render(context.Background(), &buf))
		assert.Equal(t, "<p>hello &amp; welcome</p>", buf.String())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var buf bytes.Buffer
		err := AdaptGomponentToTempl(P(g.Text("late"))).Render(ctx, &buf)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, buf.String())
	})
}

func TestSafeURL(t *testing.T) {
	assert.Equal(t, "/users/01J/", SafeURL("/users/01J/"))
	assert.Equal(t, "https://example.com/x", SafeURL("https://example.com/x"))
	assert.NotContains(t, SafeURL("javascript:alert(1)"), "javascript")
}

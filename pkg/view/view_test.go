package view_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hotube/pkg/view"
)

func TestTemplateRenderer(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"templates/hello.html": {Data: []byte("<h1>Hello {{.Name}}</h1>")},
		"templates/other.html": {Data: []byte("<p>other</p>")},
	}

	r, err := view.NewTemplateRenderer(fsys, "templates/*.html", nil)
	require.NoError(t, err)

	t.Run("renders a page by name", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, r.Render(w, http.StatusOK, "hello", view.Data{"Name": "world"}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Hello world")
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	})

	t.Run("unknown page", func(t *testing.T) {
		t.Parallel()

		err := r.Render(httptest.NewRecorder(), http.StatusOK, "missing", nil)
		require.ErrorIs(t, err, view.ErrTemplateNotFound)
	})

	t.Run("escapes html in data", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, r.Render(w, http.StatusOK, "hello", view.Data{"Name": "<script>"}))
		assert.NotContains(t, w.Body.String(), "<script>")
	})
}

package flash_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hotube/pkg/cookie"
	"github.com/dmitrymomot/hotube/pkg/flash"
)

func newManager(t *testing.T) *flash.Manager {
	t.Helper()

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	return flash.New(cookies)
}

func carryCookies(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r
}

func TestManager_AddPop(t *testing.T) {
	t.Parallel()

	t.Run("queued notices come back in order", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)

		first := httptest.NewRecorder()
		require.NoError(t, m.Add(first, httptest.NewRequest(http.MethodGet, "/", nil), flash.KindError, "first"))

		second := httptest.NewRecorder()
		require.NoError(t, m.Add(second, carryCookies(first), flash.KindSuccess, "second"))

		notices := m.Pop(httptest.NewRecorder(), carryCookies(second))
		require.Len(t, notices, 2)
		assert.Equal(t, flash.KindError, notices[0].Kind)
		assert.Equal(t, "first", notices[0].Message)
		assert.Equal(t, "second", notices[1].Message)
	})

	t.Run("pop drains the queue", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)

		w := httptest.NewRecorder()
		require.NoError(t, m.Add(w, httptest.NewRequest(http.MethodGet, "/", nil), flash.KindInfo, "once"))

		popW := httptest.NewRecorder()
		require.Len(t, m.Pop(popW, carryCookies(w)), 1)

		// The pop response must clear the cookie.
		assert.Empty(t, m.Pop(httptest.NewRecorder(), carryCookies(popW)))
	})

	t.Run("no queue yields nothing", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)
		assert.Empty(t, m.Pop(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
	})

	t.Run("tampered cookie yields nothing", func(t *testing.T) {
		t.Parallel()

		m := newManager(t)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "__flash", Value: "garbage"})

		assert.Empty(t, m.Pop(httptest.NewRecorder(), r))
	})
}

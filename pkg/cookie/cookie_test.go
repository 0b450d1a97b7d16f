package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hotube/pkg/cookie"
)

const (
	testSecret    = "0123456789abcdef0123456789abcdef"
	rotatedSecret = "fedcba9876543210fedcba9876543210"
)

func requestWithCookies(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("no secrets", func(t *testing.T) {
		t.Parallel()
		_, err := cookie.New(nil)
		require.ErrorIs(t, err, cookie.ErrNoSecret)

		_, err = cookie.New([]string{""})
		require.ErrorIs(t, err, cookie.ErrNoSecret)
	})

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()
		_, err := cookie.New([]string{"too-short"})
		require.ErrorIs(t, err, cookie.ErrSecretTooShort)
	})
}

func TestManager_SetGet(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, m.Set(w, "theme", "dark"))

	got, err := m.Get(requestWithCookies(w), "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "theme")
	require.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestManager_Encrypted(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, m.SetEncrypted(w, "sid", "session-token"))

		// The wire value never carries the plaintext.
		raw := w.Result().Cookies()[0].Value
		assert.NotContains(t, raw, "session-token")

		got, err := m.GetEncrypted(requestWithCookies(w), "sid")
		require.NoError(t, err)
		assert.Equal(t, "session-token", got)
	})

	t.Run("old secret still decrypts after rotation", func(t *testing.T) {
		t.Parallel()

		old, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, old.SetEncrypted(w, "sid", "survives-rotation"))

		rotated, err := cookie.New([]string{rotatedSecret, testSecret})
		require.NoError(t, err)

		got, err := rotated.GetEncrypted(requestWithCookies(w), "sid")
		require.NoError(t, err)
		assert.Equal(t, "survives-rotation", got)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		t.Parallel()

		old, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, old.SetEncrypted(w, "sid", "value"))

		other, err := cookie.New([]string{rotatedSecret})
		require.NoError(t, err)

		_, err = other.GetEncrypted(requestWithCookies(w), "sid")
		require.ErrorIs(t, err, cookie.ErrDecryptionFailed)
	})

	t.Run("tampered payload fails", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New([]string{testSecret})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "bm90LWEtcmVhbC1jaXBoZXJ0ZXh0"})

		_, err = m.GetEncrypted(r, "sid")
		require.Error(t, err)
	})
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.Delete(w, "sid")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

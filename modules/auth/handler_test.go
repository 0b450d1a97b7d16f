package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/hotube/modules/auth"
	"github.com/dmitrymomot/hotube/modules/user"
	"github.com/dmitrymomot/hotube/pkg/cookie"
	"github.com/dmitrymomot/hotube/pkg/flash"
	"github.com/dmitrymomot/hotube/pkg/session"
	"github.com/dmitrymomot/hotube/pkg/view"
)

type fakeProvider struct {
	exchangeToken string
	exchangeErr   error
	identity      *auth.ProviderIdentity
	identityErr   error

	exchangedCode string
}

func (p *fakeProvider) AuthURL(state string) string {
	return "https://provider.example.com/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (string, error) {
	p.exchangedCode = code
	return p.exchangeToken, p.exchangeErr
}

func (p *fakeProvider) FetchIdentity(ctx context.Context, accessToken string) (*auth.ProviderIdentity, error) {
	return p.identity, p.identityErr
}

type recordingRenderer struct {
	name   string
	status int
	data   view.Data
}

func (r *recordingRenderer) Render(w http.ResponseWriter, status int, name string, data view.Data) error {
	r.name = name
	r.status = status
	r.data = data
	w.WriteHeader(status)
	return nil
}

type authFixture struct {
	handler  http.Handler
	storage  *user.MemoryStorage
	provider *fakeProvider
	renderer *recordingRenderer
	sessions *session.Manager
}

func newAuthFixture(t *testing.T, provider *fakeProvider) *authFixture {
	t.Helper()

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	storage := user.NewMemoryStorage()
	flashes := flash.New(cookies)
	sessions := session.New(session.WithCookieManager(cookies))
	renderer := &recordingRenderer{}

	h := auth.NewHandler(
		auth.NewPasswordService(storage, auth.WithPasswordBcryptCost(bcrypt.MinCost)),
		provider,
		auth.NewReconciler(storage),
		sessions,
		cookies,
		flashes,
		renderer,
	)

	router := chi.NewRouter()
	h.Routes(router, auth.NewGate(flashes))

	return &authFixture{
		handler:  router,
		storage:  storage,
		provider: provider,
		renderer: renderer,
		sessions: sessions,
	}
}

// startOAuth runs /oauth/start and returns the state from the redirect
// plus the state cookie to replay on the finish request.
func (f *authFixture) startOAuth(t *testing.T) (string, []*http.Cookie) {
	t.Helper()

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/start", nil))
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	return state, w.Result().Cookies()
}

func (f *authFixture) finishOAuth(t *testing.T, state string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/oauth/finish?code=test-code&state="+url.QueryEscape(state), nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func sessionCookieSet(w *httptest.ResponseRecorder) bool {
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" && c.Value != "" && c.MaxAge >= 0 {
			return true
		}
	}
	return false
}

func TestHandler_OAuthFinish(t *testing.T) {
	t.Parallel()

	t.Run("full flow creates an account and a session", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{
			exchangeToken: "gho_token",
			identity:      githubIdentity(),
		}
		f := newAuthFixture(t, provider)

		state, cookies := f.startOAuth(t)
		w := f.finishOAuth(t, state, cookies)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, "test-code", provider.exchangedCode)
		assert.Equal(t, 1, f.storage.Len())
		assert.True(t, sessionCookieSet(w))
	})

	t.Run("exchange denial aborts with nothing created", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{exchangeErr: auth.ErrNoAccessToken}
		f := newAuthFixture(t, provider)

		state, cookies := f.startOAuth(t)
		w := f.finishOAuth(t, state, cookies)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, 0, f.storage.Len())
		assert.False(t, sessionCookieSet(w))
	})

	t.Run("unverifiable identity aborts with nothing created", func(t *testing.T) {
		t.Parallel()

		identity := githubIdentity()
		identity.Emails = nil
		provider := &fakeProvider{exchangeToken: "gho_token", identity: identity}
		f := newAuthFixture(t, provider)

		state, cookies := f.startOAuth(t)
		w := f.finishOAuth(t, state, cookies)

		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, 0, f.storage.Len())
		assert.False(t, sessionCookieSet(w))
	})

	t.Run("state mismatch never reaches the provider", func(t *testing.T) {
		t.Parallel()

		provider := &fakeProvider{exchangeToken: "gho_token", identity: githubIdentity()}
		f := newAuthFixture(t, provider)

		_, cookies := f.startOAuth(t)
		w := f.finishOAuth(t, "forged-state", cookies)

		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Empty(t, provider.exchangedCode)
		assert.Equal(t, 0, f.storage.Len())
	})
}

func TestHandler_JoinAndLogin(t *testing.T) {
	t.Parallel()

	postForm := func(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
		t.Helper()
		r := httptest.NewRequest(http.MethodPost, target, nil)
		r.PostForm = form
		r.Form = form
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w
	}

	joinForm := url.Values{
		"name":     {"Frida"},
		"username": {"frida"},
		"email":    {"frida@example.com"},
		"password": {"abc123"},
		"password2": {
			"abc123",
		},
		"location": {"Oslo"},
	}

	t.Run("join then login", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, &fakeProvider{})

		w := postForm(t, f.handler, "/join", joinForm)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Equal(t, 1, f.storage.Len())

		w = postForm(t, f.handler, "/login", url.Values{
			"username": {"frida"},
			"password": {"abc123"},
		})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.True(t, sessionCookieSet(w))
	})

	t.Run("second join with the same username re-renders the form", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, &fakeProvider{})

		w := postForm(t, f.handler, "/join", joinForm)
		require.Equal(t, http.StatusFound, w.Code)

		form := url.Values{}
		for k, v := range joinForm {
			form[k] = v
		}
		form.Set("email", "other@example.com")

		w = postForm(t, f.handler, "/join", form)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "join", f.renderer.name)
		assert.Equal(t, 1, f.storage.Len())
	})

	t.Run("bad password re-renders the login form", func(t *testing.T) {
		t.Parallel()

		f := newAuthFixture(t, &fakeProvider{})

		w := postForm(t, f.handler, "/join", joinForm)
		require.Equal(t, http.StatusFound, w.Code)

		w = postForm(t, f.handler, "/login", url.Values{
			"username": {"frida"},
			"password": {"wrong"},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "login", f.renderer.name)
		assert.False(t, sessionCookieSet(w))
	})
}

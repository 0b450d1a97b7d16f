package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/hotube/modules/auth"
)

func newGitHubProvider(t *testing.T, handler http.Handler) (*auth.GitHubProvider, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider := auth.NewGitHubProvider(
		auth.GitHubConfig{
			ClientID:     "test-client",
			ClientSecret: "test-secret",
			Scopes:       []string{"read:user", "user:email"},
		},
		auth.WithGitHubEndpoint(oauth2.Endpoint{
			TokenURL:  srv.URL + "/login/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		auth.WithGitHubAPIBaseURL(srv.URL),
	)
	return provider, srv
}

func TestGitHubProvider_AuthURL(t *testing.T) {
	t.Parallel()

	provider := auth.NewGitHubProvider(auth.GitHubConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Scopes:       []string{"read:user", "user:email"},
	})

	raw := provider.AuthURL("state-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "test-client", q.Get("client_id"))
	assert.Equal(t, "false", q.Get("allow_signup"))
	assert.Equal(t, "read:user user:email", q.Get("scope"))
	assert.Equal(t, "state-123", q.Get("state"))
}

func TestGitHubProvider_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("returns the access token", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "test-client", r.Form.Get("client_id"))
			assert.Equal(t, "good-code", r.Form.Get("code"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"gho_token","token_type":"bearer","scope":"read:user,user:email"}`))
		})

		provider, _ := newGitHubProvider(t, mux)
		token, err := provider.Exchange(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "gho_token", token)
	})

	t.Run("provider denial yields no-access-token", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error":"bad_verification_code","error_description":"The code passed is incorrect or expired."}`))
		})

		provider, _ := newGitHubProvider(t, mux)
		_, err := provider.Exchange(context.Background(), "used-code")
		require.ErrorIs(t, err, auth.ErrNoAccessToken)
	})

	t.Run("response without a token yields no-access-token", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
		})

		provider, _ := newGitHubProvider(t, mux)
		_, err := provider.Exchange(context.Background(), "odd-code")
		require.ErrorIs(t, err, auth.ErrNoAccessToken)
	})
}

func TestGitHubProvider_FetchIdentity(t *testing.T) {
	t.Parallel()

	t.Run("combines profile and emails", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "token gho_token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":12345,"login":"octo-frida","name":"Frida","avatar_url":"https://avatars.example.com/u/12345","location":"Oslo"}`))
		})
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "token gho_token", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"email":"spare@example.com","primary":false,"verified":true},{"email":"frida@example.com","primary":true,"verified":true}]`))
		})

		provider, _ := newGitHubProvider(t, mux)
		identity, err := provider.FetchIdentity(context.Background(), "gho_token")
		require.NoError(t, err)
		assert.Equal(t, "12345", identity.ProviderUserID)
		assert.Equal(t, "octo-frida", identity.Login)
		assert.Equal(t, "Oslo", identity.Location)
		require.Len(t, identity.Emails, 2)

		email, err := identity.VerifiedPrimaryEmail()
		require.NoError(t, err)
		assert.Equal(t, "frida@example.com", email)
	})

	t.Run("non-200 from the api is a provider failure", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		provider, _ := newGitHubProvider(t, mux)
		_, err := provider.FetchIdentity(context.Background(), "revoked")
		require.ErrorIs(t, err, auth.ErrProviderUnavailable)
	})
}

func TestProviderIdentity_VerifiedPrimaryEmail(t *testing.T) {
	t.Parallel()

	t.Run("no primary verified entry", func(t *testing.T) {
		t.Parallel()

		identity := &auth.ProviderIdentity{Emails: []auth.ProviderEmail{
			{Address: "a@example.com", Primary: true, Verified: false},
			{Address: "b@example.com", Primary: false, Verified: true},
		}}
		_, err := identity.VerifiedPrimaryEmail()
		require.ErrorIs(t, err, auth.ErrUnverifiableIdentity)
	})

	t.Run("empty list", func(t *testing.T) {
		t.Parallel()

		identity := &auth.ProviderIdentity{}
		_, err := identity.VerifiedPrimaryEmail()
		require.ErrorIs(t, err, auth.ErrUnverifiableIdentity)
	})
}

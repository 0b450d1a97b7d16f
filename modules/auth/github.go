package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const defaultGitHubAPIBaseURL = "https://api.github.com"

// GitHubConfig holds the GitHub OAuth application settings.
type GitHubConfig struct {
	ClientID     string        `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string        `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string        `env:"GITHUB_OAUTH_REDIRECT_URL"`
	Scopes       []string      `env:"GITHUB_OAUTH_SCOPES" envSeparator:"," envDefault:"read:user,user:email"`
	Timeout      time.Duration `env:"GITHUB_OAUTH_TIMEOUT" envDefault:"10s"`
}

// GitHubProvider implements IdentityProvider against the GitHub OAuth
// and REST APIs.
type GitHubProvider struct {
	oauth2Config *oauth2.Config
	apiBaseURL   string
	httpClient   *http.Client
}

type GitHubOption func(*GitHubProvider)

// WithGitHubEndpoint overrides the OAuth token endpoint. Used by tests
// to point the exchange at a local server.
func WithGitHubEndpoint(endpoint oauth2.Endpoint) GitHubOption {
	return func(p *GitHubProvider) { p.oauth2Config.Endpoint = endpoint }
}

// WithGitHubAPIBaseURL overrides the REST API base URL.
func WithGitHubAPIBaseURL(baseURL string) GitHubOption {
	return func(p *GitHubProvider) { p.apiBaseURL = strings.TrimRight(baseURL, "/") }
}

func WithGitHubHTTPClient(client *http.Client) GitHubOption {
	return func(p *GitHubProvider) { p.httpClient = client }
}

func NewGitHubProvider(cfg GitHubConfig, opts ...GitHubOption) *GitHubProvider {
	p := &GitHubProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: defaultGitHubAPIBaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	if p.httpClient.Timeout == 0 {
		p.httpClient.Timeout = 10 * time.Second
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// AuthURL builds the provider authorize URL. Signup on the provider
// side is disabled; the flow is for existing provider users only.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state, oauth2.SetAuthURLParam("allow_signup", "false"))
}

// Exchange trades the authorization code for an access token. A
// provider response without a token, including a reused code, yields
// ErrNoAccessToken. No retry: the caller routes back to login.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			// The provider answered but denied the code.
			return "", fmt.Errorf("%w: %s", ErrNoAccessToken, rErr.ErrorCode)
		}
		if strings.Contains(err.Error(), "missing access_token") {
			return "", ErrNoAccessToken
		}
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if token.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	return token.AccessToken, nil
}

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Location  string `json:"location"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// FetchIdentity issues the two authorized reads, profile and email
// list, and returns the combined identity.
func (p *GitHubProvider) FetchIdentity(ctx context.Context, accessToken string) (*ProviderIdentity, error) {
	var profile githubProfile
	if err := p.getJSON(ctx, accessToken, "/user", &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch provider profile: %w", err)
	}

	var emails []githubEmail
	if err := p.getJSON(ctx, accessToken, "/user/emails", &emails); err != nil {
		return nil, fmt.Errorf("failed to fetch provider emails: %w", err)
	}

	identity := &ProviderIdentity{
		ProviderUserID: strconv.FormatInt(profile.ID, 10),
		Login:          profile.Login,
		Name:           profile.Name,
		AvatarURL:      profile.AvatarURL,
		Location:       profile.Location,
		Emails:         make([]ProviderEmail, 0, len(emails)),
	}
	for _, e := range emails {
		identity.Emails = append(identity.Emails, ProviderEmail{
			Address:  e.Email,
			Primary:  e.Primary,
			Verified: e.Verified,
		})
	}

	return identity, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, accessToken, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBaseURL+path, nil)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "token "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: provider api returned status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode provider response: %w", err)
	}

	return nil
}

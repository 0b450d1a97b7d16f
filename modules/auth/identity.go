package auth

import "context"

// ProviderEmail is one entry of the provider's email list.
type ProviderEmail struct {
	Address  string
	Primary  bool
	Verified bool
}

// ProviderIdentity is the transient identity fetched from the provider
// during a federated login. It is never persisted; it exists only for
// the duration of the reconciliation flow.
type ProviderIdentity struct {
	ProviderUserID string
	Login          string
	Name           string
	AvatarURL      string
	Location       string
	Emails         []ProviderEmail
}

// VerifiedPrimaryEmail returns the single email that is both primary
// and verified. Without one the identity cannot anchor an account.
func (pi *ProviderIdentity) VerifiedPrimaryEmail() (string, error) {
	for _, e := range pi.Emails {
		if e.Primary && e.Verified {
			return e.Address, nil
		}
	}
	return "", ErrUnverifiableIdentity
}

// IdentityProvider is the outbound boundary of the federated login
// flow: authorization URL construction, code-for-token exchange and
// identity retrieval.
type IdentityProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (accessToken string, err error)
	FetchIdentity(ctx context.Context, accessToken string) (*ProviderIdentity, error)
}

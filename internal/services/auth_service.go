package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/localnerve/authorizer-go"
	"github.com/localnerve/carscan-store/internal/config"
	"github.com/localnerve/carscan-store/internal/utils"
	"github.com/rs/zerolog"
)

// SessionCookie is the authorizer session cookie name
const SessionCookie = "cookie_session"

// ErrInvalidSession is returned for a session cookie the authorizer rejects
var ErrInvalidSession = errors.New("invalid session")

// SessionValidator resolves a session cookie to the signed-in user id
type SessionValidator interface {
	ValidateSession(ctx context.Context, cookie string) (string, error)
}

// AuthorizerValidator validates sessions against an Authorizer service.
// The client is created on first use so the service can start before the authorizer is reachable.
type AuthorizerValidator struct {
	url         string
	clientID    string
	redirectURL string
	roles       []string
	log         zerolog.Logger

	mu     sync.Mutex
	client *authorizer.AuthorizerClient
}

// NewAuthorizerValidator configures a validator for the user role
func NewAuthorizerValidator(cfg *config.Config, redirectURL string, log zerolog.Logger) *AuthorizerValidator {
	return &AuthorizerValidator{
		url:         cfg.AuthzURL,
		clientID:    cfg.AuthzClientID,
		redirectURL: redirectURL,
		roles:       []string{"user"},
		log:         log,
	}
}

func (v *AuthorizerValidator) authClient(ctx context.Context) (*authorizer.AuthorizerClient, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.client != nil {
		return v.client, nil
	}

	if err := utils.PingAuthorizer(ctx, v.url); err != nil {
		return nil, fmt.Errorf("authorizer ping failed: %w", err)
	}

	v.log.Info().
		Str("authorizerURL", v.url).
		Str("clientID", v.clientID).
		Str("redirectURL", v.redirectURL).
		Msg("initializing authorizer client")

	client, err := authorizer.NewAuthorizerClient(v.clientID, v.url, v.redirectURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorizer client: %w", err)
	}
	v.client = client
	return client, nil
}

// ValidateSession returns the user id for a valid session cookie
func (v *AuthorizerValidator) ValidateSession(ctx context.Context, cookie string) (string, error) {
	client, err := v.authClient(ctx)
	if err != nil {
		return "", err
	}

	// Convert roles to []*string
	roles := make([]*string, len(v.roles))
	for i := range v.roles {
		roles[i] = &v.roles[i]
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  roles,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if res == nil || !res.IsValid || res.User == nil || res.User.ID == "" {
		return "", ErrInvalidSession
	}

	return res.User.ID, nil
}

package user

import (
	"context"
	"errors"

	"github.com/incluso/backend/core"
)

var (
	// ErrAuthenticationFailed is returned once every sign-in strategy
	// has been exhausted; intermediate failures never reach the caller.
	ErrAuthenticationFailed = errors.New("user not found or invalid credentials")

	// ErrNoSession indicates no (or a corrupt) persisted session.
	ErrNoSession = errors.New("no active session")
)

type (
	Credentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	// Remote is the remote identity API as seen by the authenticator.
	Remote interface {
		// SignIn exchanges credentials for an access token.
		SignIn(ctx context.Context, email, password string) (token string, err error)
		// Me fetches the profile of the token's owner.
		Me(ctx context.Context, token string) (User, error)
		// LookupByEmail finds a remote user by email (case-insensitive).
		LookupByEmail(ctx context.Context, email string) (User, error)
	}

	// Strategy is a single way of resolving credentials into a session.
	// Strategies are tried in order by the Authenticator; any error makes
	// the runner fall through to the next one.
	Strategy interface {
		Name() string
		Authenticate(ctx context.Context, creds Credentials) (Session, error)
	}

	// SessionStore persists the active session across restarts.
	SessionStore interface {
		// Restore returns the persisted session; ErrNoSession (after
		// clearing whatever was stored) when absent or unusable.
		Restore() (Session, error)
		Set(sess Session) error
		Clear() error
	}

	Authenticator struct {
		strategies []Strategy
		sessions   SessionStore
		log        core.Logger
	}
)

func NewAuthenticator(sessions SessionStore, log core.Logger, strategies ...Strategy) *Authenticator {
	return &Authenticator{strategies: strategies, sessions: sessions, log: log}
}

// DefaultStrategies is the production sign-in order: remote session auth,
// remote user lookup, then the local credential table.
func DefaultStrategies(remote Remote, svc *Service) []Strategy {
	return []Strategy{
		RemoteSessionStrategy{Remote: remote},
		RemoteLookupStrategy{Remote: remote},
		LocalStrategy{Service: svc},
	}
}

// SignIn tries each strategy in order and stops at the first success,
// persisting the resulting session before returning it.
func (a *Authenticator) SignIn(ctx context.Context, creds Credentials) (Session, error) {
	creds.Email = core.CleanString(creds.Email, true)

	for _, strat := range a.strategies {
		sess, err := strat.Authenticate(ctx, creds)
		if err != nil {
			a.log.Debug("auth: strategy "+strat.Name()+" failed", err)
			continue
		}
		if err := a.sessions.Set(sess); err != nil {
			// local persistence is the durability guarantee; failing to
			// store the session is fatal, not a fall-through
			return Session{}, err
		}
		return sess, nil
	}
	return Session{}, ErrAuthenticationFailed
}

// CheckSession restores the persisted session at startup. A missing or
// unusable session clears the stored state and reports ErrNoSession.
func (a *Authenticator) CheckSession() (Session, error) {
	sess, err := a.sessions.Restore()
	if err != nil {
		return Session{}, err
	}
	if sess.Token == "" || sess.User.ID == "" {
		_ = a.sessions.Clear()
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// SignOut clears the persisted session; it cannot fail.
func (a *Authenticator) SignOut() {
	_ = a.sessions.Clear()
}

// RemoteSessionStrategy signs in against the remote session endpoint and
// completes the profile from the remote "current user" endpoint.
type RemoteSessionStrategy struct {
	Remote Remote
}

func (RemoteSessionStrategy) Name() string { return "remote-session" }

func (s RemoteSessionStrategy) Authenticate(ctx context.Context, creds Credentials) (Session, error) {
	token, err := s.Remote.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return Session{}, err
	}
	usr, err := s.Remote.Me(ctx, token)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: usr}, nil
}

// RemoteLookupStrategy matches the email against the remote user
// collection without a password check and synthesizes a mock token.
type RemoteLookupStrategy struct {
	Remote Remote
}

func (RemoteLookupStrategy) Name() string { return "remote-lookup" }

func (s RemoteLookupStrategy) Authenticate(ctx context.Context, creds Credentials) (Session, error) {
	usr, err := s.Remote.LookupByEmail(ctx, creds.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: "mock-api-" + creds.Email, User: usr}, nil
}

// LocalStrategy validates the pair against the local credential table.
type LocalStrategy struct {
	Service *Service
}

func (LocalStrategy) Name() string { return "local" }

func (s LocalStrategy) Authenticate(_ context.Context, creds Credentials) (Session, error) {
	cred, err := s.Service.repo.GetCredential(creds.Email)
	if err != nil {
		return Session{}, err
	}
	if !cred.CheckPassword(creds.Password) {
		return Session{}, ErrAuthenticationFailed
	}
	usr, err := s.Service.GetByEmail(creds.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: "mock-token-" + usr.ID, User: usr}, nil
}

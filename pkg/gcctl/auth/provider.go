package auth

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/telekom/gcctl/pkg/metrics"
)

// AuthError reports a rejected or failed client-credentials exchange.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token request failed (HTTP %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
	}
	return fmt.Sprintf("token request failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Store        Store
	HTTPClient   *http.Client
	Logger       *zap.SugaredLogger
}

// Provider hands out the current credential, loading it from the store on
// first use and acquiring a new one when none is usable. It is safe for
// concurrent use; concurrent acquisitions are collapsed into one exchange.
type Provider struct {
	oauth  clientcredentials.Config
	store  Store
	http   *http.Client
	log    *zap.SugaredLogger
	now    func() time.Time
	flight singleflight.Group

	mu          sync.Mutex
	current     *Credential
	storeLoaded bool
}

func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.TokenURL == "" {
		return nil, errors.New("token url is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("client id and client secret are required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Provider{
		oauth: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		store: cfg.Store,
		http:  httpClient,
		log:   log,
		now:   time.Now,
	}, nil
}

// Token returns the current credential. The store is consulted only until
// the first invalidation; after that a fresh credential is acquired.
func (p *Provider) Token(ctx context.Context) (Credential, error) {
	p.mu.Lock()
	if p.current != nil {
		cred := *p.current
		p.mu.Unlock()
		return cred, nil
	}
	if !p.storeLoaded && p.store != nil {
		p.storeLoaded = true
		cred, err := p.store.Load()
		switch {
		case err == nil:
			p.current = &cred
			p.mu.Unlock()
			p.log.Debugw("Using stored credential", "token", cred.Redacted())
			return cred, nil
		case errors.Is(err, ErrNotFound):
			p.log.Debug("No stored credential, acquiring a new one")
		default:
			p.log.Warnw("Ignoring unreadable stored credential", "error", err)
		}
	}
	p.storeLoaded = true
	p.mu.Unlock()
	return p.obtain(ctx, false)
}

// Acquire performs the client-credentials exchange and persists the result.
// Callers that arrive while an exchange is in flight share its result.
func (p *Provider) Acquire(ctx context.Context) (Credential, error) {
	return p.obtain(ctx, true)
}

func (p *Provider) obtain(ctx context.Context, force bool) (Credential, error) {
	v, err, shared := p.flight.Do("token", func() (interface{}, error) {
		if !force {
			// A flight that finished between the caller's check and Do has
			// already stored a credential.
			p.mu.Lock()
			current := p.current
			p.mu.Unlock()
			if current != nil {
				return *current, nil
			}
		}
		return p.acquire(ctx)
	})
	if err != nil {
		return Credential{}, err
	}
	if shared {
		p.log.Debug("Joined in-flight token acquisition")
	}
	return v.(Credential), nil
}

func (p *Provider) acquire(ctx context.Context) (Credential, error) {
	p.log.Infow("Fetching new access token", "tokenURL", p.oauth.TokenURL)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.http)
	token, err := p.oauth.Token(ctx)
	if err != nil {
		metrics.TokenAcquisitions.WithLabelValues("failure").Inc()
		authErr := toAuthError(err)
		p.log.Errorw("Authentication failed", "status", authErr.StatusCode, "error", authErr)
		return Credential{}, authErr
	}
	metrics.TokenAcquisitions.WithLabelValues("success").Inc()

	acquiredAt := p.now().UTC()
	cred := Credential{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   expiresIn(token, acquiredAt),
		AcquiredAt:  acquiredAt,
	}
	if cred.TokenType == "" {
		cred.TokenType = defaultTokenType
	}

	p.mu.Lock()
	p.current = &cred
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.Save(cred); err != nil {
			p.log.Warnw("Failed to persist credential", "error", err)
		}
	}
	p.log.Infow("Authentication successful", "token", cred.Redacted(), "expiresIn", cred.ExpiresIn)
	return cred, nil
}

// Invalidate drops the in-memory credential if its access token is rejected,
// so the next Token call acquires a new one. A credential that already
// replaced the rejected one is kept.
func (p *Provider) Invalidate(rejected string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.storeLoaded = true
	if p.current == nil || p.current.AccessToken != rejected {
		p.log.Debug("Rejected access token already replaced")
		return
	}
	p.current = nil
	metrics.TokenInvalidations.Inc()
	p.log.Info("Access token rejected, discarding cached credential")
}

func toAuthError(err error) *AuthError {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
		return &AuthError{
			StatusCode: retrieveErr.Response.StatusCode,
			Body:       string(retrieveErr.Body),
			Err:        err,
		}
	}
	return &AuthError{Err: err}
}

// expiresIn prefers the raw expires_in field and falls back to the expiry
// computed by the oauth2 package.
func expiresIn(token *oauth2.Token, acquiredAt time.Time) int {
	switch v := token.Extra("expires_in").(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if token.Expiry.IsZero() {
		return 0
	}
	return int(math.Round(token.Expiry.Sub(acquiredAt).Seconds()))
}

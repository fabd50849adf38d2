package cmd

import (
	"net/http"

	"github.com/telekom/gcctl/pkg/gcctl/auth"
	"github.com/telekom/gcctl/pkg/gcctl/client"
	"github.com/telekom/gcctl/pkg/version"
)

func (rt *runtimeState) buildStore() (auth.Store, error) {
	if err := rt.EnsureConfigLoaded(); err != nil {
		return nil, err
	}
	var account string
	if rt.TokenStorage() == auth.StorageKeychain {
		id, err := rt.cfg.ResolveClientID()
		if err != nil {
			return nil, err
		}
		account = id
	}
	return auth.NewStore(rt.TokenStorage(), rt.CredentialFile(), account)
}

func (rt *runtimeState) buildProvider() (*auth.Provider, error) {
	if err := rt.EnsureConfigLoaded(); err != nil {
		return nil, err
	}
	clientID, secret, err := rt.cfg.ResolveCredentials()
	if err != nil {
		return nil, err
	}
	store, err := rt.buildStore()
	if err != nil {
		return nil, err
	}
	timeout, err := rt.cfg.Settings.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return auth.NewProvider(auth.ProviderConfig{
		TokenURL:     rt.cfg.TokenURL(),
		ClientID:     clientID,
		ClientSecret: secret,
		Store:        store,
		HTTPClient:   &http.Client{Timeout: timeout},
		Logger:       rt.Logger().Named("auth"),
	})
}

func (rt *runtimeState) buildClient() (*client.Client, error) {
	provider, err := rt.buildProvider()
	if err != nil {
		return nil, err
	}
	timeout, err := rt.cfg.Settings.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	rt.Logger().Debugw("Using platform", "api", rt.cfg.APIBaseURL(), "correlationId", rt.correlationID)
	return client.New(provider,
		client.WithServer(rt.cfg.APIBaseURL()),
		client.WithUserAgent(version.UserAgent()),
		client.WithTimeout(timeout),
		client.WithRateLimit(rt.cfg.Settings.RateLimit, rt.cfg.Settings.Burst),
		client.WithCorrelationID(rt.correlationID),
		client.WithLogger(rt.Logger().Named("client")),
	)
}

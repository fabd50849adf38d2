package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/gcctl/pkg/gcctl/provision"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadRequiresPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Region = "mypurecloud.de"
	cfg.Credentials.ClientSecretFile = "/run/secrets/genesys"
	cfg.Settings.TokenStorage = TokenStorageKeychain
	cfg.Provisioning.Suffix = "TEAM42"
	cfg.Provisioning.AllowAllDomains = false

	require.NoError(t, Save(path, &cfg))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, *loaded)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: usw2.pure.cloud\nprovisioning:\n  suffix: ABC\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "usw2.pure.cloud", cfg.Region)
	assert.Equal(t, "ABC", cfg.Provisioning.Suffix)
	assert.Equal(t, "Queue{{ .Suffix }}", cfg.Provisioning.Queue)
	assert.True(t, cfg.Provisioning.AllowAllDomains)
	assert.Equal(t, VersionV1, cfg.Version)
	assert.Equal(t, TokenStorageFile, cfg.Settings.TokenStorage)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: [unterminated"), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = "v2" }, "unsupported config version"},
		{"no region", func(c *Config) { c.Region = "" }, "region is required"},
		{"no region with urls", func(c *Config) {
			c.Region = ""
			c.LoginURL = "http://127.0.0.1:8080"
			c.APIURL = "http://127.0.0.1:8081"
		}, ""},
		{"relative api url", func(c *Config) { c.APIURL = "api.example.com" }, "api-url"},
		{"bad token storage", func(c *Config) { c.Settings.TokenStorage = "vault" }, "unsupported token storage"},
		{"bad timeout", func(c *Config) { c.Settings.Timeout = "soon" }, "invalid timeout"},
		{"negative timeout", func(c *Config) { c.Settings.Timeout = "-1s" }, "timeout must be positive"},
		{"negative rate", func(c *Config) { c.Settings.RateLimit = -1 }, "rate-limit"},
		{"broken template", func(c *Config) { c.Provisioning.Queue = "Queue{{ .Suffix" }, "invalid queue template"},
		{"unknown key", func(c *Config) { c.Provisioning.Flow = "{{ .Team }}" }, "failed to render flow"},
		{"empty division", func(c *Config) { c.Provisioning.Division = "  " }, "division name renders empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestEndpoints(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "https://login.cac1.pure.cloud/oauth/token", cfg.TokenURL())
	assert.Equal(t, "https://api.cac1.pure.cloud", cfg.APIBaseURL())

	cfg.LoginURL = "http://127.0.0.1:9000/"
	cfg.APIURL = "http://127.0.0.1:9001/"
	assert.Equal(t, "http://127.0.0.1:9000/oauth/token", cfg.TokenURL())
	assert.Equal(t, "http://127.0.0.1:9001", cfg.APIBaseURL())
}

func TestTimeoutDuration(t *testing.T) {
	d, err := Settings{}.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, d)

	d, err = Settings{Timeout: "5s"}.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)
}

func TestResolveCredentials(t *testing.T) {
	t.Run("from environment", func(t *testing.T) {
		t.Setenv(DefaultClientIDEnv, "client")
		t.Setenv(DefaultClientSecretEnv, " secret\n")
		cfg := DefaultConfig()

		id, secret, err := cfg.ResolveCredentials()
		require.NoError(t, err)
		assert.Equal(t, "client", id)
		assert.Equal(t, "secret", secret)
	})

	t.Run("secret file fallback", func(t *testing.T) {
		t.Setenv(DefaultClientIDEnv, "")
		t.Setenv(DefaultClientSecretEnv, "")
		path := filepath.Join(t.TempDir(), "secret")
		require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
		cfg := DefaultConfig()
		cfg.Credentials.ClientID = "configured"
		cfg.Credentials.ClientSecretFile = path

		id, secret, err := cfg.ResolveCredentials()
		require.NoError(t, err)
		assert.Equal(t, "configured", id)
		assert.Equal(t, "from-file", secret)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Setenv(DefaultClientIDEnv, "")
		cfg := DefaultConfig()
		_, _, err := cfg.ResolveCredentials()
		require.ErrorContains(t, err, DefaultClientIDEnv)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv(DefaultClientIDEnv, "client")
		t.Setenv(DefaultClientSecretEnv, "")
		cfg := DefaultConfig()
		_, _, err := cfg.ResolveCredentials()
		require.ErrorContains(t, err, DefaultClientSecretEnv)
	})

	t.Run("unreadable secret file", func(t *testing.T) {
		t.Setenv(DefaultClientIDEnv, "client")
		t.Setenv(DefaultClientSecretEnv, "")
		cfg := DefaultConfig()
		cfg.Credentials.ClientSecretFile = filepath.Join(t.TempDir(), "missing")
		_, _, err := cfg.ResolveCredentials()
		require.ErrorContains(t, err, "client secret file")
	})
}

func TestRenderDefaults(t *testing.T) {
	names, err := DefaultConfig().Provisioning.Render()
	require.NoError(t, err)
	assert.Equal(t, provision.Targets{
		Division:              "Hackathon RUWAZEPZLVUB",
		Queue:                 "QueueRUWAZEPZLVUB",
		QueueDescription:      "Queue created for division Hackathon RUWAZEPZLVUB",
		UserID:                "04a98822-f4cc-4822-aa55-e49618f282c6",
		Flow:                  "FlowRUWAZEPZLVUB",
		FlowType:              "inboundshortmessage",
		FlowDescription:       "Inbound message flow for division Hackathon RUWAZEPZLVUB",
		Deployment:            "DepRUWAZEPZLVUB",
		DeploymentDescription: "Messenger deployment for division Hackathon RUWAZEPZLVUB",
		AllowAllDomains:       true,
		ConfigurationID:       "b3732897-7715-4f53-ac26-469cad324256",
		ConfigurationVersion:  "1",
	}, names)
}

func TestRenderWithSprigFunctions(t *testing.T) {
	p := DefaultConfig().Provisioning
	p.Suffix = "team-a"
	p.Queue = `Queue{{ .Suffix | upper }}`
	p.Deployment = `{{ .Division | replace " " "-" | lower }}`
	p.ConfigurationVersion = ""

	names, err := p.Render()
	require.NoError(t, err)
	assert.Equal(t, "QueueTEAM-A", names.Queue)
	assert.Equal(t, "hackathon-team-a", names.Deployment)
	assert.Equal(t, "1", names.ConfigurationVersion)
}

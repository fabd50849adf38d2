package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v2"

	"github.com/telekom/gcctl/pkg/gcctl/provision"
)

const (
	VersionV1 = "v1"

	DefaultRegion          = "cac1.pure.cloud"
	DefaultClientIDEnv     = "GENESYS_CLOUD_CLIENT_ID"
	DefaultClientSecretEnv = "GENESYS_CLOUD_CLIENT_SECRET"
	DefaultTimeout         = 30 * time.Second

	TokenStorageFile     = "file"
	TokenStorageKeychain = "keychain"
)

type Config struct {
	Version      string       `yaml:"version"`
	Region       string       `yaml:"region,omitempty"`
	LoginURL     string       `yaml:"login-url,omitempty"`
	APIURL       string       `yaml:"api-url,omitempty"`
	Credentials  Credentials  `yaml:"credentials,omitempty"`
	Settings     Settings     `yaml:"settings,omitempty"`
	Provisioning Provisioning `yaml:"provisioning,omitempty"`
}

// Credentials names where the OAuth client id and secret come from. The
// secret itself is never stored in the config file.
type Credentials struct {
	ClientID         string `yaml:"client-id,omitempty"`
	ClientIDEnv      string `yaml:"client-id-env,omitempty"`
	ClientSecretEnv  string `yaml:"client-secret-env,omitempty"`
	ClientSecretFile string `yaml:"client-secret-file,omitempty"`
}

type Settings struct {
	OutputFormat    string  `yaml:"output-format,omitempty"`
	TokenStorage    string  `yaml:"token-storage,omitempty"`
	CredentialFile  string  `yaml:"credential-file,omitempty"`
	Timeout         string  `yaml:"timeout,omitempty"`
	RateLimit       float64 `yaml:"rate-limit,omitempty"`
	Burst           int     `yaml:"burst,omitempty"`
	MetricsTextfile string  `yaml:"metrics-textfile,omitempty"`
}

// Provisioning holds the names of the entities `gcctl provision` looks up or
// creates. Name fields are Go templates with sprig functions, rendered with
// .Suffix and, except for Division itself, .Division.
type Provisioning struct {
	Suffix                string `yaml:"suffix"`
	Division              string `yaml:"division"`
	Queue                 string `yaml:"queue"`
	QueueDescription      string `yaml:"queue-description"`
	UserID                string `yaml:"user-id"`
	Flow                  string `yaml:"flow"`
	FlowType              string `yaml:"flow-type"`
	FlowDescription       string `yaml:"flow-description"`
	Deployment            string `yaml:"deployment"`
	DeploymentDescription string `yaml:"deployment-description"`
	AllowAllDomains       bool   `yaml:"allow-all-domains"`
	ConfigurationID       string `yaml:"configuration-id"`
	ConfigurationVersion  string `yaml:"configuration-version"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		Region:  DefaultRegion,
		Credentials: Credentials{
			ClientIDEnv:     DefaultClientIDEnv,
			ClientSecretEnv: DefaultClientSecretEnv,
		},
		Settings: Settings{
			OutputFormat: "table",
			TokenStorage: TokenStorageFile,
			Timeout:      DefaultTimeout.String(),
			RateLimit:    10,
			Burst:        5,
		},
		Provisioning: Provisioning{
			Suffix:                "RUWAZEPZLVUB",
			Division:              "Hackathon {{ .Suffix }}",
			Queue:                 "Queue{{ .Suffix }}",
			QueueDescription:      "Queue created for division {{ .Division }}",
			UserID:                "04a98822-f4cc-4822-aa55-e49618f282c6",
			Flow:                  "Flow{{ .Suffix }}",
			FlowType:              "inboundshortmessage",
			FlowDescription:       "Inbound message flow for division {{ .Division }}",
			Deployment:            "Dep{{ .Suffix }}",
			DeploymentDescription: "Messenger deployment for division {{ .Division }}",
			AllowAllDomains:       true,
			ConfigurationID:       "b3732897-7715-4f53-ac26-469cad324256",
			ConfigurationVersion:  "1",
		},
	}
}

// Load reads the config at path on top of DefaultConfig. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	cfg := DefaultConfig()
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	if c.Version != VersionV1 {
		return fmt.Errorf("unsupported config version %q", c.Version)
	}
	if strings.TrimSpace(c.Region) == "" && (c.LoginURL == "" || c.APIURL == "") {
		return errors.New("region is required unless login-url and api-url are set")
	}
	for name, raw := range map[string]string{"login-url": c.LoginURL, "api-url": c.APIURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q is not an absolute URL", name, raw)
		}
	}
	switch c.Settings.TokenStorage {
	case "", TokenStorageFile, TokenStorageKeychain:
	default:
		return fmt.Errorf("unsupported token storage %q", c.Settings.TokenStorage)
	}
	if _, err := c.Settings.TimeoutDuration(); err != nil {
		return err
	}
	if c.Settings.RateLimit < 0 {
		return errors.New("rate-limit cannot be negative")
	}
	if _, err := c.Provisioning.Render(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses the timeout setting, falling back to DefaultTimeout.
func (s Settings) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	return d, nil
}

func (c *Config) TokenURL() string {
	if c.LoginURL != "" {
		return strings.TrimSuffix(c.LoginURL, "/") + "/oauth/token"
	}
	return "https://login." + c.Region + "/oauth/token"
}

func (c *Config) APIBaseURL() string {
	if c.APIURL != "" {
		return strings.TrimSuffix(c.APIURL, "/")
	}
	return "https://api." + c.Region
}

// ResolveClientID returns the client id, preferring the configured
// environment variable over the config file.
func (c *Config) ResolveClientID() (string, error) {
	clientID := c.Credentials.ClientID
	if env := c.Credentials.ClientIDEnv; env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			clientID = v
		}
	}
	if clientID == "" {
		return "", fmt.Errorf("client id not configured: set %s", orDefault(c.Credentials.ClientIDEnv, DefaultClientIDEnv))
	}
	return clientID, nil
}

// ResolveCredentials returns the client id and secret, reading the
// configured environment variables and the optional secret file.
func (c *Config) ResolveCredentials() (string, string, error) {
	clientID, err := c.ResolveClientID()
	if err != nil {
		return "", "", err
	}

	var secret string
	if env := c.Credentials.ClientSecretEnv; env != "" {
		secret = strings.TrimSpace(os.Getenv(env))
	}
	if secret == "" && c.Credentials.ClientSecretFile != "" {
		content, err := os.ReadFile(c.Credentials.ClientSecretFile)
		if err != nil {
			return "", "", fmt.Errorf("failed to read client secret file: %w", err)
		}
		secret = strings.TrimSpace(string(content))
	}
	if secret == "" {
		return "", "", fmt.Errorf("client secret not configured: set %s", orDefault(c.Credentials.ClientSecretEnv, DefaultClientSecretEnv))
	}
	return clientID, secret, nil
}

// Render expands the name templates into provisioning targets.
func (p Provisioning) Render() (provision.Targets, error) {
	data := map[string]string{"Suffix": p.Suffix}
	division, err := render("division", p.Division, data)
	if err != nil {
		return provision.Targets{}, err
	}
	if division == "" {
		return provision.Targets{}, errors.New("provisioning division name renders empty")
	}
	data["Division"] = division

	names := provision.Targets{
		Division:             division,
		UserID:               p.UserID,
		FlowType:             p.FlowType,
		AllowAllDomains:      p.AllowAllDomains,
		ConfigurationID:      p.ConfigurationID,
		ConfigurationVersion: orDefault(p.ConfigurationVersion, "1"),
	}
	fields := []struct {
		name string
		tmpl string
		dst  *string
	}{
		{"queue", p.Queue, &names.Queue},
		{"queue-description", p.QueueDescription, &names.QueueDescription},
		{"flow", p.Flow, &names.Flow},
		{"flow-description", p.FlowDescription, &names.FlowDescription},
		{"deployment", p.Deployment, &names.Deployment},
		{"deployment-description", p.DeploymentDescription, &names.DeploymentDescription},
	}
	for _, f := range fields {
		if *f.dst, err = render(f.name, f.tmpl, data); err != nil {
			return provision.Targets{}, err
		}
	}
	if names.Queue == "" || names.Flow == "" || names.Deployment == "" {
		return provision.Targets{}, errors.New("provisioning queue, flow and deployment names are required")
	}
	return names, nil
}

func render(name, text string, data map[string]string) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("invalid %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

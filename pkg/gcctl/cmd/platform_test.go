package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telekom/gcctl/pkg/gcctl/client"
	"github.com/telekom/gcctl/pkg/gcctl/config"
)

// fakePlatform serves the token endpoint and the resource endpoints gcctl uses.
type fakePlatform struct {
	t      *testing.T
	server *httptest.Server

	mu             sync.Mutex
	issued         map[string]bool
	tokenRequests  int
	unauthorized   int
	divisions      []client.Division
	queues         map[string]client.Queue
	flows          []client.Flow
	queueBodies    []client.CreateQueueRequest
	memberRequests map[string][]string
	deployments    []client.CreateDeploymentRequest
	messages       []client.SendMessageRequest
	correlationIDs map[string]bool
}

func newFakePlatform(t *testing.T) *fakePlatform {
	t.Helper()
	p := &fakePlatform{
		t:      t,
		issued: map[string]bool{},
		divisions: []client.Division{
			{ID: "HOME", Name: "Home", HomeDivision: true},
			{ID: "D1", Name: "Hackathon RUWAZEPZLVUB", State: "active", DateCreated: "2024-03-01T12:30:00.000Z"},
		},
		queues:         map[string]client.Queue{},
		flows:          []client.Flow{{ID: "F1", Name: "FlowRUWAZEPZLVUB", Type: client.FlowTypeInboundShortMessage}},
		memberRequests: map[string][]string{},
		correlationIDs: map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", p.token)
	mux.HandleFunc("GET /api/v2/authorization/divisions", p.authorized(func(w http.ResponseWriter, _ *http.Request) {
		p.json(w, http.StatusOK, map[string]any{"entities": p.divisions, "pageNumber": 1, "pageCount": 1})
	}))
	mux.HandleFunc("GET /api/v2/routing/queues", p.authorized(func(w http.ResponseWriter, r *http.Request) {
		var entities []client.Queue
		if q, ok := p.queues[r.URL.Query().Get("name")]; ok {
			entities = append(entities, q)
		}
		p.json(w, http.StatusOK, map[string]any{"entities": entities})
	}))
	mux.HandleFunc("POST /api/v2/routing/queues", p.authorized(func(w http.ResponseWriter, r *http.Request) {
		var req client.CreateQueueRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		p.queueBodies = append(p.queueBodies, req)
		q := client.Queue{ID: "Q1", Name: req.Name, Division: &req.Division}
		p.queues[req.Name] = q
		p.json(w, http.StatusOK, q)
	}))
	mux.HandleFunc("POST /api/v2/routing/queues/{id}/members", p.authorized(func(w http.ResponseWriter, r *http.Request) {
		var members []client.EntityRef
		require.NoError(t, json.NewDecoder(r.Body).Decode(&members))
		for _, m := range members {
			p.memberRequests[r.PathValue("id")] = append(p.memberRequests[r.PathValue("id")], m.ID)
		}
		w.WriteHeader(http.StatusOK)
	}))
	mux.HandleFunc("GET /api/v2/flows", p.authorized(func(w http.ResponseWriter, r *http.Request) {
		var entities []client.Flow
		for _, f := range p.flows {
			if strings.HasPrefix(f.Name, r.URL.Query().Get("name")) && f.Type == r.URL.Query().Get("type") {
				entities = append(entities, f)
			}
		}
		p.json(w, http.StatusOK, map[string]any{"entities": entities})
	}))
	mux.HandleFunc("POST /api/v2/flows", p.authorized(func(w http.ResponseWriter, r *http.Request) {
		var req client.CreateFlowRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f := client.Flow{ID: fmt.Sprintf("F%d", len(p.flows)+1), Name: req.Name, Type: req.Type}
		p.flows = append(p.flows, f)
		p.json(w, http.StatusOK, f)
	}))
	mux.HandleFunc("POST /api/v2/webdeployments/deployments", p.authorized(func(w http.ResponseWriter, r *http.Request) {
		var req client.CreateDeploymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		p.deployments = append(p.deployments, req)
		p.json(w, http.StatusOK, map[string]any{"id": "DEP1", "name": req.Name, "status": "Pending"})
	}))
	mux.HandleFunc("POST /api/v2/conversations/messages/{conversation}/communications/{communication}/messages", p.authorized(func(w http.ResponseWriter, r *http.Request) {
		var req client.SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		p.messages = append(p.messages, req)
		p.json(w, http.StatusOK, map[string]any{"id": fmt.Sprintf("MSG%d", len(p.messages)), "textBody": req.TextBody})
	}))
	mux.HandleFunc("GET /api/v2/users/me", p.authorized(func(w http.ResponseWriter, _ *http.Request) {
		p.json(w, http.StatusBadRequest, map[string]any{"message": "This request requires a user context.", "code": "bad.request"})
	}))

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePlatform) token(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, secret, ok := r.BasicAuth()
	if !ok || id != "test-client" || secret != "test-secret" {
		p.json(w, http.StatusUnauthorized, map[string]any{"error": "invalid_client"})
		return
	}
	p.tokenRequests++
	token := fmt.Sprintf("tok-%d", p.tokenRequests)
	p.issued[token] = true
	p.json(w, http.StatusOK, map[string]any{"access_token": token, "token_type": "Bearer", "expires_in": 86400})
}

func (p *fakePlatform) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if id := r.Header.Get(client.CorrelationHeader); id != "" {
			p.correlationIDs[id] = true
		}
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !p.issued[token] {
			p.unauthorized++
			p.json(w, http.StatusUnauthorized, map[string]any{"message": "Invalid login credentials.", "code": "bad.credentials"})
			return
		}
		next(w, r)
	}
}

func (p *fakePlatform) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(p.t, json.NewEncoder(w).Encode(v))
}

type testEnv struct {
	platform       *fakePlatform
	configPath     string
	credentialPath string
}

// newTestEnv points a config file at a fake platform and provides the
// client credentials through the default environment variables.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	p := newFakePlatform(t)
	dir := t.TempDir()
	env := &testEnv{
		platform:       p,
		configPath:     filepath.Join(dir, "config.yaml"),
		credentialPath: filepath.Join(dir, "auth.json"),
	}
	cfg := config.DefaultConfig()
	cfg.LoginURL = p.server.URL
	cfg.APIURL = p.server.URL
	cfg.Settings.CredentialFile = env.credentialPath
	cfg.Settings.RateLimit = 0
	require.NoError(t, config.Save(env.configPath, &cfg))

	t.Setenv(config.DefaultClientIDEnv, "test-client")
	t.Setenv(config.DefaultClientSecretEnv, "test-secret")
	for _, key := range []string{"GCCTL_OUTPUT", "GCCTL_REGION", "GCCTL_TOKEN_STORAGE", "GCCTL_VERBOSE"} {
		t.Setenv(key, "")
	}
	return env
}

func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return runCommand(t, e.configPath, stdin, args...)
}

func runCommand(t *testing.T, configPath, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCommand(Config{
		ConfigPath:   configPath,
		OutputWriter: &stdout,
		ErrWriter:    &stderr,
		Input:        strings.NewReader(stdin),
	})
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *testEnv) writeCredential(t *testing.T, token string) {
	t.Helper()
	content := fmt.Sprintf(`{"access_token":%q,"token_type":"Bearer","expires_in":86400,"acquired_at":"2024-01-01T00:00:00Z"}`, token)
	require.NoError(t, os.WriteFile(e.credentialPath, []byte(content), 0o600))
}

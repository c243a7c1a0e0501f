package service_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"kaiginote/cmd/middleware"
	"kaiginote/internal/api/api"
	"kaiginote/internal/dto"
	"kaiginote/internal/notify"
	"kaiginote/internal/security"
	"kaiginote/internal/service"
)

const testSecret = "test-secret-key"

// apiResponse mirrors dto.Response with raw data for per-test decoding.
type apiResponse struct {
	Status string          `json:"status"`
	Error  *dto.Error      `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type testEnv struct {
	server *httptest.Server
	repo   *fakeRepo
	tokens *security.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithWebhook(t, "")
}

func newTestEnvWithWebhook(t *testing.T, webhookURL string) *testEnv {
	t.Helper()

	log := zerolog.Nop()
	fake := newFakeRepo()

	tokens, err := security.NewTokenManager(testSecret, 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}

	discord := notify.NewDiscord(webhookURL, &log)
	svc := service.NewService(fake, &log, tokens, discord, nil)

	app := api.NewRouters(&api.Routers{
		Service: svc,
		Auth:    middleware.RequireAuth(tokens, fake),
	})

	server := httptest.NewServer(app)
	t.Cleanup(server.Close)

	return &testEnv{server: server, repo: fake, tokens: tokens}
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) (*http.Response, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatalf("decode response for %s %s: %v", method, path, err)
		}
	}
	return resp, decoded
}

func (e *testEnv) register(t *testing.T, name, email, password string) dto.UserResponse {
	t.Helper()

	resp, body := e.doJSON(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want %d", email, resp.StatusCode, http.StatusCreated)
	}

	var user dto.UserResponse
	if err := json.Unmarshal(body.Data, &user); err != nil {
		t.Fatalf("decode registered user: %v", err)
	}
	return user
}

func (e *testEnv) login(t *testing.T, email, password string) (*http.Response, string) {
	t.Helper()

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := e.server.Client().Post(
		e.server.URL+"/api/auth/login",
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	defer resp.Body.Close()

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp, ""
	}

	var token dto.TokenResponse
	if err := json.Unmarshal(decoded.Data, &token); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	return resp, token.AccessToken
}

func (e *testEnv) mustLogin(t *testing.T, email, password string) string {
	t.Helper()
	resp, token := e.login(t, email, password)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status = %d, want %d", email, resp.StatusCode, http.StatusOK)
	}
	return token
}

func (e *testEnv) registerAndLogin(t *testing.T, name, email string) (dto.UserResponse, string) {
	t.Helper()
	user := e.register(t, name, email, "password123")
	return user, e.mustLogin(t, email, "password123")
}

func eventPath(id int) string {
	return fmt.Sprintf("/api/events/%d", id)
}

package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	Owner string
	Repo  string
	// OpenPRs maps head branch names to already-open pull requests
	OpenPRs map[string]*github.PullRequest
	// CreatedPRs records pull requests created through the API
	CreatedPRs []*github.NewPullRequest
	// FailCreate makes pull request creation return 422
	FailCreate bool

	mu sync.Mutex
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Owner:   "owner",
		Repo:    "repo",
		OpenPRs: make(map[string]*github.PullRequest),
	}
}

// Created returns a snapshot of the created pull requests
func (c *MockGitHubServerConfig) Created() []*github.NewPullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*github.NewPullRequest(nil), c.CreatedPRs...)
}

// NewMockGitHubServer creates an httptest server that serves the pull request
// list and create endpoints. Its URL is a GitHub Enterprise base URL, so the
// API lives under /api/v3/.
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	var server *httptest.Server
	mux := http.NewServeMux()
	pullsPath := fmt.Sprintf("/api/v3/repos/%s/%s/pulls", config.Owner, config.Repo)

	mux.HandleFunc(pullsPath, func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			head := r.URL.Query().Get("head")
			branch := head
			if i := strings.Index(head, ":"); i >= 0 {
				branch = head[i+1:]
			}
			prs := []*github.PullRequest{}
			if pr, ok := config.OpenPRs[branch]; ok {
				prs = append(prs, pr)
			}
			_ = json.NewEncoder(w).Encode(prs)

		case http.MethodPost:
			if config.FailCreate {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Validation Failed"})
				return
			}
			var req github.NewPullRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			config.CreatedPRs = append(config.CreatedPRs, &req)
			number := 100 + len(config.CreatedPRs)
			pr := &github.PullRequest{
				Number:  github.Int(number),
				HTMLURL: github.String(fmt.Sprintf("%s/%s/%s/pull/%d", server.URL, config.Owner, config.Repo, number)),
				Title:   req.Title,
			}
			config.OpenPRs[req.GetHead()] = pr
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(pr)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

package git

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
)

// CreatePROptions describes a pull request to open
type CreatePROptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// PullRequestInfo describes a pull request that was opened or found
type PullRequestInfo struct {
	Number   int
	URL      string
	Existing bool
}

// GitHubClient opens pull requests for the branch that was just pushed
type GitHubClient struct {
	client *github.Client
	owner  string
	repo   string
}

// NewGitHubClient creates a GitHubClient for the repository described by info.
// Hosts other than github.com are treated as GitHub Enterprise. BGIT_GITHUB_BASE_URL
// overrides the base URL for either.
func NewGitHubClient(ctx context.Context, info *RepoInfo, token string) (*GitHubClient, error) {
	baseURL := os.Getenv("BGIT_GITHUB_BASE_URL")
	if baseURL == "" && info.Hostname != "" && info.Hostname != "github.com" {
		baseURL = fmt.Sprintf("https://%s/", info.Hostname)
	}
	return newGitHubClient(ctx, baseURL, info.Owner, info.Repo, token)
}

func newGitHubClient(ctx context.Context, baseURL, owner, repo, token string) (*GitHubClient, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client for %s: %w", baseURL, err)
		}
	}

	return &GitHubClient{
		client: client,
		owner:  owner,
		repo:   repo,
	}, nil
}

// GetOwnerRepo returns the repository owner and name
func (c *GitHubClient) GetOwnerRepo() (string, string) {
	return c.owner, c.repo
}

// OpenPullRequest returns the open pull request for opts.Head, creating one if none exists
func (c *GitHubClient) OpenPullRequest(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error) {
	prs, _, err := c.client.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		Head:  fmt.Sprintf("%s:%s", c.owner, opts.Head),
		State: "open",
		ListOptions: github.ListOptions{
			PerPage: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	if len(prs) > 0 {
		return &PullRequestInfo{
			Number:   prs[0].GetNumber(),
			URL:      prs[0].GetHTMLURL(),
			Existing: true,
		}, nil
	}

	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}
	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}

	created, _, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	return &PullRequestInfo{
		Number: created.GetNumber(),
		URL:    created.GetHTMLURL(),
	}, nil
}

// GetGitHubToken returns a token from GITHUB_TOKEN or the gh CLI
func GetGitHubToken(ctx context.Context) (string, error) {
	// Try environment variable first
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	output, err := RunGHCommandWithContext(ctx, "auth", "token")
	if err != nil {
		return "", fmt.Errorf("failed to get GitHub token (set GITHUB_TOKEN or run 'gh auth login'): %w", err)
	}

	token := strings.TrimSpace(output)
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}

	return token, nil
}

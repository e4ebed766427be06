package git

import (
	"context"
	"fmt"
	"strings"
)

// FetchRemote updates the remote-tracking refs for remote
func (r *Repository) FetchRemote(ctx context.Context, remote string) error {
	if _, err := r.Runner().Run(ctx, "fetch", remote); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", remote, err)
	}
	return nil
}

// RemoteURL returns the first configured URL of remote
func (r *Repository) RemoteURL(remote string) (string, error) {
	rem, err := r.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("failed to find remote %s: %w", remote, err)
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", remote)
	}
	return urls[0], nil
}

// RepoInfo identifies a hosted repository
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// ParseRemoteURL extracts host, owner and repository name from a remote URL.
// Handles https://host/owner/repo(.git), ssh://git@host/owner/repo and git@host:owner/repo.
func ParseRemoteURL(url string) (*RepoInfo, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(url), "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	var host, path string
	switch {
	case strings.Contains(trimmed, "://"):
		rest := trimmed[strings.Index(trimmed, "://")+3:]
		if at := strings.Index(rest, "@"); at >= 0 {
			rest = rest[at+1:]
		}
		slash := strings.Index(rest, "/")
		if slash < 0 {
			return nil, fmt.Errorf("invalid remote URL: %s", url)
		}
		host, path = rest[:slash], rest[slash+1:]
		if colon := strings.Index(host, ":"); colon >= 0 {
			host = host[:colon]
		}
	case strings.Contains(trimmed, "@") && strings.Contains(trimmed, ":"):
		// SSH format: git@github.com:owner/repo
		rest := trimmed[strings.Index(trimmed, "@")+1:]
		colon := strings.Index(rest, ":")
		host, path = rest[:colon], rest[colon+1:]
	default:
		return nil, fmt.Errorf("invalid remote URL: %s", url)
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return nil, fmt.Errorf("invalid remote URL: %s", url)
	}

	return &RepoInfo{
		Hostname: host,
		Owner:    parts[len(parts)-2],
		Repo:     parts[len(parts)-1],
	}, nil
}

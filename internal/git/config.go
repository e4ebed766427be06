package git

import (
	"fmt"
	"os"
	"time"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Identity is the name and email recorded on a commit
type Identity struct {
	Name  string
	Email string
}

// Signature stamps the identity with a time
func (i Identity) Signature(when time.Time) object.Signature {
	return object.Signature{Name: i.Name, Email: i.Email, When: when}
}

// ResolveIdentities returns the author and committer identities with git's
// precedence: GIT_AUTHOR_* / GIT_COMMITTER_* environment variables, then the
// author.* / committer.* config keys, then user.*.
func ResolveIdentities(cfg *config.Config, getenv func(string) string) (author Identity, committer Identity, err error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	author = Identity{
		Name:  firstNonEmpty(getenv("GIT_AUTHOR_NAME"), cfg.Author.Name, cfg.User.Name),
		Email: firstNonEmpty(getenv("GIT_AUTHOR_EMAIL"), cfg.Author.Email, cfg.User.Email),
	}
	committer = Identity{
		Name:  firstNonEmpty(getenv("GIT_COMMITTER_NAME"), cfg.Committer.Name, cfg.User.Name),
		Email: firstNonEmpty(getenv("GIT_COMMITTER_EMAIL"), cfg.Committer.Email, cfg.User.Email),
	}

	if author.Name == "" || committer.Name == "" {
		return Identity{}, Identity{}, fmt.Errorf("identity unknown: user.name is not set (run: git config user.name \"Your Name\")")
	}
	if author.Email == "" || committer.Email == "" {
		return Identity{}, Identity{}, fmt.Errorf("identity unknown: user.email is not set (run: git config user.email \"you@example.com\")")
	}
	return author, committer, nil
}

// Signatures returns author and committer signatures for a new commit, reading
// the repository config merged over the global config.
func (r *Repository) Signatures(now time.Time) (author object.Signature, committer object.Signature, err error) {
	cfg, err := r.ConfigScoped(config.GlobalScope)
	if err != nil {
		return object.Signature{}, object.Signature{}, fmt.Errorf("failed to read git config: %w", err)
	}

	a, c, err := ResolveIdentities(cfg, os.Getenv)
	if err != nil {
		return object.Signature{}, object.Signature{}, err
	}
	return a.Signature(now), c.Signature(now), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

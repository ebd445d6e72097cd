package source

import (
	"sync"

	git "github.com/go-git/go-git/v5"
	gitPlumbing "github.com/go-git/go-git/v5/plumbing"
	"github.com/hashicorp/go-hclog"
)

// New creates a new instance of Checkout.
func New(l hclog.Logger) *Checkout {
	return &Checkout{
		l:  l.Named("git"),
		mu: new(sync.Mutex),
	}
}

// SetBasepath points the checkout at its location on disk.
func (c *Checkout) SetBasepath(p string) {
	c.path = p
}

// SetURL points the checkout at the upstream project repository.
func (c *Checkout) SetURL(u string) {
	c.url = u
}

// Bootstrap clones the project repository if it is not already
// present on disk.
func (c *Checkout) Bootstrap() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if repo, err := git.PlainOpen(c.path); err == nil {
		c.repo = repo
		return nil
	}

	c.l.Debug("Cloning repository", "path", c.path, "url", c.url)
	repo, err := git.PlainClone(c.path, false, &git.CloneOptions{URL: c.url})
	if err != nil {
		c.l.Trace("Error running PlainClone")
		return err
	}
	c.repo = repo
	return nil
}

// At gets the current HEAD hash.
func (c *Checkout) At() (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		c.l.Trace("Error getting HEAD")
		return "", err
	}
	return head.Hash().String(), nil
}

// Checkout pins the tree to a particular revision and returns the
// files changed relative to the previous position.
func (c *Checkout) Checkout(commit string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	oldHead, err := c.repo.Head()
	if err != nil {
		c.l.Trace("Error getting old HEAD")
		return nil, err
	}
	if oldHead.Hash().String() == commit {
		c.l.Trace("Nothing changed in checkout")
		return []string{}, nil
	}
	oldCommit, err := c.repo.CommitObject(oldHead.Hash())
	if err != nil {
		c.l.Trace("Error getting old CommitObject")
		return nil, err
	}
	c.l.Debug("Attempting to checkout in git repository", "path", c.path,
		"old", oldHead.Hash().String(), "new", commit)

	worktree, err := c.repo.Worktree()
	if err != nil {
		c.l.Trace("Error getting worktree")
		return nil, err
	}
	newHash := gitPlumbing.NewHash(commit)
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: newHash, Force: true}); err != nil {
		c.l.Trace("Error checking out")
		return nil, err
	}

	newCommit, err := c.repo.CommitObject(newHash)
	if err != nil {
		c.l.Trace("Error getting new CommitObject")
		return nil, err
	}
	diff, err := newCommit.Patch(oldCommit)
	if err != nil {
		c.l.Trace("Error getting patch")
		return nil, err
	}
	diffFileStats := diff.Stats()
	changedFiles := make([]string, len(diffFileStats))
	for i := range diffFileStats {
		c.l.Trace("File was changed in checkout", "path", diffFileStats[i].Name)
		changedFiles[i] = diffFileStats[i].Name
	}
	c.l.Debug("Files were changed in checkout", "count", len(changedFiles))

	return changedFiles, nil
}

// Fetch updates from origin.
func (c *Checkout) Fetch() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l.Debug("Fetching origin for git repository", "path", c.path)
	err := c.repo.Fetch(&git.FetchOptions{RemoteName: "origin"})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		c.l.Trace("Error fetching")
		return err
	}
	return nil
}

package resolver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/masmgr/hglineage/internal/hg"
	"golang.org/x/sync/singleflight"
)

// repoCache memoizes resolved sub-repositories by lowercase name. At most one
// resolution per name is in flight; other callers wait for its result.
//
// waits records, for every in-flight resolution, the name it is currently
// waiting on. A new wait that would close a loop in this graph is refused
// with ErrSubRepositoryCycle instead of blocking.
type repoCache struct {
	mu    sync.Mutex
	repos map[string]*hg.Repository
	waits map[string]string
	group singleflight.Group
}

func newRepoCache() *repoCache {
	return &repoCache{
		repos: make(map[string]*hg.Repository),
		waits: make(map[string]string),
	}
}

func (c *repoCache) get(key string) (*hg.Repository, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	repo, ok := c.repos[key]
	return repo, ok
}

// getOrResolve returns the cached repository for key, running resolve when
// there is none. waiter is the key of the resolution asking, or "" for a root.
// Failures are not cached.
func (c *repoCache) getOrResolve(ctx context.Context, waiter, key string, resolve func() (*hg.Repository, error)) (*hg.Repository, error) {
	c.mu.Lock()
	if repo, ok := c.repos[key]; ok {
		c.mu.Unlock()
		return repo, nil
	}
	if waiter != "" {
		if chain := c.waitChain(waiter, key); chain != nil {
			c.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrSubRepositoryCycle, strings.Join(chain, " -> "))
		}
		c.waits[waiter] = key
	}
	c.mu.Unlock()

	if waiter != "" {
		defer func() {
			c.mu.Lock()
			delete(c.waits, waiter)
			c.mu.Unlock()
		}()
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		if repo, ok := c.get(key); ok {
			return repo, nil
		}
		repo, err := resolve()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.repos[key] = repo
		c.mu.Unlock()
		return repo, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*hg.Repository), nil
	}
}

// waitChain follows the waits starting at key and returns the loop
// waiter -> key -> ... -> waiter when waiter would end up waiting on itself,
// or nil. c.mu must be held.
func (c *repoCache) waitChain(waiter, key string) []string {
	chain := []string{waiter, key}
	seen := map[string]bool{key: true}
	for next := key; next != waiter; {
		var ok bool
		next, ok = c.waits[next]
		if !ok || seen[next] {
			return nil
		}
		seen[next] = true
		chain = append(chain, next)
	}
	return chain
}

func (c *repoCache) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.repos))
	for name := range c.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

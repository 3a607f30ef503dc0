package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/Project-Sylos/Folio/internal/types"
	log "github.com/sirupsen/logrus"
)

// Source fetches the signed-in account
type Source interface {
	CurrentUser(ctx context.Context) (*types.UserInfo, error)
}

// Context is the process-wide session: the current user is fetched on
// first use, shared by every component and dropped on a 401.
type Context struct {
	src Source

	mu   sync.Mutex
	user *types.UserInfo
}

// New creates a session backed by src
func New(src Source) *Context {
	return &Context{src: src}
}

// Current returns the cached user, fetching it if needed
func (c *Context) Current(ctx context.Context) (*types.UserInfo, error) {
	c.mu.Lock()
	if c.user != nil {
		user := *c.user
		c.mu.Unlock()
		return &user, nil
	}
	c.mu.Unlock()

	user, err := c.src.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}

	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
	log.Debugf("[session] signed in as %s (admin=%t)", user.Username, user.IsAdmin)

	copied := *user
	return &copied, nil
}

// Cached returns the user without fetching; ok is false when none is held
func (c *Context) Cached() (types.UserInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return types.UserInfo{}, false
	}
	return *c.user, true
}

// Invalidate forgets the current user so the next Current call refetches
func (c *Context) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user != nil {
		log.Infof("[session] session for %s invalidated", c.user.Username)
	}
	c.user = nil
}

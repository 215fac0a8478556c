package analytics

import (
	"sync"

	"github.com/abhisek/quizlab/internal/quiz"
)

// Cache keeps the latest report per user. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	reports map[string]*quiz.AnalysisReport
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{reports: make(map[string]*quiz.AnalysisReport)}
}

// Get returns the cached report for userID.
func (c *Cache) Get(userID string) (*quiz.AnalysisReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.reports[userID]
	return r, ok
}

// Set stores r unless a newer report is already cached.
func (c *Cache) Set(r *quiz.AnalysisReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.reports[r.UserID]; ok && cur.CreatedAt.After(r.CreatedAt) {
		return
	}
	c.reports[r.UserID] = r
}

// Invalidate drops the cached report for userID.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.reports, userID)
}

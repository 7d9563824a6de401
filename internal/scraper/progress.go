package scraper

import (
	"sync"
	"time"
)

// ProgressStatus represents the current status of an import run
type ProgressStatus string

const (
	StatusIdle      ProgressStatus = "idle"
	StatusListing   ProgressStatus = "listing"
	StatusImporting ProgressStatus = "importing"
	StatusCompleted ProgressStatus = "completed"
	StatusFailed    ProgressStatus = "failed"
	StatusCancelled ProgressStatus = "cancelled"
)

// ProgressUpdate represents a single progress update
type ProgressUpdate struct {
	RunID         string         `json:"run_id,omitempty"`
	Status        ProgressStatus `json:"status"`
	Message       string         `json:"message"`
	CurrentItem   int            `json:"current_item"`
	TotalItems    int            `json:"total_items"`
	ArticlesAdded int            `json:"articles_added"`
	NewsSlug      string         `json:"news_slug,omitempty"` // slug of the record just created
	Timestamp     time.Time      `json:"timestamp"`
}

// ProgressTracker tracks the progress of import runs and fans updates out
// to subscribers
type ProgressTracker struct {
	mu        sync.RWMutex
	current   ProgressUpdate
	listeners []chan ProgressUpdate
	active    bool
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		current: ProgressUpdate{
			Status:    StatusIdle,
			Timestamp: time.Now(),
		},
	}
}

// Begin marks a run as active and resets the counters. It returns false if
// another run is already active.
func (pt *ProgressTracker) Begin(runID string) bool {
	pt.mu.Lock()
	if pt.active {
		pt.mu.Unlock()
		return false
	}
	pt.active = true
	pt.mu.Unlock()

	pt.modify(func(u *ProgressUpdate) {
		*u = ProgressUpdate{
			RunID:   runID,
			Status:  StatusListing,
			Message: "Collecting listing pages",
		}
	})
	return true
}

// Finish records the final status and marks the tracker inactive
func (pt *ProgressTracker) Finish(status ProgressStatus, message string) {
	pt.modify(func(u *ProgressUpdate) {
		u.Status = status
		u.Message = message
		u.NewsSlug = ""
	})

	pt.mu.Lock()
	pt.active = false
	pt.mu.Unlock()
}

// modify applies fn to the current progress and broadcasts the result
func (pt *ProgressTracker) modify(fn func(*ProgressUpdate)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	fn(&pt.current)
	pt.current.Timestamp = time.Now()
	update := pt.current

	// Send to all listeners
	for _, listener := range pt.listeners {
		select {
		case listener <- update:
		default:
			// Skip if channel is full
		}
	}
}

// UpdateStatus updates just the status and message
func (pt *ProgressTracker) UpdateStatus(status ProgressStatus, message string) {
	pt.modify(func(u *ProgressUpdate) {
		u.Status = status
		u.Message = message
		u.NewsSlug = ""
	})
}

// UpdateProgress updates the item counts
func (pt *ProgressTracker) UpdateProgress(current, total int, message string) {
	pt.modify(func(u *ProgressUpdate) {
		u.CurrentItem = current
		u.TotalItems = total
		u.Message = message
		u.NewsSlug = ""
	})
}

// RecordCreated increments the count of news records added
func (pt *ProgressTracker) RecordCreated(slug string) {
	pt.modify(func(u *ProgressUpdate) {
		u.ArticlesAdded++
		u.NewsSlug = slug
	})
}

// GetCurrent returns the current progress
func (pt *ProgressTracker) GetCurrent() ProgressUpdate {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return pt.current
}

// Subscribe creates a new listener channel for progress updates
func (pt *ProgressTracker) Subscribe() chan ProgressUpdate {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	ch := make(chan ProgressUpdate, 10)
	pt.listeners = append(pt.listeners, ch)

	// Send current state immediately
	ch <- pt.current

	return ch
}

// Unsubscribe removes a listener channel
func (pt *ProgressTracker) Unsubscribe(ch chan ProgressUpdate) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	for i, listener := range pt.listeners {
		if listener == ch {
			pt.listeners = append(pt.listeners[:i], pt.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

// IsActive returns whether a run is currently active
func (pt *ProgressTracker) IsActive() bool {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return pt.active
}

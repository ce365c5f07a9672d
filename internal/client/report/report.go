// Package report turns sync outcomes into operator-facing text and fans
// results out to subscribers.
package report

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/secrimpo/internal/client/client"
	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/client/services"
)

const (
	NothingToSync = "Nothing to sync"
	NoneSynced    = "No records were synchronized"
)

// Format summarizes a completed attempt. Zero new or duplicate parts are
// omitted and per-record errors are appended as a count.
func Format(r models.SyncResult) string {
	if r.NothingToSync {
		return NothingToSync
	}

	totals := r.Totals()
	processed := totals.Total()

	var b strings.Builder
	if processed == 0 {
		b.WriteString(NoneSynced)
	} else {
		fmt.Fprintf(&b, "Sync complete: %d %s processed", processed, plural(processed, "record", "records"))
		if totals.New > 0 {
			fmt.Fprintf(&b, ", %d new", totals.New)
		}
		if totals.Duplicate > 0 {
			fmt.Fprintf(&b, ", %d already existed", totals.Duplicate)
		}
	}

	if n := len(r.Errors); n > 0 {
		fmt.Fprintf(&b, " (%d %s)", n, plural(n, "error", "errors"))
	}
	return b.String()
}

// Detailed renders Format plus one line per category and per error.
func Detailed(r models.SyncResult) string {
	var b strings.Builder
	b.WriteString(r.Summary)
	if r.Summary == "" {
		b.WriteString(Format(r))
	}

	rows := []struct {
		name string
		c    models.CategoryCounts
	}{
		{"Personnel", r.Personnel},
		{"Owners", r.Owners},
		{"Incidents", r.Incidents},
	}
	for _, row := range rows {
		if row.c.Total() == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n  %-10s %d new, %d already existed", row.name+":", row.c.New, row.c.Duplicate)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "\n  error: %s", e)
	}
	return b.String()
}

// FormatError maps a failed attempt to one human-readable message.
func FormatError(err error) string {
	var se *client.ServerError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrSyncInProgress):
		return "A sync is already in progress, wait for it to finish"
	case errors.Is(err, services.ErrOffline):
		return "Server is offline, records stay stored locally"
	case errors.Is(err, services.ErrNoUser):
		return "Set a sync user before synchronizing"
	case err == services.ErrRejected:
		return "Server rejected the sync"
	case errors.Is(err, services.ErrRejected):
		return "Server rejected the sync: " + strings.TrimPrefix(err.Error(), services.ErrRejected.Error()+": ")
	case errors.As(err, &se):
		return "Server error: " + se.Error()
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later"
	default:
		return "Sync failed: " + err.Error()
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Reporter delivers results to registered hooks. It satisfies
// services.Publisher.
type Reporter struct {
	mu     sync.Mutex
	hooks  map[int]func(models.SyncResult)
	nextID int
}

func NewReporter() *Reporter {
	return &Reporter{hooks: make(map[int]func(models.SyncResult))}
}

// Subscribe registers fn and returns a func that removes it.
func (r *Reporter) Subscribe(fn func(models.SyncResult)) (cancel func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.hooks[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.hooks, id)
		r.mu.Unlock()
	}
}

// Summarize implements services.Publisher.
func (r *Reporter) Summarize(result models.SyncResult) string {
	return Format(result)
}

// Publish calls every hook with result, outside the lock.
func (r *Reporter) Publish(result models.SyncResult) {
	r.mu.Lock()
	hooks := make([]func(models.SyncResult), 0, len(r.hooks))
	for _, fn := range r.hooks {
		hooks = append(hooks, fn)
	}
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(result)
	}
}

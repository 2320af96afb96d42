// Package assign picks a worker for a task that was submitted without an
// explicit assignment.
package assign

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/nexusai/dispatch-api/internal/store"
)

// DefaultWorkerID is the last-resort assignment when no template matches,
// no keyword scores, and the worker store yields nothing.
const DefaultWorkerID = "alex"

// templateWorkers maps a task template tag directly to a worker.
var templateWorkers = map[string]string{
	"blog":      "alex",
	"social":    "mia",
	"design":    "bob",
	"code":      "charlie",
	"marketing": "david",
	"custom":    "alex",
}

// workerKeywords is the keyword affinity set per worker, scored against the
// task text. Matching is plain substring containment, not tokenized: a
// keyword may match inside an unrelated longer word ("report" inside
// "rapport"). That imprecision is accepted and kept for compatibility with
// how assignments have always behaved.
var workerKeywords = []struct {
	id       string
	keywords []string
}{
	{"alex", []string{"blog", "copy", "write", "content", "article", "post", "story"}},
	{"bob", []string{"design", "ui", "ux", "visual", "logo", "illustration", "brand"}},
	{"charlie", []string{"code", "develop", "build", "app", "feature", "bug", "python", "react", "api"}},
	{"david", []string{"marketing", "campaign", "growth", "crm", "ad", "analytics"}},
	{"eve", []string{"data", "analy", "report", "dashboard", "sql", "trend"}},
	{"sam", []string{"support", "ticket", "help", "faq", "customer", "chat"}},
	{"sophia", []string{"seo", "search", "optimiz", "keyword", "backlink"}},
	{"mia", []string{"social", "media", "engage", "post", "brand", "schedule"}},
	{"paul", []string{"project", "manage", "task", "deadline", "remind", "team"}},
	{"quinn", []string{"test", "qa", "bug", "regress", "automation"}},
	{"riley", []string{"sales", "lead", "crm", "outreach", "follow"}},
	{"harper", []string{"hr", "resume", "interview", "onboard", "policy"}},
	{"luna", []string{"legal", "contract", "review", "compliance", "law"}},
	{"finley", []string{"finance", "expense", "invoice", "budget", "summary"}},
	{"sage", []string{"research", "summary", "brief", "fact", "analy"}},
	{"taylor", []string{"translate", "localiz", "language", "proofread", "edit"}},
}

// Resolver picks a worker for a task. Resolution never fails: template
// lookup first, then keyword scoring, then a uniform random pick from the
// worker store, then the fixed default.
type Resolver struct {
	workers store.WorkerStore
	logger  *slog.Logger
}

// NewResolver creates a Resolver reading its random fallback pool from the
// given worker store.
func NewResolver(workers store.WorkerStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		workers: workers,
		logger:  logger,
	}
}

// Resolve returns the worker ID for the given template, title and
// description. Ties on keyword score keep the first-seen highest scorer.
func (r *Resolver) Resolve(ctx context.Context, template, title, description string) string {
	if template != "" {
		if id, ok := templateWorkers[template]; ok {
			return id
		}
	}

	text := strings.ToLower(title + " " + description)

	bestID := ""
	bestScore := 0
	for _, entry := range workerKeywords {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestID = entry.id
		}
	}

	if bestID != "" {
		return bestID
	}

	// Nothing matched; fall back to a random known worker.
	ids, err := r.workers.ListIDs(ctx)
	if err != nil {
		r.logger.DebugContext(ctx, "worker list unavailable, using default assignment",
			"error", err)
		return DefaultWorkerID
	}
	if len(ids) == 0 {
		return DefaultWorkerID
	}

	return ids[rand.Intn(len(ids))]
}

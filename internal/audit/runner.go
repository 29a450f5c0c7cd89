package audit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pageaudit/pageaudit-cli/internal/artifacts"
)

// CollectFunc materializes the artifact bundle for one target page.
type CollectFunc func(ctx context.Context, target string) (*artifacts.Bundle, error)

// LogFunc is a callback invoked after every audit, for audit-trail
// logging.
type LogFunc func(target string, result Result, duration float64) error

// PageResult groups the audit results for a single target.
type PageResult struct {
	Target    string    `json:"target"`
	FinalURL  string    `json:"final_url,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
	Results   []Result  `json:"results,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Passed reports whether artifact collection succeeded and every audit
// on the page passed.
func (p PageResult) Passed() bool {
	if p.Error != "" {
		return false
	}
	for _, r := range p.Results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// Runner orchestrates audit execution across multiple targets with
// bounded concurrency and global rate limiting.
type Runner struct {
	Concurrency int           // Maximum number of pages audited at once
	RateLimit   int           // Requests per second (global)
	Timeout     time.Duration // Timeout for each page
}

// RunAudits collects artifacts for every target and evaluates each
// audit against them. Output order matches the input target order.
func (r *Runner) RunAudits(ctx context.Context, targets []string, audits []Audit, collect CollectFunc, logFn LogFunc) []PageResult {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	rateLimit := r.RateLimit
	if rateLimit <= 0 {
		rateLimit = 1
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Limit(rateLimit), rateLimit)

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	pages := make([]PageResult, len(targets))

	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			_ = limiter.Wait(ctx)

			pageCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			pages[i] = auditPage(pageCtx, target, audits, collect, logFn)
		}(i, target)
	}

	wg.Wait()
	return pages
}

func auditPage(ctx context.Context, target string, audits []Audit, collect CollectFunc, logFn LogFunc) PageResult {
	page := PageResult{Target: target, CheckedAt: time.Now().UTC()}

	bundle, err := collect(ctx, target)
	if err != nil {
		page.Error = err.Error()
		return page
	}
	page.FinalURL = bundle.FinalURL

	for _, a := range audits {
		start := time.Now()
		result, err := a.Run(bundle)
		if err != nil {
			meta := a.Meta()
			result = Result{
				AuditID:   meta.ID,
				Title:     meta.Title,
				CheckedAt: time.Now().UTC(),
				Error:     err.Error(),
			}
		}

		if logFn != nil {
			_ = logFn(target, result, time.Since(start).Seconds())
		}

		page.Results = append(page.Results, result)
	}

	return page
}

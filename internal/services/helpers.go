package services

import (
	"context"
	"strings"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Actor identifies who performs a mutation.
type Actor struct {
	UserID    string
	Admin     bool
	IPAddress string
	UserAgent string
}

func (a Actor) userIDPtr() *string {
	id := strings.TrimSpace(a.UserID)
	if id == "" {
		return nil
	}
	return &id
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// NormalisePage applies the default paging limits used by per-user listings.
func NormalisePage(page, perPage int) (int, int) {
	return normalisePage(page, perPage, defaultPerPage, maxPerPage)
}

// normalisePage clamps page and perPage, falling back to defaults.
func normalisePage(page, perPage, fallback, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if fallback <= 0 {
		fallback = defaultPerPage
	}
	if limit <= 0 {
		limit = maxPerPage
	}
	if perPage <= 0 {
		perPage = fallback
	}
	if perPage > limit {
		perPage = limit
	}
	return page, perPage
}

func stringPtr(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

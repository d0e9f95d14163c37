package casestore

import (
	"context"
	"errors"
	"sort"

	"github.com/joelkehle/claim-advocate/internal/claims"
)

var ErrNotFound = errors.New("case not found")

// Store persists case records. Put inserts or replaces by CaseID.
type Store interface {
	Put(ctx context.Context, c claims.Case) error
	Get(ctx context.Context, id string) (claims.Case, error)
	// List returns cases oldest first; an empty status returns every case.
	List(ctx context.Context, status claims.CaseStatus) ([]claims.Case, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

func sortCases(cases []claims.Case) {
	sort.SliceStable(cases, func(i, j int) bool {
		if !cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].CreatedAt.Before(cases[j].CreatedAt)
		}
		return cases[i].CaseID < cases[j].CaseID
	})
}

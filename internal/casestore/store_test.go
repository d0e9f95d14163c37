package casestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/claim-advocate/internal/claims"
	"github.com/joelkehle/claim-advocate/internal/knowledge"
	"github.com/joelkehle/claim-advocate/internal/scoring"
	"github.com/joelkehle/claim-advocate/internal/strategy"
)

func sampleCase(t *testing.T, id string, created time.Time) claims.Case {
	t.Helper()
	ec := claims.ExtractedCase{
		DocumentKind:         claims.KindDenialLetter,
		ExtractionConfidence: 0.9,
		PolicyFields:         map[string]string{"policy_number": "P123"},
		MonetaryAmounts:      []string{"$1,000"},
		KeyDates:             []string{"01/01/2024"},
		Parties:              []string{"John Doe"},
		CoverageTypes:        []string{"collision"},
		DenialReasons:        []string{"policy exclusion"},
		SettlementAmounts:    []float64{},
	}
	kb := knowledge.Static(knowledge.Default())
	a, err := scoring.NewEngine(kb).Analyze(ec)
	require.NoError(t, err)
	s, err := strategy.NewPlanner(kb).Generate(ec, a)
	require.NoError(t, err)
	return claims.NewCase(id, ec, a, s, created)
}

type storeFactory func(t *testing.T, path string) Store

func openSQLite(t *testing.T, path string) Store {
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	return s
}

func openFile(t *testing.T, path string) Store {
	s, err := NewFileStore(path)
	require.NoError(t, err)
	return s
}

var factories = map[string]struct {
	open storeFactory
	name string
}{
	"sqlite": {openSQLite, "cases.db"},
	"file":   {openFile, "cases.json"},
}

func TestStoreContract(t *testing.T) {
	for kind, f := range factories {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), f.name)
			s := f.open(t, path)
			t.Cleanup(func() { s.Close() })
			require.NoError(t, s.Ping(ctx))

			base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
			first := sampleCase(t, "case-b", base)
			second := sampleCase(t, "case-a", base.Add(time.Minute))
			require.NoError(t, s.Put(ctx, second))
			require.NoError(t, s.Put(ctx, first))

			got, err := s.Get(ctx, "case-b")
			require.NoError(t, err)
			assert.Equal(t, first, got)

			all, err := s.List(ctx, "")
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "case-b", all[0].CaseID)
			assert.Equal(t, "case-a", all[1].CaseID)

			updated := second
			updated.Status = claims.StatusCompleted
			stamp := base.Add(time.Hour)
			updated.UpdatedAt = &stamp
			require.NoError(t, s.Put(ctx, updated))

			done, err := s.List(ctx, claims.StatusCompleted)
			require.NoError(t, err)
			require.Len(t, done, 1)
			assert.Equal(t, updated, done[0])

			require.NoError(t, s.Delete(ctx, "case-b"))
			_, err = s.Get(ctx, "case-b")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, "case-b"), ErrNotFound)
		})
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	for kind, f := range factories {
		t.Run(kind, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), f.name)
			c := sampleCase(t, "persisted", time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

			s1 := f.open(t, path)
			require.NoError(t, s1.Put(ctx, c))
			require.NoError(t, s1.Close())

			s2 := f.open(t, path)
			t.Cleanup(func() { s2.Close() })
			got, err := s2.Get(ctx, "persisted")
			require.NoError(t, err)
			assert.Equal(t, c, got)
		})
	}
}

func TestGetMissing(t *testing.T) {
	for kind, f := range factories {
		t.Run(kind, func(t *testing.T) {
			s := f.open(t, filepath.Join(t.TempDir(), f.name))
			t.Cleanup(func() { s.Close() })
			_, err := s.Get(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotFound)
			list, err := s.List(context.Background(), claims.StatusActive)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/redress/internal/db"
)

// testDB opens a fresh in-memory database with one subject and one item so
// foreign keys on executions and attempts are satisfiable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.Exec(`INSERT INTO subjects (id, plan_tier) VALUES ('s1', 'plus')`)
	require.NoError(t, err)

	opened := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = database.Exec(
		`INSERT INTO items (id, subject_id, item_type, furnisher, balance_cents, payment_status, opened_at, reported_at, identity_theft_flag)
		 VALUES ('i1', 's1', 'collection', 'Axiom Recovery LLC', 312500, 'collection', ?, ?, 0)`,
		opened, opened,
	)
	require.NoError(t, err)

	return database
}

func testCtx() context.Context {
	return context.Background()
}

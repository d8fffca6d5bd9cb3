package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustTx(t *testing.T, amount, category, date string, kind core.Kind) core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction(amount, category, date, kind)
	require.NoError(t, err)
	return tx
}

func TestRepository_EmptyLoad(t *testing.T) {
	repo := newTestRepository(t)

	txs, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestRepository_SaveLoadKeepsOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	in := []core.Transaction{
		mustTx(t, "25", "Food", "2024-01-10", core.Expense),
		mustTx(t, "5", "Food", "2024-01-20", core.Expense),
		mustTx(t, "1000", "Salary", "2024-01-05", core.Income),
	}

	require.NoError(t, repo.Save(ctx, in))
	out, err := repo.Load(ctx)
	require.NoError(t, err)

	require.Len(t, out, len(in))
	for i := range in {
		require.Equal(t, in[i].Key(), out[i].Key())
		require.True(t, in[i].Amount.Equal(out[i].Amount))
	}
}

func TestRepository_SaveReplacesPreviousContent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []core.Transaction{
		mustTx(t, "25", "Food", "2024-01-10", core.Expense),
		mustTx(t, "1000", "Salary", "2024-01-05", core.Income),
	}))
	require.NoError(t, repo.Save(ctx, []core.Transaction{
		mustTx(t, "3.5", "Books", "2024-02-01", core.Expense),
	}))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Books", out[0].Category)
	require.Equal(t, "3.5", core.FormatAmount(out[0].Amount))
}

func TestRepository_DuplicateTripleRollsBack(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	first := []core.Transaction{mustTx(t, "1", "Food", "2024-01-10", core.Expense)}
	require.NoError(t, repo.Save(ctx, first))

	dup := []core.Transaction{
		mustTx(t, "1", "Food", "2024-01-10", core.Expense),
		mustTx(t, "2", "Food", "2024-01-10", core.Expense),
	}
	require.Error(t, repo.Save(ctx, dup))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

func TestMigrateSchema_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	ctx := context.Background()

	repo, err := NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, []core.Transaction{mustTx(t, "150.0", "Groceries", "2024-01-15", core.Expense)}))

	// Migrating an up-to-date database again is a no-op on the same handle.
	version, err := migrateSchema(repo.db)
	require.NoError(t, err)
	require.Equal(t, uint(1), version)
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	out, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "150.0", core.FormatAmount(out[0].Amount))
}

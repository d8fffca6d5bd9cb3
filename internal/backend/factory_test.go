package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/storage/csvfile"
	"fintrack/internal/storage/sqlite"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		require.True(t, bt.IsValid(), bt)
	}
	require.False(t, BackendType("memory").IsValid())
	require.Equal(t, []string{"csv", "sqlite", "sheets"}, GetBackendTypeStrings())
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "memory"})
	require.ErrorContains(t, err, "invalid backend type")

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         "csv",
		DataFile:            "finances.csv",
		GoogleSpreadsheetID: "sheet",
		GoogleSheetName:     "Transactions",
	})
	require.NoError(t, err)
	require.Equal(t, CSVBackend, cfg.Type)
	require.Equal(t, "finances.csv", cfg.DataFile)
	require.Equal(t, SheetsBackend, cfg.WithType(SheetsBackend).Type)
	require.Equal(t, CSVBackend, cfg.Type)
}

func TestConfig_Validate(t *testing.T) {
	require.Error(t, Config{Type: CSVBackend}.Validate())
	require.Error(t, Config{Type: SQLiteBackend}.Validate())
	require.Error(t, Config{Type: SheetsBackend}.Validate())
	require.NoError(t, Config{Type: CSVBackend, DataFile: "x.csv"}.Validate())
	require.EqualError(t, Config{Type: "memory"}.Validate(), "invalid backend type: memory (must be one of [csv sqlite sheets])")
}

func TestFactory_CreatesLocalBackends(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()
	dir := t.TempDir()

	res, err := f.CreateBackend(ctx, Config{Type: CSVBackend, DataFile: filepath.Join(dir, "finances.csv")})
	require.NoError(t, err)
	require.IsType(t, &csvfile.File{}, res.Persister)
	require.NoError(t, res.Close())

	res, err = f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "fintrack.db")})
	require.NoError(t, err)
	require.IsType(t, &sqlite.Repository{}, res.Persister)
	require.NoError(t, res.Close())
}

func TestFactory_RejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "memory"})
	require.Error(t, err)
}

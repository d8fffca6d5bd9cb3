package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func setupEnv(t *testing.T) (dataFile, chartDir string) {
	t.Helper()
	dir := t.TempDir()
	dataFile = filepath.Join(dir, "finances.csv")
	chartDir = filepath.Join(dir, "images")
	t.Setenv("DATA_BACKEND", "csv")
	t.Setenv("DATA_FILE", dataFile)
	t.Setenv("CHART_DIR", chartDir)
	t.Setenv("AMQP_URL", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PORT", "8081")
	t.Setenv("SYNC_INTERVAL", "5m")
	t.Setenv("SUMMARY_CACHE_SIZE", "16")
	return dataFile, chartDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range newRootCmd().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "add", "summary", "chart"} {
		require.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestAddAndSummary(t *testing.T) {
	dataFile, _ := setupEnv(t)
	today := time.Now().Format(core.DateLayout)

	out, err := run(t, "summary")
	require.NoError(t, err)
	require.Equal(t, "no data for "+time.Now().Format(core.MonthLayout)+"\n", out)

	_, err = run(t, "add", "--amount", "10", "--category", "Food", "--date", today, "--kind", "expense")
	require.NoError(t, err)
	_, err = run(t, "add", "--amount", "15", "--category", "Food", "--date", today)
	require.NoError(t, err)
	_, err = run(t, "add", "--amount", "1000", "--category", "Salary", "--date", today, "--kind", "income")
	require.NoError(t, err)

	raw, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	require.Equal(t,
		"amount,category,date,type\n25,Food,"+today+",expense\n1000,Salary,"+today+",income\n",
		string(raw))

	out, err = run(t, "summary")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[2], "Food")
	require.Contains(t, lines[2], "25.00")
	require.Contains(t, lines[3], "1000.00")
}

func TestAdd_InvalidInputLeavesFileAlone(t *testing.T) {
	dataFile, _ := setupEnv(t)

	_, err := run(t, "add", "--amount", "abc", "--category", "Food", "--date", "2024-01-10")
	require.ErrorContains(t, err, "invalid input")
	_, statErr := os.Stat(dataFile)
	require.True(t, os.IsNotExist(statErr))

	_, err = run(t, "add", "--category", "Food", "--date", "2024-01-10")
	require.ErrorContains(t, err, "amount")
}

func TestChart(t *testing.T) {
	_, chartDir := setupEnv(t)
	today := time.Now().Format(core.DateLayout)

	out, err := run(t, "chart")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "no data for "))

	_, err = run(t, "add", "--amount", "12.5", "--category", "Food", "--date", today)
	require.NoError(t, err)

	out, err = run(t, "chart")
	require.NoError(t, err)
	want := filepath.Join(chartDir, "chart_"+time.Now().Format(core.MonthLayout)+".png")
	require.Equal(t, want+"\n", out)
	require.FileExists(t, want)
}

func TestChart_Stdout(t *testing.T) {
	_, chartDir := setupEnv(t)
	today := time.Now().Format(core.DateLayout)

	_, err := run(t, "add", "--amount", "12.5", "--category", "Food", "--date", today)
	require.NoError(t, err)

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"chart", "--stdout"})
	require.NoError(t, cmd.Execute())

	require.True(t, bytes.HasPrefix(stdout.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
	require.Empty(t, stderr.String())
	_, statErr := os.Stat(chartDir)
	require.True(t, os.IsNotExist(statErr))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, core.MonthlySummary{
		Month:      "2024-01",
		Categories: []string{"Food", "Salary"},
		Expenses:   []float64{25, 0},
		Incomes:    []float64{0, 1000},
	}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "Expenses and incomes for 2024-01", strings.TrimSpace(lines[0]))
	// right aligned columns end at the same offset
	require.Equal(t, len(lines[2]), len(lines[3]))
}

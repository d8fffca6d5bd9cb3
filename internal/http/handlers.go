package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// ledgerChanged is the htmx event that refreshes the list and chart partials.
const ledgerChanged = "ledger:changed"

type indexData struct {
	Today        string
	Kinds        []core.Kind
	Transactions []core.Transaction
}

type summaryRow struct {
	Category string
	Expense  float64
	Income   float64
}

type chartData struct {
	Month    string
	HasData  bool
	ImageURL string
	Rows     []summaryRow
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := indexData{
		Today:        s.now().Format(core.DateLayout),
		Kinds:        []core.Kind{core.Expense, core.Income},
		Transactions: s.ledger.Transactions(),
	}
	s.render(w, r, "index.html", data)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}

	in := services.TransactionInput{
		Amount:   strings.TrimSpace(r.Form.Get("amount")),
		Category: strings.TrimSpace(r.Form.Get("category")),
		Date:     strings.TrimSpace(r.Form.Get("date")),
		Kind:     strings.TrimSpace(r.Form.Get("kind")),
	}

	tx, err := s.ledger.Record(r.Context(), in)
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "Failed to save transaction",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpCreate,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error saving transaction")
		return
	}

	w.Header().Set("HX-Trigger", ledgerChanged)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Recorded ` +
		template.HTMLEscapeString(tx.Kind.String()+" "+core.FormatAmount(tx.Amount)) + ` (` +
		template.HTMLEscapeString(tx.Category) + `, ` + tx.Date.String() + `)</div>`))
}

func (s *Server) handleTransactionList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.render(w, r, "transactions.html", s.ledger.Transactions())
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path, summary, err := s.reports.RenderMonthlyChart(r.Context())
	data := chartData{Month: s.reports.Month()}
	switch {
	case errors.Is(err, services.ErrNoData):
	case err != nil:
		slog.ErrorContext(r.Context(), "Failed to render chart",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldOperation, applog.OpRender,
			applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Error rendering chart")
		return
	default:
		data.Month = summary.Month
		data.HasData = true
		data.ImageURL = "/charts/" + filepath.Base(path)
		for i, c := range summary.Categories {
			data.Rows = append(data.Rows, summaryRow{Category: c, Expense: summary.Expenses[i], Income: summary.Incomes[i]})
		}
	}
	s.render(w, r, "monthly_chart.html", data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			"template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="error">` + template.HTMLEscapeString(msg) + `</div>`))
}

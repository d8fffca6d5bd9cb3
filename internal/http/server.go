package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	appweb "fintrack/web"
)

// Recorder adds transactions and lists what the ledger holds.
type Recorder interface {
	Record(ctx context.Context, in services.TransactionInput) (core.Transaction, error)
	Transactions() []core.Transaction
}

// Reporter produces the current month summary and its chart.
type Reporter interface {
	Month() string
	MonthlySummary(ctx context.Context) (core.MonthlySummary, bool)
	RenderMonthlyChart(ctx context.Context) (string, core.MonthlySummary, error)
}

// Server is the web front end of the ledger.
type Server struct {
	http.Server
	templates *template.Template
	ledger    Recorder
	reports   Reporter
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	now       func() time.Time

	stopLimiter  context.CancelFunc
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
// Rendered charts are read back from chartDir under /charts/.
func NewServer(addr string, ledger Recorder, reports Reporter, chartDir string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:           addr,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 16,
		},
		ledger:  ledger,
		reports: reports,
		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		tracer:  trace.NewMiddleware(security.ClientIP),
		now:     time.Now,
	}

	limiterCtx, cancel := context.WithCancel(context.Background())
	s.stopLimiter = cancel
	go s.limiter.Run(limiterCtx)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates",
			applog.FieldComponent, applog.ComponentHTTP,
			applog.FieldError, err)
		t = nil
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	charts := http.StripPrefix("/charts/", http.FileServer(http.Dir(chartDir)))
	mux.Handle("/charts/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The file is overwritten on every render.
		w.Header().Set("Cache-Control", "no-cache")
		charts.ServeHTTP(w, r)
	}))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/ui/transactions", s.handleTransactionList)
	mux.HandleFunc("/ui/monthly-chart", s.handleMonthlyChart)

	var h http.Handler = mux
	h = s.limiter.Middleware(security.ClientIP, http.MethodPost)(h)
	h = security.Headers(security.DefaultHeadersConfig())(h)
	h = s.tracer.Handler(h)
	s.Handler = h

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.stopLimiter()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics reports request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

var templateFuncs = template.FuncMap{
	"amount": core.FormatAmount,
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Package runner drives a systolic.Array to completion outside the core's
// otherwise concurrency- and I/O-free package, and optionally exposes the
// live run over HTTP — the one place permitted to bridge toward the
// teacher's akita-ecosystem monitoring idiom (monitoring.Monitor,
// StartServer) since the synchronous core itself has no use for akita's
// asynchronous engine.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/mtsa/systolic"
)

// ErrBudgetExceeded is returned by Run when the array has not reached
// IsDone within the configured cycle budget — the specification's "an
// external caller may impose a cycle budget on the driver loop."
var ErrBudgetExceeded = errors.New("runner: cycle budget exceeded before the array drained")

// Builder configures a Runner, following the teacher's value-receiver
// With... chaining convention (core/builder.go).
type Builder struct {
	array       *systolic.Array
	cycleBudget int
	httpAddr    string
}

// NewBuilder returns a Builder with no cycle budget (run to completion).
func NewBuilder() Builder {
	return Builder{cycleBudget: -1}
}

// WithArray sets the array to drive. Required.
func (b Builder) WithArray(a *systolic.Array) Builder {
	b.array = a
	return b
}

// WithCycleBudget sets a maximum number of ticks to run before giving up.
// A value <= 0 means unlimited.
func (b Builder) WithCycleBudget(n int) Builder {
	b.cycleBudget = n
	return b
}

// WithHTTPAddr sets the listen address for ServeDiagnostics. Leaving this
// unset means ServeDiagnostics cannot be called.
func (b Builder) WithHTTPAddr(addr string) Builder {
	b.httpAddr = addr
	return b
}

// Build validates and returns the configured Runner.
func (b Builder) Build() *Runner {
	if b.array == nil {
		panic("runner: Build called without WithArray")
	}
	return &Runner{
		array:       b.array,
		cycleBudget: b.cycleBudget,
		httpAddr:    b.httpAddr,
	}
}

// Runner drives one systolic.Array's simulation loop and, optionally,
// serves its live status over HTTP.
type Runner struct {
	array       *systolic.Array
	cycleBudget int
	httpAddr    string

	mu      sync.RWMutex
	done    bool
	summary systolic.Summary

	server *http.Server
}

// Run ticks the array until IsDone or the cycle budget is exhausted.
func (r *Runner) Run() (systolic.Summary, error) {
	for cycles := 0; !r.array.IsDone(); cycles++ {
		if r.cycleBudget > 0 && cycles >= r.cycleBudget {
			return systolic.Summary{}, ErrBudgetExceeded
		}
		r.array.Tick()
	}

	summary := r.array.Summarize()

	r.mu.Lock()
	r.done = true
	r.summary = summary
	r.mu.Unlock()

	return summary, nil
}

// Summary returns the most recently computed summary and whether the run
// has completed. Safe to call concurrently with Run, which is the point of
// exposing it to the /summary HTTP handler while Run executes elsewhere.
func (r *Runner) Summary() (systolic.Summary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary, r.done
}

// ServeDiagnostics starts a background HTTP server with /healthz and
// /summary endpoints, registers its graceful shutdown with atexit, and, if
// monitor is non-nil, registers a fresh serial engine against it so the run
// is visible on the monitor's own dashboard.
func (r *Runner) ServeDiagnostics(monitor *monitoring.Monitor) error {
	if r.httpAddr == "" {
		return fmt.Errorf("runner: ServeDiagnostics requires WithHTTPAddr")
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", r.handleHealthz)
	router.HandleFunc("/summary", r.handleSummary)

	r.server = &http.Server{Addr: r.httpAddr, Handler: router}

	if monitor != nil {
		engine := sim.NewSerialEngine()
		monitor.RegisterEngine(engine)
		monitor.StartServer()
	}

	go func() {
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Println("runner: HTTP server error:", err)
		}
	}()

	atexit.Register(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.server.Shutdown(ctx)
	})

	return nil
}

func (r *Runner) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (r *Runner) handleSummary(w http.ResponseWriter, _ *http.Request) {
	summary, done := r.Summary()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"done":             done,
		"clock":            summary.Clock,
		"utilizationPerPE": summary.UtilizationPerPE,
	})
}

// Shutdown stops the diagnostics HTTP server, if one was started.
func (r *Runner) Shutdown(ctx context.Context) error {
	if r.server == nil {
		return nil
	}
	return r.server.Shutdown(ctx)
}

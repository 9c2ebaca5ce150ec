// Package health serves liveness and readiness endpoints for a running
// simulation and the checks behind them.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// ReadinessTimeout bounds one readiness evaluation.
const ReadinessTimeout = 5 * time.Second

// HealthCheck is one named check. Check returns nil when healthy.
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthStatus is the aggregate readiness answer.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the result of one check.
type ComponentHealth struct {
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// HealthChecker holds checks by name.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker returns an empty checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers check, replacing one with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck drops the check called name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// snapshot copies the registered checks sorted by name so they run without
// holding the lock and in a stable order.
func (hc *HealthChecker) snapshot() []HealthCheck {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	out := make([]HealthCheck, 0, len(hc.checks))
	for _, c := range hc.checks {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// CheckHealth runs every check. The status is "healthy" only when all pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}
	for _, check := range hc.snapshot() {
		start := time.Now()
		err := check.Check(ctx)
		result := ComponentHealth{Status: "healthy", DurationMS: time.Since(start).Milliseconds()}
		if err != nil {
			status.Status = "unhealthy"
			result.Status = "unhealthy"
			result.Message = err.Error()
		}
		status.Checks[check.Name()] = result
	}
	return status
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// LivenessHandler answers 200 while the process can serve HTTP at all.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ReadinessHandler runs every check and answers 200 or 503.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ReadinessTimeout)
	defer cancel()

	health := hc.CheckHealth(ctx)
	code := http.StatusOK
	if health.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

// SimulationHealthCheck implements HealthCheck for the tick loop.
type SimulationHealthCheck struct {
	running func() bool
}

// NewSimulationHealthCheck creates a health check for the simulation loop.
func NewSimulationHealthCheck(running func() bool) *SimulationHealthCheck {
	return &SimulationHealthCheck{
		running: running,
	}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check verifies that the simulation is ticking.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	if !s.running() {
		return fmt.Errorf("simulation is not running")
	}
	return nil
}

// ProgressHealthCheck fails when a running simulation has not advanced
// its tick counter since the previous check.
type ProgressHealthCheck struct {
	tick    func() uint64
	running func() bool

	mu      sync.Mutex
	last    uint64
	checked bool
}

// NewProgressHealthCheck creates a stall detector over the simulation tick.
func NewProgressHealthCheck(tick func() uint64, running func() bool) *ProgressHealthCheck {
	return &ProgressHealthCheck{
		tick:    tick,
		running: running,
	}
}

// Name returns the name of this health check.
func (p *ProgressHealthCheck) Name() string {
	return "progress"
}

// Check compares the current tick with the one seen by the previous call.
// The first call and calls while stopped only record the tick.
func (p *ProgressHealthCheck) Check(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.tick()
	stalled := p.checked && p.running() && now == p.last
	p.last, p.checked = now, true
	if stalled {
		return fmt.Errorf("simulation stalled at tick %d", now)
	}
	return nil
}

// IntegrityHealthCheck implements HealthCheck for agent state corruption.
// NaN or Inf in a pose never recovers, so any corrupted agent is fatal.
type IntegrityHealthCheck struct {
	corrupted func() []uint64
}

// NewIntegrityHealthCheck creates a health check over the ids of agents
// whose state is no longer finite.
func NewIntegrityHealthCheck(corrupted func() []uint64) *IntegrityHealthCheck {
	return &IntegrityHealthCheck{
		corrupted: corrupted,
	}
}

// Name returns the name of this health check.
func (i *IntegrityHealthCheck) Name() string {
	return "state_integrity"
}

// Check verifies that every agent's state is finite.
func (i *IntegrityHealthCheck) Check(ctx context.Context) error {
	if ids := i.corrupted(); len(ids) > 0 {
		return fmt.Errorf("%d agent(s) with non-finite state: %v", len(ids), ids)
	}
	return nil
}

// TelemetryHealthCheck implements HealthCheck for the flight recorder backend.
type TelemetryHealthCheck struct {
	ping func(ctx context.Context) error
}

// NewTelemetryHealthCheck creates a health check for the telemetry backend.
func NewTelemetryHealthCheck(ping func(ctx context.Context) error) *TelemetryHealthCheck {
	return &TelemetryHealthCheck{
		ping: ping,
	}
}

// Name returns the name of this health check.
func (t *TelemetryHealthCheck) Name() string {
	return "telemetry"
}

// Check verifies that the telemetry backend is reachable.
func (t *TelemetryHealthCheck) Check(ctx context.Context) error {
	if err := t.ping(ctx); err != nil {
		return fmt.Errorf("telemetry backend unreachable: %w", err)
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// HeapMB reports the Go heap currently in use, in megabytes.
func HeapMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.HeapAlloc / 1024 / 1024)
}

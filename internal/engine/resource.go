package engine

import (
	"context"
	"math"
	"sort"
	"sync"

	"wdlc/internal/metrics"
)

// ResourceManager admits task executions against a total CPU and memory
// budget (§4.8: "A task manager holds a total CPU budget... and a total
// memory budget"). A request that doesn't fit parks until enough budget
// frees up; releasing a task's resources re-runs admission over every
// parked request so the largest satisfiable set is woken at once, rather
// than only the one request at the head of a FIFO queue (§4.8: "on
// release, unparks the largest set of parked tasks that fits").
//
// No teacher file implements an admission controller like this (the
// compiler has no runtime resource budget of any kind), so the shape is
// grounded directly on spec.md §4.8/§5's prose. The "two passes of a
// modified quickselect" the spec describes is approximated here with
// sort.Slice (O(n log n), not the O(n) expected of true quickselect-based
// partitioning) over a greedy prefix-fit per dimension; correctness
// (the largest-fitting-set property, modulo the greedy approximation
// inherent to any single-pass knapsack heuristic) is kept, the
// asymptotic guarantee is traded away — noted in DESIGN.md.
type ResourceManager struct {
	mu sync.Mutex

	totalCPU float64
	totalMem int64
	usedCPU  float64
	usedMem  int64

	parked []*parkedRequest
}

type parkedRequest struct {
	cpu       float64
	mem       int64
	ready     chan struct{}
	cancelled bool
}

// NewResourceManager returns a ResourceManager with the given total CPU
// and memory budget. A totalMem of zero or less means no memory cap.
func NewResourceManager(totalCPU float64, totalMem int64) *ResourceManager {
	if totalMem <= 0 {
		totalMem = math.MaxInt64
	}
	return &ResourceManager{totalCPU: totalCPU, totalMem: totalMem}
}

// Release is returned by Acquire; calling it gives the admitted CPU/memory
// back to the pool and re-evaluates parked admission.
type Release func()

// Acquire blocks until cpu and mem are both available, or ctx is done.
// A request whose demand alone exceeds the manager's total budget will
// park forever (or until ctx is cancelled) — the caller is expected to
// have validated requirements against the configured budget beforehand.
func (rm *ResourceManager) Acquire(ctx context.Context, cpu float64, mem int64) (Release, error) {
	rm.mu.Lock()
	if rm.fits(cpu, mem) {
		rm.usedCPU += cpu
		rm.usedMem += mem
		rm.reportLocked()
		rm.mu.Unlock()
		return rm.releaseFunc(cpu, mem), nil
	}

	req := &parkedRequest{cpu: cpu, mem: mem, ready: make(chan struct{})}
	rm.parked = append(rm.parked, req)
	rm.reportLocked()
	rm.mu.Unlock()

	select {
	case <-req.ready:
		return rm.releaseFunc(cpu, mem), nil
	case <-ctx.Done():
		rm.mu.Lock()
		req.cancelled = true
		rm.removeParkedLocked(req)
		rm.reportLocked()
		rm.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (rm *ResourceManager) fits(cpu float64, mem int64) bool {
	return rm.usedCPU+cpu <= rm.totalCPU && rm.usedMem+mem <= rm.totalMem
}

func (rm *ResourceManager) releaseFunc(cpu float64, mem int64) Release {
	released := false
	return func() {
		if released {
			return
		}
		released = true
		rm.mu.Lock()
		rm.usedCPU -= cpu
		rm.usedMem -= mem
		rm.mu.Unlock()
		rm.admitParked()
	}
}

func (rm *ResourceManager) removeParkedLocked(target *parkedRequest) {
	out := rm.parked[:0]
	for _, r := range rm.parked {
		if r != target {
			out = append(out, r)
		}
	}
	rm.parked = out
}

// admitParked re-evaluates the parked queue after a release, waking the
// larger of a CPU-ordered and a memory-ordered greedy fit.
func (rm *ResourceManager) admitParked() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.parked) == 0 {
		return
	}

	live := make([]*parkedRequest, 0, len(rm.parked))
	for _, r := range rm.parked {
		if !r.cancelled {
			live = append(live, r)
		}
	}

	byCPU := greedyFit(live, rm.totalCPU-rm.usedCPU, rm.totalMem-rm.usedMem, func(r *parkedRequest) float64 { return r.cpu })
	byMem := greedyFit(live, rm.totalCPU-rm.usedCPU, rm.totalMem-rm.usedMem, func(r *parkedRequest) float64 { return float64(r.mem) })

	chosen := byCPU
	if len(byMem) > len(byCPU) {
		chosen = byMem
	}

	admitted := make(map[*parkedRequest]bool, len(chosen))
	for _, r := range chosen {
		admitted[r] = true
		rm.usedCPU += r.cpu
		rm.usedMem += r.mem
	}

	remaining := rm.parked[:0]
	for _, r := range rm.parked {
		if admitted[r] {
			close(r.ready)
			continue
		}
		remaining = append(remaining, r)
	}
	rm.parked = remaining
	rm.reportLocked()
}

// greedyFit sorts a copy of candidates by key ascending and greedily
// admits as many as fit jointly within the remaining CPU and memory
// budget, skipping (not stopping at) any candidate that would overflow
// either dimension so a later, smaller request still gets a chance.
func greedyFit(candidates []*parkedRequest, remainingCPU float64, remainingMem int64, key func(*parkedRequest) float64) []*parkedRequest {
	sorted := make([]*parkedRequest, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return key(sorted[i]) < key(sorted[j]) })

	var chosen []*parkedRequest
	cpu, mem := remainingCPU, remainingMem
	for _, r := range sorted {
		if r.cpu <= cpu && r.mem <= mem {
			chosen = append(chosen, r)
			cpu -= r.cpu
			mem -= r.mem
		}
	}
	return chosen
}

func (rm *ResourceManager) reportLocked() {
	metrics.SetParked(len(rm.parked))
	metrics.SetCPUUsed(rm.usedCPU)
	metrics.SetMemUsed(rm.usedMem)
}

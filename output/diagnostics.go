package output

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sph-core/simlog"
)

// EnergyTracker watches total-energy history for drift away from its
// initial value, the §8 Evrard collapse property ("total energy conserved
// within 1%"). It smooths over a short trailing window via stat.Mean
// before comparing, so a single noisy sample doesn't trip the warning.
type EnergyTracker struct {
	window    int
	threshold float64
	initial   float64
	haveInit  bool
	history   []float64
}

// NewEnergyTracker builds a tracker that smooths over the last window
// samples (minimum 1) and warns when the smoothed relative drift from the
// first recorded value exceeds threshold (e.g. 0.01 for 1%).
func NewEnergyTracker(window int, threshold float64) *EnergyTracker {
	if window < 1 {
		window = 1
	}
	return &EnergyTracker{window: window, threshold: threshold}
}

// Record adds one total-energy sample and logs a rate-limited warning if
// the smoothed relative drift from the first sample exceeds the
// configured threshold.
func (e *EnergyTracker) Record(total float64) {
	if e == nil {
		return
	}
	if !e.haveInit {
		e.initial = total
		e.haveInit = true
	}
	e.history = append(e.history, total)
	if len(e.history) > e.window {
		e.history = e.history[len(e.history)-e.window:]
	}
	if e.initial == 0 {
		return
	}
	smoothed := stat.Mean(e.history, nil)
	drift := math.Abs(smoothed-e.initial) / math.Abs(e.initial)
	if drift > e.threshold {
		simlog.Warnf("output.energy_drift", "total energy drifted %.4f%% from initial value (threshold %.4f%%)", drift*100, e.threshold*100)
	}
}

// Drift returns the current smoothed relative drift from the first
// recorded sample, or 0 if nothing has been recorded yet.
func (e *EnergyTracker) Drift() float64 {
	if e == nil || !e.haveInit || e.initial == 0 || len(e.history) == 0 {
		return 0
	}
	smoothed := stat.Mean(e.history, nil)
	return math.Abs(smoothed-e.initial) / math.Abs(e.initial)
}

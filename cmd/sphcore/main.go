// Command sphcore runs one of the built-in SPH test scenarios to
// completion, writing periodic particle snapshots and an energy history to
// the configured output directory.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pthm-cable/sph-core/boundary"
	"github.com/pthm-cable/sph-core/config"
	"github.com/pthm-cable/sph-core/force"
	"github.com/pthm-cable/sph-core/ghost"
	"github.com/pthm-cable/sph-core/gravity"
	"github.com/pthm-cable/sph-core/integrator"
	"github.com/pthm-cable/sph-core/kernel"
	"github.com/pthm-cable/sph-core/output"
	"github.com/pthm-cable/sph-core/params"
	"github.com/pthm-cable/sph-core/plugin"
	"github.com/pthm-cable/sph-core/preinteraction"
	"github.com/pthm-cable/sph-core/riemann"
	"github.com/pthm-cable/sph-core/scenarios"
	"github.com/pthm-cable/sph-core/simcache"
	"github.com/pthm-cable/sph-core/simlog"
	"github.com/pthm-cable/sph-core/spatial"
	"github.com/pthm-cable/sph-core/viscosity"
)

var (
	scenarioName = flag.String("scenario", "sod", "built-in scenario: sod, gresho, evrard")
	configPath   = flag.String("config", "", "optional YAML config overriding output settings")
	resolution   = flag.Int("n", 0, "scenario resolution (0 = scenario default)")
	maxSteps     = flag.Int("max-steps", 0, "stop after N steps (0 = run to t_end)")
)

func scenarioDefaults(name string) (plugin.InitialCondition, int) {
	switch name {
	case "sod":
		n := *resolution
		if n == 0 {
			n = 50
		}
		return scenarios.SodShockTube(n), n
	case "gresho":
		n := *resolution
		if n == 0 {
			n = 64
		}
		return scenarios.GreshoChanVortex(n), n
	case "evrard":
		n := *resolution
		if n == 0 {
			n = 20
		}
		return scenarios.EvrardCollapse(n, 1.0, 0.5), n
	default:
		fmt.Fprintf(os.Stderr, "unknown scenario %q (want sod, gresho, evrard)\n", name)
		os.Exit(2)
		return plugin.InitialCondition{}, 0
	}
}

func buildKernel(kind params.KernelKind) kernel.Kernel {
	if kind == params.WendlandKernel {
		return kernel.WendlandC2{}
	}
	return kernel.CubicSpline{}
}

func main() {
	flag.Parse()

	var outCfg config.OutputConfig
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			simlog.Logf("loading config: %v", err)
			os.Exit(1)
		}
		outCfg = cfg.Output
	} else {
		outCfg = config.OutputConfig{Directory: "./output", Prefix: *scenarioName}
	}

	ic, n := scenarioDefaults(*scenarioName)
	if err := ic.Valid(); err != nil {
		simlog.Logf("invalid initial condition: %v", err)
		os.Exit(1)
	}
	simlog.Logf("scenario=%s n=%d particles=%d", *scenarioName, n, ic.ParticleCount())

	d, err := buildDriver(ic)
	if err != nil {
		simlog.Logf("building driver: %v", err)
		os.Exit(1)
	}

	writer, err := output.New(outCfg)
	if err != nil {
		simlog.Logf("opening output: %v", err)
		os.Exit(1)
	}
	defer writer.Close()

	if err := d.Initialize(); err != nil {
		simlog.Logf("initializing: %v", err)
		os.Exit(1)
	}
	writer.WriteSnapshot(d.Real, d.Time)
	writer.WriteEnergy(output.Totals(d.Real, d.Time))

	tEnd := d.Params.Time.End
	outputInterval := d.Params.Time.OutputInterval
	energyInterval := d.Params.Time.EnergyOutputInterval
	nextOutput := d.Time + outputInterval
	nextEnergy := d.Time + energyInterval

	start := time.Now()
	steps := 0
	for d.Time < tEnd {
		if *maxSteps > 0 && steps >= *maxSteps {
			break
		}
		dt, err := d.Step()
		if err != nil {
			simlog.Logf("step %d: %v", steps, err)
			os.Exit(1)
		}
		steps++
		if d.Time >= nextOutput {
			writer.WriteSnapshot(d.Real, d.Time)
			nextOutput += outputInterval
		}
		if d.Time >= nextEnergy {
			writer.WriteEnergy(output.Totals(d.Real, d.Time))
			nextEnergy += energyInterval
		}
		if steps%100 == 0 {
			simlog.Logf("step=%d t=%.4f dt=%.6g", steps, d.Time, dt)
		}
	}
	writer.WriteSnapshot(d.Real, d.Time)
	writer.WriteEnergy(output.Totals(d.Real, d.Time))
	simlog.Logf("done: steps=%d t=%.4f wall=%s nonconvergence=%d energy_drift=%.4f%%",
		steps, d.Time, time.Since(start), integrator.NonconvergenceCount(), writer.EnergyDrift()*100)
}

// buildDriver wires a Driver from an initial condition, following the same
// stage-selection switch the solver performs once its parameters are known.
func buildDriver(ic plugin.InitialCondition) (*integrator.Driver, error) {
	p := ic.Parameters
	k := buildKernel(p.Kernel)
	dim := p.Dimension

	tr := spatial.New(dim, p.Tree.MaxLevel, p.Tree.LeafParticleNum)
	cache := &simcache.Cache{}
	coord := simcache.NewCoordinator(cache, tr)

	var periodic *boundary.Periodic
	var ghosts *ghost.Manager
	if ic.BoundaryConfig != nil {
		periodic = boundary.NewPeriodic(ic.BoundaryConfig)
		ghosts = &ghost.Manager{}
		if err := ghosts.Initialize(*ic.BoundaryConfig); err != nil {
			return nil, err
		}
	}

	var visc viscosity.ArtificialViscosity
	var riemannSolver riemann.Solver
	var limiter riemann.SlopeLimiter
	if p.Variant == params.GSPH {
		riemannSolver = riemann.HLLSolver{}
		if p.GSPHSecondOrder {
			limiter = riemann.VanLeer{}
		}
	} else {
		visc = viscosity.Monaghan{UseBalsaraSwitch: p.ArtificialViscosity.UseBalsaraSwitch}
	}

	d := &integrator.Driver{
		Params:      p,
		Kernel:      k,
		Cache:       cache,
		Tree:        tr,
		Coordinator: coord,
		Ghosts:      ghosts,
		Periodic:    periodic,
		PreInteraction: preinteraction.Stage{
			Kernel: k, Tree: tr, Periodic: periodic, Variant: p.Variant,
			Gamma: p.Physics.Gamma, NeighborTarget: float64(p.Physics.NeighborNumber),
			Policy:           p.SmoothingPolicy,
			UseBalsaraSwitch: p.ArtificialViscosity.UseBalsaraSwitch,
			Epsilon:          p.ArtificialViscosity.Epsilon,
			SecondOrder:      p.Variant == params.GSPH && p.GSPHSecondOrder,
		},
		Force: force.Stage{
			Kernel: k, Tree: tr, Periodic: periodic, Variant: p.Variant,
			Viscosity: visc, Riemann: riemannSolver,
			SecondOrder:               p.Variant == params.GSPH && p.GSPHSecondOrder,
			Limiter:                   limiter,
			UseArtificialConductivity: p.ArtificialConductivity.Enabled,
			ConductivityAlpha:         p.ArtificialConductivity.Alpha,
		},
		Gravity: gravity.Stage{Config: p.Gravity, Tree: tr},
		Real:    ic.Particles,
	}
	integrator.InitialSound(d.Real, p.Physics.Gamma)
	return d, nil
}

/*
Copyright © 2026 the Eltran authors.
This file is part of Eltran.

Eltran is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Eltran is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Eltran.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package simulate marches the electrolyte transport equations through
// time. A Simulation is assembled from composable manipulator functions,
// so that the calling program chooses which operations happen during
// initialisation and during each timestep.
package simulate

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/electromodel/eltran"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidState indicates a state vector holding NaN or Inf values,
// usually because the timestep exceeded the stability limit.
var ErrInvalidState = errors.New("simulate: invalid state (NaN or Inf detected)")

// A StepError wraps an error with the step and time at which it occurred.
type StepError struct {
	Step int
	Time float64
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("simulate: step %d (t=%g): %v", e.Step, e.Time, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// A ReactionModel distributes the applied current over the electrode
// cells, returning the interfacial current density in each cell of the
// negative and positive electrodes. The state arguments must not be
// modified.
type ReactionModel func(t float64, c, en, ep eltran.Field) (jn, jp eltran.Field, err error)

// A Manipulator is a function that operates on a Simulation, either
// during initialisation or once per timestep.
type Manipulator func(s *Simulation) error

// A Simulation holds the evolving state of an electrolyte transport
// model together with the operations that initialise and advance it.
//
// The state is the concentration over the whole electrolyte and the
// potentials over the two electrodes. Time, like every other quantity
// here, is dimensionless.
type Simulation struct {
	// Model holds the discretised transport equations. It must be set
	// before Init is called.
	Model *eltran.Electrolyte

	// Reaction distributes the applied current over the electrode
	// cells. If it is nil, the current is spread uniformly over each
	// electrode, balanced so that no net cation source is created.
	Reaction ReactionModel

	// InitFuncs are run (in order) when calling Init.
	InitFuncs []Manipulator

	// RunFuncs are run (in order) once per timestep when calling Run.
	RunFuncs []Manipulator

	// Log is the logger for simulation progress. If it is nil, the
	// logrus standard logger is used.
	Log logrus.FieldLogger

	// T is the current simulation time and Dt the timestep.
	T, Dt float64

	// C is the cation concentration in each electrolyte cell. En and Ep
	// are the electric potentials in the negative and positive
	// electrode cells.
	C  eltran.Field
	En eltran.Field
	Ep eltran.Field

	// Done specifies whether the simulation is finished.
	Done bool

	nc, nn, np int       // cells per domain
	wc         []float64 // electrolyte cell widths
	widthNeg   float64   // total width of the negative electrode
	widthPos   float64   // total width of the positive electrode

	step  int
	deriv Derivative
	ybuf  []float64
	jbuf  eltran.Field
	ready bool
}

// Init runs all of the InitFuncs, in order.
func (s *Simulation) Init() error {
	if err := s.setup(); err != nil {
		return err
	}
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return err
		}
	}
	return nil
}

// Run repeatedly runs all of the RunFuncs, in order, until the Done flag
// is set.
func (s *Simulation) Run() error {
	if err := s.setup(); err != nil {
		return err
	}
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// setup reads the mesh out of the model and prepares the scratch space
// shared by the manipulators. It only does the work once.
func (s *Simulation) setup() error {
	if s.ready {
		return nil
	}
	if s.Model == nil {
		return fmt.Errorf("simulate: Model is not set")
	}
	if s.Log == nil {
		s.Log = logrus.StandardLogger()
	}
	mesh := s.Model.Mesh()
	xc, err := mesh.Centers(eltran.WholeCell)
	if err != nil {
		return err
	}
	xcn, err := mesh.Centers(eltran.Negative)
	if err != nil {
		return err
	}
	xcp, err := mesh.Centers(eltran.Positive)
	if err != nil {
		return err
	}
	s.nc, s.nn, s.np = len(xc), len(xcn), len(xcp)
	if s.nc < 2 {
		return fmt.Errorf("simulate: the electrolyte mesh needs at least 2 cells, got %d", s.nc)
	}
	if s.nn+s.np > s.nc {
		return fmt.Errorf("simulate: the electrodes (%d + %d cells) overlap on a %d-cell electrolyte mesh",
			s.nn, s.np, s.nc)
	}
	// The electrode equations reuse slices of the electrolyte state, so
	// the electrode meshes must line up exactly with the two ends of the
	// electrolyte mesh.
	for i, x := range xcn {
		if x != xc[i] {
			return fmt.Errorf("simulate: the negative electrode mesh is not a prefix of the electrolyte mesh (cell %d)", i)
		}
	}
	for i, x := range xcp {
		if x != xc[s.nc-s.np+i] {
			return fmt.Errorf("simulate: the positive electrode mesh is not a suffix of the electrolyte mesh (cell %d)", i)
		}
	}

	s.wc = cellWidths(xc)
	s.widthNeg = floats.Sum(s.wc[:s.nn])
	s.widthPos = floats.Sum(s.wc[s.nc-s.np:])

	s.ybuf = make([]float64, s.stateLen())
	s.jbuf = make(eltran.Field, s.nc)
	s.deriv = s.derivative()
	s.ready = true
	return nil
}

// cellWidths returns the width of each cell on a mesh given by its cell
// centres. Interior faces sit midway between neighbouring centres; the
// two end faces mirror the first and last interior faces around their
// centres.
func cellWidths(x []float64) []float64 {
	n := len(x)
	w := make([]float64, n)
	left := x[0] - (x[1]-x[0])/2
	for i := 0; i < n-1; i++ {
		right := (x[i] + x[i+1]) / 2
		w[i] = right - left
		left = right
	}
	w[n-1] = x[n-1] + (x[n-1]-x[n-2])/2 - left
	return w
}

func (s *Simulation) stateLen() int { return s.nc + s.nn + s.np }

func (s *Simulation) packInto(y []float64) {
	copy(y[:s.nc], s.C)
	copy(y[s.nc:s.nc+s.nn], s.En)
	copy(y[s.nc+s.nn:], s.Ep)
}

func (s *Simulation) unpack(y []float64) {
	copy(s.C, y[:s.nc])
	copy(s.En, y[s.nc:s.nc+s.nn])
	copy(s.Ep, y[s.nc+s.nn:])
}

// reaction applies the configured ReactionModel, or spreads the applied
// current uniformly over each electrode if none is configured.
func (s *Simulation) reaction(t float64, c, en, ep eltran.Field) (jn, jp eltran.Field, err error) {
	if s.Reaction == nil {
		icell := s.Model.AppliedCurrent(t)
		jn = eltran.UniformField(icell/s.widthNeg, s.nn)
		jp = eltran.UniformField(-icell/s.widthPos, s.np)
		return jn, jp, nil
	}
	jn, jp, err = s.Reaction(t, c, en, ep)
	if err != nil {
		return nil, nil, fmt.Errorf("simulate: reaction model: %w", err)
	}
	if len(jn) != s.nn || len(jp) != s.np {
		return nil, nil, fmt.Errorf("simulate: reaction model returned %d and %d current densities, want %d and %d",
			len(jn), len(jp), s.nn, s.np)
	}
	return jn, jp, nil
}

// derivative builds the packed right-hand side of the model equations.
// The state layout is the concentration over the electrolyte followed by
// the negative and then the positive electrode potentials.
func (s *Simulation) derivative() Derivative {
	return func(t float64, y, dy []float64) error {
		if len(y) != s.stateLen() || len(dy) != s.stateLen() {
			return fmt.Errorf("simulate: state vector has length %d, want %d", len(y), s.stateLen())
		}
		c := eltran.Field(y[:s.nc])
		en := eltran.Field(y[s.nc : s.nc+s.nn])
		ep := eltran.Field(y[s.nc+s.nn:])

		jn, jp, err := s.reaction(t, c, en, ep)
		if err != nil {
			return err
		}
		j := s.jbuf
		for i := range j {
			j[i] = 0
		}
		copy(j[:s.nn], jn)
		copy(j[s.nc-s.np:], jp)

		dcdt, err := s.Model.CationConservation(c, j, s.Model.CationFluxBCs())
		if err != nil {
			return err
		}
		bcn, err := s.Model.CurrentBCs(eltran.Negative, t)
		if err != nil {
			return err
		}
		dendt, err := s.Model.ChargeConservation(eltran.Negative, c[:s.nn], en, jn, bcn)
		if err != nil {
			return err
		}
		bcp, err := s.Model.CurrentBCs(eltran.Positive, t)
		if err != nil {
			return err
		}
		depdt, err := s.Model.ChargeConservation(eltran.Positive, c[s.nc-s.np:], ep, jp, bcp)
		if err != nil {
			return err
		}

		copy(dy[:s.nc], dcdt)
		copy(dy[s.nc:s.nc+s.nn], dendt)
		copy(dy[s.nc+s.nn:], depdt)
		return nil
	}
}

// Derivative returns the packed right-hand side of the model equations,
// for use with a Stepper or an external integrator. The state layout is
// the electrolyte concentration followed by the negative and positive
// electrode potentials.
func (s *Simulation) Derivative() (Derivative, error) {
	if err := s.setup(); err != nil {
		return nil, err
	}
	return s.deriv, nil
}

// CellVoltage returns the potential difference between the positive and
// negative current collectors, or NaN before the state is initialised.
func (s *Simulation) CellVoltage() float64 {
	if len(s.En) == 0 || len(s.Ep) == 0 {
		return math.NaN()
	}
	return s.Ep[len(s.Ep)-1] - s.En[0]
}

// CationContent returns the width-weighted total of the concentration
// over the electrolyte, or NaN before the state is initialised. With
// zero-flux boundaries and a balanced reaction model it is conserved.
func (s *Simulation) CationContent() float64 {
	if !s.ready || len(s.C) != s.nc {
		return math.NaN()
	}
	var sum float64
	for i, w := range s.wc {
		sum += s.C[i] * w
	}
	return sum
}

// InitialState returns a manipulator that resets the simulation state to
// the model's initial conditions: uniform concentration with each
// electrode at its open-circuit potential, and time zero.
func InitialState() Manipulator {
	return func(s *Simulation) error {
		if err := s.setup(); err != nil {
			return err
		}
		init := s.Model.InitialState()
		s.C = init.C
		s.En = init.En
		s.Ep = init.Ep
		s.T = 0
		s.step = 0
		s.Done = false
		return nil
	}
}

// SetTimestep returns a manipulator that sets a fixed timestep.
func SetTimestep(dt float64) Manipulator {
	return func(s *Simulation) error {
		if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
			return fmt.Errorf("simulate: timestep must be positive and finite, got %g", dt)
		}
		s.Dt = dt
		return nil
	}
}

// SetTimestepStability returns a manipulator that sets the timestep from
// the explicit diffusion stability bound dt <= dx²/2 on the finest mesh
// spacing, scaled by each electrode's double-layer ratio for the
// potential equations.
func SetTimestepStability() Manipulator {
	// Cmax is the fraction of the stability bound to use.
	const Cmax = 0.9
	return func(s *Simulation) error {
		if err := s.setup(); err != nil {
			return err
		}
		dx, err := s.Model.Mesh().MinSpacing(eltran.WholeCell)
		if err != nil {
			return err
		}
		γn, err := s.Model.GammaDL(eltran.Negative)
		if err != nil {
			return err
		}
		γp, err := s.Model.GammaDL(eltran.Positive)
		if err != nil {
			return err
		}
		bound := dx * dx / 2 * math.Min(1, math.Min(γn, γp))
		s.Dt = Cmax * bound
		return nil
	}
}

// Advance returns a manipulator that advances the state through one
// timestep with the given stepper and increments the simulation time.
func Advance(stepper Stepper) Manipulator {
	return func(s *Simulation) error {
		if stepper == nil {
			return fmt.Errorf("simulate: Advance needs a stepper")
		}
		if err := s.setup(); err != nil {
			return err
		}
		if math.IsNaN(s.Dt) || math.IsInf(s.Dt, 0) || s.Dt <= 0 {
			return fmt.Errorf("simulate: timestep is not set; use SetTimestep or SetTimestepStability")
		}
		if len(s.C) != s.nc || len(s.En) != s.nn || len(s.Ep) != s.np {
			return fmt.Errorf("simulate: state does not match the mesh; use the InitialState manipulator")
		}
		y := s.ybuf
		s.packInto(y)
		if err := stepper.Step(s.deriv, s.T, s.Dt, y); err != nil {
			return &StepError{Step: s.step, Time: s.T, Err: err}
		}
		for _, v := range y {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &StepError{Step: s.step, Time: s.T, Err: ErrInvalidState}
			}
		}
		s.unpack(y)
		s.T += s.Dt
		s.step++
		return nil
	}
}

// Log returns a manipulator that writes simulation progress to the
// simulation's logger once per timestep.
func Log() Manipulator {
	startTime := time.Now()
	timeStepTime := time.Now()
	iteration := 0
	return func(s *Simulation) error {
		if err := s.setup(); err != nil {
			return err
		}
		iteration++
		s.Log.WithFields(logrus.Fields{
			"iteration": iteration,
			"t":         s.T,
			"dt":        s.Dt,
			"voltage":   s.CellVoltage(),
			"walltime":  time.Since(startTime).Seconds(),
			"Δwalltime": time.Since(timeStepTime).Seconds(),
		}).Info("eltran advancing simulation")
		timeStepTime = time.Now()
		return nil
	}
}

// SteadyState returns a manipulator that sets the Done flag once the
// largest rate of change of any state value between two of its calls
// drops below tolerance.
func SteadyState(tolerance float64) Manipulator {
	var old []float64
	var tOld float64
	return func(s *Simulation) error {
		if math.IsNaN(tolerance) || tolerance <= 0 {
			return fmt.Errorf("simulate: steady-state tolerance must be positive, got %g", tolerance)
		}
		if err := s.setup(); err != nil {
			return err
		}
		cur := make([]float64, s.stateLen())
		s.packInto(cur)
		if old == nil {
			old, tOld = cur, s.T
			return nil
		}
		elapsed := s.T - tOld
		if elapsed <= 0 {
			return nil
		}
		rate := floats.Distance(cur, old, math.Inf(1)) / elapsed
		if rate < tolerance {
			s.Done = true
		}
		old, tOld = cur, s.T
		return nil
	}
}

// StopAt returns a manipulator that sets the Done flag once the
// simulation time reaches tmax.
func StopAt(tmax float64) Manipulator {
	return func(s *Simulation) error {
		if s.T >= tmax {
			s.Done = true
		}
		return nil
	}
}

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

package simulate

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/electromodel/eltran"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const testTolerance = 1.e-10

func absDifferent(a, b float64) bool {
	if math.Abs(a-b) > testTolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

type diffOps struct{ grad, div *mat.Dense }

func newDiffOps(n int, h float64) diffOps {
	grad := mat.NewDense(n-1, n, nil)
	for i := 0; i < n-1; i++ {
		grad.Set(i, i, -1/h)
		grad.Set(i, i+1, 1/h)
	}
	div := mat.NewDense(n, n+1, nil)
	for i := 0; i < n; i++ {
		div.Set(i, i, -1/h)
		div.Set(i, i+1, 1/h)
	}
	return diffOps{grad: grad, div: div}
}

func (o diffOps) Grad(f eltran.Field) eltran.Field { return matVec(o.grad, f) }

func (o diffOps) Div(f eltran.Field) eltran.Field { return matVec(o.div, f) }

func matVec(m *mat.Dense, f eltran.Field) eltran.Field {
	r, _ := m.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(m, mat.NewVecDense(len(f), []float64(f)))
	return eltran.Field(out.RawVector().Data)
}

func testParams() eltran.Parameters {
	return eltran.Parameters{
		C0:         1,
		S:          -0.01,
		GammaDLNeg: 1,
		GammaDLPos: 1,
		Icell:      func(t float64) float64 { return 1 },
		OCPNeg:     func(c float64) float64 { return -0.1 * c },
		OCPPos:     func(c float64) float64 { return 1.2 + 0.1*c },
	}
}

func testMesh(t *testing.T, nc, nn, np int) *eltran.Mesh {
	xc := make([]float64, nc)
	for i := range xc {
		xc[i] = 0.5 + float64(i)
	}
	mesh, err := eltran.NewMesh(xc, xc[:nn], xc[nc-np:])
	if err != nil {
		t.Fatal(err)
	}
	return mesh
}

func testSim(t *testing.T, p eltran.Parameters, nc, nn, np int) *Simulation {
	mesh := testMesh(t, nc, nn, np)
	ops := eltran.OperatorSet{
		WholeCell: newDiffOps(nc, 1),
		Negative:  newDiffOps(nn, 1),
		Positive:  newDiffOps(np, 1),
	}
	m, err := eltran.NewElectrolyte(p, ops, mesh)
	if err != nil {
		t.Fatal(err)
	}
	return &Simulation{Model: m, Log: discardLogger()}
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCellWidths(t *testing.T) {
	w := cellWidths([]float64{0.5, 1.5, 3})
	want := []float64{1, 1.25, 1.5}
	if len(w) != len(want) {
		t.Fatalf("len = %d, want %d", len(w), len(want))
	}
	for i := range w {
		if absDifferent(w[i], want[i]) {
			t.Errorf("w[%d] = %g, want %g", i, w[i], want[i])
		}
	}
}

// The packed state vector lays out the concentration, then the negative
// and then the positive electrode potentials, and unpacking restores the
// fields exactly.
func TestPackedLayout(t *testing.T) {
	s := testSim(t, testParams(), 6, 2, 2)
	if err := InitialState()(s); err != nil {
		t.Fatal(err)
	}
	for i := range s.C {
		s.C[i] = float64(i)
	}
	s.En[0], s.En[1] = 10, 11
	s.Ep[0], s.Ep[1] = 20, 21
	y := make([]float64, 10)
	s.packInto(y)
	want := []float64{0, 1, 2, 3, 4, 5, 10, 11, 20, 21}
	for i := range y {
		if y[i] != want[i] {
			t.Errorf("y[%d] = %g, want %g", i, y[i], want[i])
		}
	}
	s.C[0], s.En[0], s.Ep[0] = -1, -1, -1
	s.unpack(y)
	if s.C[0] != 0 || s.En[0] != 10 || s.Ep[0] != 20 {
		t.Errorf("unpack did not restore the state: %g, %g, %g", s.C[0], s.En[0], s.Ep[0])
	}
}

// Integrating dy/dt = -y over [0, 1] at a sequence of step sizes, the
// global error of the forward Euler method shrinks in proportion to the
// step size.
func TestForwardEulerOrder(t *testing.T) {
	decay := func(tt float64, y, dy []float64) error {
		dy[0] = -y[0]
		return nil
	}
	var logdt, logerr []float64
	for _, n := range []int{16, 32, 64, 128} {
		dt := 1 / float64(n)
		y := []float64{1}
		var euler ForwardEuler
		for k := 0; k < n; k++ {
			if err := euler.Step(decay, float64(k)*dt, dt, y); err != nil {
				t.Fatal(err)
			}
		}
		logdt = append(logdt, math.Log(dt))
		logerr = append(logerr, math.Log(math.Abs(y[0]-math.Exp(-1))))
	}
	_, slope := stat.LinearRegression(logdt, logerr, nil, false)
	if slope < 0.9 || slope > 1.1 {
		t.Errorf("convergence order = %g, want about 1", slope)
	}
}

// The same experiment for the classic Runge-Kutta method gives fourth
// order convergence.
func TestRK4Order(t *testing.T) {
	decay := func(tt float64, y, dy []float64) error {
		dy[0] = -y[0]
		return nil
	}
	var logdt, logerr []float64
	for _, n := range []int{8, 16, 32, 64} {
		dt := 2 / float64(n)
		y := []float64{1}
		var rk RK4
		for k := 0; k < n; k++ {
			if err := rk.Step(decay, float64(k)*dt, dt, y); err != nil {
				t.Fatal(err)
			}
		}
		logdt = append(logdt, math.Log(dt))
		logerr = append(logerr, math.Log(math.Abs(y[0]-math.Exp(-2))))
	}
	_, slope := stat.LinearRegression(logdt, logerr, nil, false)
	if slope < 3.7 || slope > 4.3 {
		t.Errorf("convergence order = %g, want about 4", slope)
	}
}

// For a right-hand side that depends on time alone, a Runge-Kutta step
// reduces to Simpson quadrature, which integrates cubics exactly.
func TestRK4Polynomial(t *testing.T) {
	cube := func(tt float64, y, dy []float64) error {
		dy[0] = 3 * tt * tt
		return nil
	}
	y := []float64{0}
	var rk RK4
	for k := 0; k < 4; k++ {
		if err := rk.Step(cube, float64(k)*0.25, 0.25, y); err != nil {
			t.Fatal(err)
		}
	}
	if absDifferent(y[0], 1) {
		t.Errorf("integral of 3t² over [0,1] = %g, want 1", y[0])
	}
}

// The packed derivative must agree with calling the model equations
// directly, with the uniform reaction current substituted for j.
func TestDerivativePacked(t *testing.T) {
	p := testParams()
	s := testSim(t, p, 6, 2, 2)
	f, err := s.Derivative()
	if err != nil {
		t.Fatal(err)
	}
	init := s.Model.InitialState()
	y := make([]float64, 10)
	copy(y[:6], init.C)
	copy(y[6:8], init.En)
	copy(y[8:], init.Ep)
	dy := make([]float64, 10)
	if err := f(0.3, y, dy); err != nil {
		t.Fatal(err)
	}

	icell := p.Icell(0.3)
	jn := eltran.UniformField(icell/2, 2)
	jp := eltran.UniformField(-icell/2, 2)
	j := make(eltran.Field, 6)
	copy(j[:2], jn)
	copy(j[4:], jp)
	wantC, err := s.Model.CationConservation(init.C, j, s.Model.CationFluxBCs())
	if err != nil {
		t.Fatal(err)
	}
	bcn, err := s.Model.CurrentBCs(eltran.Negative, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	wantEn, err := s.Model.ChargeConservation(eltran.Negative, init.C[:2], init.En, jn, bcn)
	if err != nil {
		t.Fatal(err)
	}
	bcp, err := s.Model.CurrentBCs(eltran.Positive, 0.3)
	if err != nil {
		t.Fatal(err)
	}
	wantEp, err := s.Model.ChargeConservation(eltran.Positive, init.C[4:], init.Ep, jp, bcp)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 6; i++ {
		if absDifferent(dy[i], wantC[i]) {
			t.Errorf("dc/dt[%d] = %g, want %g", i, dy[i], wantC[i])
		}
	}
	for i := 0; i < 2; i++ {
		if absDifferent(dy[6+i], wantEn[i]) {
			t.Errorf("den/dt[%d] = %g, want %g", i, dy[6+i], wantEn[i])
		}
		if absDifferent(dy[8+i], wantEp[i]) {
			t.Errorf("dep/dt[%d] = %g, want %g", i, dy[8+i], wantEp[i])
		}
	}
}

// The outer boundaries pass no cations and the default reaction is
// balanced between the electrodes, so the total cation content must not
// drift while the simulation runs.
func TestRunConservesCations(t *testing.T) {
	s := testSim(t, testParams(), 8, 3, 3)
	s.InitFuncs = []Manipulator{InitialState(), SetTimestepStability()}
	s.RunFuncs = []Manipulator{Advance(&ForwardEuler{}), StopAt(50)}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	before := s.CationContent()
	if absDifferent(before, 8) {
		t.Fatalf("initial cation content = %g, want 8", before)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if !s.Done {
		t.Error("Done is not set after Run")
	}
	if s.T < 50 {
		t.Errorf("t = %g, want at least 50", s.T)
	}
	if absDifferent(s.CationContent(), before) {
		t.Errorf("cation content drifted from %g to %g", before, s.CationContent())
	}
}

// A full driver round trip: initialise, march with the Runge-Kutta
// stepper until the stop time, and leave a finite state behind.
func TestSimulationRun(t *testing.T) {
	s := testSim(t, testParams(), 6, 2, 2)
	s.InitFuncs = []Manipulator{InitialState(), SetTimestepStability()}
	s.RunFuncs = []Manipulator{Advance(&RK4{}), Log(), StopAt(3)}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if absDifferent(s.Dt, 0.45) {
		t.Errorf("dt = %g, want 0.45", s.Dt)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.T < 3 || s.T > 3+s.Dt {
		t.Errorf("t = %g, want within one step above 3", s.T)
	}
	for _, f := range []eltran.Field{s.C, s.En, s.Ep} {
		for i, v := range f {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("state value %d is %g", i, v)
			}
		}
	}
	if v := s.CellVoltage(); math.IsNaN(v) || math.IsInf(v, 0) {
		t.Errorf("cell voltage = %g", v)
	}
}

// With no applied current a perturbed concentration profile relaxes by
// diffusion to a flat profile with the same cation content, and the
// steady-state check ends the run.
func TestSteadyStateRelaxation(t *testing.T) {
	p := testParams()
	p.Icell = func(t float64) float64 { return 0 }
	s := testSim(t, p, 6, 2, 2)
	s.InitFuncs = []Manipulator{
		InitialState(),
		SetTimestep(0.4),
		func(s *Simulation) error {
			s.C[0] += 0.5
			return nil
		},
	}
	s.RunFuncs = []Manipulator{Advance(&ForwardEuler{}), SteadyState(1e-10)}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	content := s.CationContent()
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if !s.Done {
		t.Fatal("Done is not set after Run")
	}
	if absDifferent(s.CationContent(), content) {
		t.Errorf("cation content drifted from %g to %g", content, s.CationContent())
	}
	mean := content / 6
	for i, v := range s.C {
		if math.Abs(v-mean) > 1e-6 {
			t.Errorf("c[%d] = %g, want %g", i, v, mean)
		}
	}
}

// A timestep far beyond the stability limit makes the explicit update
// blow up; the driver must report the failure and keep the last good
// state instead of storing NaNs.
func TestAdvanceInvalidState(t *testing.T) {
	s := testSim(t, testParams(), 6, 2, 2)
	s.InitFuncs = []Manipulator{InitialState(), SetTimestep(1e6)}
	s.RunFuncs = []Manipulator{Advance(&ForwardEuler{})}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	err := s.Run()
	if err == nil {
		t.Fatal("expected an error from an unstable run")
	}
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("got %v, want ErrInvalidState", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("got %T, want *StepError", err)
	}
	if stepErr.Time != s.T {
		t.Errorf("error time = %g, simulation time = %g", stepErr.Time, s.T)
	}
	for i, v := range s.C {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("c[%d] = %g after failed step", i, v)
		}
	}
}

// A reaction model can concentrate the applied current anywhere in the
// electrodes, as long as it returns one value per electrode cell.
func TestCustomReaction(t *testing.T) {
	s := testSim(t, testParams(), 6, 2, 2)
	s.Reaction = func(t float64, c, en, ep eltran.Field) (eltran.Field, eltran.Field, error) {
		return eltran.Field{1, 0}, eltran.Field{0, -1}, nil
	}
	s.InitFuncs = []Manipulator{InitialState(), SetTimestepStability()}
	s.RunFuncs = []Manipulator{Advance(&ForwardEuler{}), StopAt(10)}
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	before := s.CationContent()
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if absDifferent(s.CationContent(), before) {
		t.Errorf("balanced reaction drifted the cation content from %g to %g", before, s.CationContent())
	}

	s.Reaction = func(t float64, c, en, ep eltran.Field) (eltran.Field, eltran.Field, error) {
		return eltran.Field{1}, eltran.Field{-1}, nil
	}
	err := Advance(&ForwardEuler{})(s)
	if err == nil {
		t.Fatal("expected an error for wrongly sized reaction currents")
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Errorf("got %T, want *StepError", err)
	}
}

func TestManipulatorValidation(t *testing.T) {
	s := testSim(t, testParams(), 6, 2, 2)
	if err := SetTimestep(0)(s); err == nil {
		t.Error("SetTimestep(0): expected an error")
	}
	if err := SetTimestep(math.NaN())(s); err == nil {
		t.Error("SetTimestep(NaN): expected an error")
	}
	if err := SetTimestep(math.Inf(1))(s); err == nil {
		t.Error("SetTimestep(Inf): expected an error")
	}
	if err := SteadyState(0)(s); err == nil {
		t.Error("SteadyState(0): expected an error")
	}
	if err := Advance(nil)(s); err == nil {
		t.Error("Advance(nil): expected an error")
	}
	if err := Advance(&ForwardEuler{})(s); err == nil {
		t.Error("Advance without a timestep: expected an error")
	}
	if err := SetTimestep(0.1)(s); err != nil {
		t.Fatal(err)
	}
	if err := Advance(&ForwardEuler{})(s); err == nil {
		t.Error("Advance without a state: expected an error")
	}
}

func TestSetupValidation(t *testing.T) {
	s := &Simulation{}
	if err := s.Init(); err == nil {
		t.Error("Init without a model: expected an error")
	}

	ops := eltran.OperatorSet{
		WholeCell: newDiffOps(4, 1),
		Negative:  newDiffOps(2, 1),
		Positive:  newDiffOps(2, 1),
	}

	// The negative electrode coordinates are not a prefix of the
	// electrolyte coordinates.
	mesh, err := eltran.NewMesh([]float64{0.5, 1.5, 2.5, 3.5}, []float64{0.6, 1.5}, []float64{2.5, 3.5})
	if err != nil {
		t.Fatal(err)
	}
	m, err := eltran.NewElectrolyte(testParams(), ops, mesh)
	if err != nil {
		t.Fatal(err)
	}
	s = &Simulation{Model: m, Log: discardLogger()}
	if err := s.Init(); err == nil {
		t.Error("misaligned electrode mesh: expected an error")
	}

	// Overlapping electrodes cannot share the packed state.
	mesh, err = eltran.NewMesh([]float64{0.5, 1.5, 2.5}, []float64{0.5, 1.5}, []float64{1.5, 2.5})
	if err != nil {
		t.Fatal(err)
	}
	m, err = eltran.NewElectrolyte(testParams(), eltran.OperatorSet{
		WholeCell: newDiffOps(3, 1),
		Negative:  newDiffOps(2, 1),
		Positive:  newDiffOps(2, 1),
	}, mesh)
	if err != nil {
		t.Fatal(err)
	}
	s = &Simulation{Model: m, Log: discardLogger()}
	if err := s.Init(); err == nil {
		t.Error("overlapping electrodes: expected an error")
	}
}

func TestDefaultLogger(t *testing.T) {
	s := testSim(t, testParams(), 6, 2, 2)
	s.Log = nil
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if s.Log == nil {
		t.Error("setup left the logger nil")
	}
}

func TestObserversBeforeInit(t *testing.T) {
	s := &Simulation{}
	if !math.IsNaN(s.CellVoltage()) {
		t.Errorf("cell voltage = %g, want NaN", s.CellVoltage())
	}
	if !math.IsNaN(s.CationContent()) {
		t.Errorf("cation content = %g, want NaN", s.CationContent())
	}
}

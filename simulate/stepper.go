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

import "gonum.org/v1/gonum/floats"

// A Derivative evaluates the right-hand side of a system of ordinary
// differential equations at time t and state y, writing the result into
// dy. The dy slice is owned by the caller and has the same length as y.
type Derivative func(t float64, y, dy []float64) error

// A Stepper advances a state vector through one timestep of size dt,
// overwriting y with the state at t+dt.
type Stepper interface {
	Step(f Derivative, t, dt float64, y []float64) error
}

// ForwardEuler is the explicit first-order Euler stepper. The zero value
// is ready to use. A ForwardEuler must not be shared between goroutines.
type ForwardEuler struct {
	dy []float64
}

func (e *ForwardEuler) Step(f Derivative, t, dt float64, y []float64) error {
	if len(e.dy) != len(y) {
		e.dy = make([]float64, len(y))
	}
	if err := f(t, y, e.dy); err != nil {
		return err
	}
	floats.AddScaled(y, dt, e.dy)
	return nil
}

// RK4 is the classic fourth-order Runge-Kutta stepper. The zero value is
// ready to use. An RK4 must not be shared between goroutines.
type RK4 struct {
	k1, k2, k3, k4, yt []float64
}

func (r *RK4) Step(f Derivative, t, dt float64, y []float64) error {
	if len(r.k1) != len(y) {
		r.k1 = make([]float64, len(y))
		r.k2 = make([]float64, len(y))
		r.k3 = make([]float64, len(y))
		r.k4 = make([]float64, len(y))
		r.yt = make([]float64, len(y))
	}
	if err := f(t, y, r.k1); err != nil {
		return err
	}
	floats.AddScaledTo(r.yt, y, dt/2, r.k1)
	if err := f(t+dt/2, r.yt, r.k2); err != nil {
		return err
	}
	floats.AddScaledTo(r.yt, y, dt/2, r.k2)
	if err := f(t+dt/2, r.yt, r.k3); err != nil {
		return err
	}
	floats.AddScaledTo(r.yt, y, dt, r.k3)
	if err := f(t+dt, r.yt, r.k4); err != nil {
		return err
	}
	for i := range y {
		y[i] += dt / 6 * (r.k1[i] + 2*r.k2[i] + 2*r.k3[i] + r.k4[i])
	}
	return nil
}

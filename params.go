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

package eltran

import (
	"fmt"
	"math"
)

// Parameters holds the dimensionless groups and constitutive relations of
// the electrolyte model. The leadacid subpackage derives a complete set
// from dimensional cell data.
type Parameters struct {
	// C0 is the initial electrolyte concentration, scaled by the bulk
	// concentration (so usually 1).
	C0 float64

	// S multiplies the interfacial current density in the cation source
	// term. It collects the transference number and the reaction
	// stoichiometry.
	S float64

	// GammaDLNeg and GammaDLPos are the double-layer capacitance ratios
	// of the two electrodes. They divide the charge accumulation term,
	// so they must be positive.
	GammaDLNeg float64
	GammaDLPos float64

	// Icell is the applied current density at time t under galvanostatic
	// control. Schedules for constant current, cycling and expression-
	// defined programs are in the schedule subpackage.
	Icell func(t float64) float64

	// OCPNeg and OCPPos are the open-circuit potentials of the two
	// electrodes as functions of electrolyte concentration. They set the
	// initial electrode potentials.
	OCPNeg func(c float64) float64
	OCPPos func(c float64) float64

	// KappaNeg and KappaPos are the effective electrolyte conductivities
	// multiplying the potential gradient in the MacInnes equation, as
	// functions of the face concentration. KappaDNeg and KappaDPos are
	// the diffusional conductivities multiplying the concentration
	// gradient. A nil function means unity.
	KappaNeg  func(c float64) float64
	KappaPos  func(c float64) float64
	KappaDNeg func(c float64) float64
	KappaDPos func(c float64) float64
}

func (p Parameters) check() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"C0", p.C0},
		{"S", p.S},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("eltran: parameter %s is not finite: %w", v.name, ErrUnconfigured)
		}
	}
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"GammaDLNeg", p.GammaDLNeg},
		{"GammaDLPos", p.GammaDLPos},
	} {
		if !(v.val > 0) || math.IsInf(v.val, 0) {
			return fmt.Errorf("eltran: parameter %s must be positive and finite, got %g: %w", v.name, v.val, ErrUnconfigured)
		}
	}
	if p.Icell == nil {
		return fmt.Errorf("eltran: parameter Icell is nil: %w", ErrUnconfigured)
	}
	if p.OCPNeg == nil || p.OCPPos == nil {
		return fmt.Errorf("eltran: open-circuit potential functions are nil: %w", ErrUnconfigured)
	}
	return nil
}

// macInnesCoeffs returns the conductivity and diffusional conductivity for
// electrode domain d, substituting unity for unset functions.
func (p Parameters) macInnesCoeffs(d Domain) (κ, κD func(float64) float64, err error) {
	switch d {
	case Negative:
		κ, κD = p.KappaNeg, p.KappaDNeg
	case Positive:
		κ, κD = p.KappaPos, p.KappaDPos
	default:
		return nil, nil, fmt.Errorf("eltran: MacInnes equation over %v; valid options are xcn and xcp: %w", d, ErrInvalidDomain)
	}
	if κ == nil {
		κ = one
	}
	if κD == nil {
		κD = one
	}
	return κ, κD, nil
}

func one(_ float64) float64 { return 1 }

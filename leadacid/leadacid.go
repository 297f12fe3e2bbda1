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

// Package leadacid holds dimensional parameters for a flooded lead-acid
// cell and converts them to the dimensionless groups used by the
// transport model. All quantities carry SI units so that the conversions
// can be dimension-checked rather than trusted.
package leadacid

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
	"github.com/electromodel/eltran"
)

var (
	mole = unit.NewDimension("mole")

	molPerM3    = unit.Dimensions{mole: 1, unit.LengthDim: -3}
	m3PerMol    = unit.Dimensions{unit.LengthDim: 3, mole: -1}
	molPerKg    = unit.Dimensions{mole: 1, unit.MassDim: -1}
	kgPerMol    = unit.Dimensions{unit.MassDim: 1, mole: -1}
	perMeter    = unit.Dimensions{unit.LengthDim: -1}
	m2PerS      = unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -1}
	ampPerM2    = unit.Dimensions{unit.CurrentDim: 1, unit.LengthDim: -2}
	faradPerM2  = unit.Dimensions{unit.CurrentDim: 2, unit.TimeDim: 4, unit.MassDim: -1, unit.LengthDim: -4}
	volt        = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -3, unit.CurrentDim: -1}
	siemensPerM = unit.Dimensions{unit.CurrentDim: 2, unit.TimeDim: 3, unit.MassDim: -1, unit.LengthDim: -3}
)

var (
	faraday = unit.New(96485.33212, unit.Dimensions{
		unit.CurrentDim: 1, unit.TimeDim: 1, mole: -1})
	gasConstant = unit.New(8.314462618, unit.Dimensions{
		unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -2,
		unit.TemperatureDim: -1, mole: -1})

	// Partial molar volumes of water and sulfuric acid, and the molar
	// mass of water, for converting concentration to molality.
	waterMolarVolume = unit.New(17.5e-6, m3PerMol)
	acidMolarVolume  = unit.New(45.0e-6, m3PerMol)
	waterMolarMass   = unit.New(18.0e-3, kgPerMol)
)

// Cell holds the dimensional parameters of a flooded lead-acid cell.
type Cell struct {
	LNeg *unit.Unit // Negative electrode thickness [m].
	LSep *unit.Unit // Separator thickness [m].
	LPos *unit.Unit // Positive electrode thickness [m].

	CDLNeg *unit.Unit // Negative double-layer capacitance [F m-2].
	CDLPos *unit.Unit // Positive double-layer capacitance [F m-2].

	ANeg *unit.Unit // Negative interfacial area per volume [m-1].
	APos *unit.Unit // Positive interfacial area per volume [m-1].

	CMax  *unit.Unit // Maximum acid concentration [mol m-3].
	CInit *unit.Unit // Initial acid concentration [mol m-3].

	D    *unit.Unit // Typical acid diffusivity [m2 s-1].
	T    *unit.Unit // Cell temperature [K].
	ITyp *unit.Unit // Typical applied current density [A m-2].

	// TPlus is the cation transference number of sulfuric acid.
	TPlus float64
}

// Default returns parameters representative of a flooded lead-acid cell
// near full charge at room temperature.
func Default() *Cell {
	return &Cell{
		LNeg:   unit.New(0.9e-3, unit.Meter),
		LSep:   unit.New(1.5e-3, unit.Meter),
		LPos:   unit.New(1.25e-3, unit.Meter),
		CDLNeg: unit.New(0.2, faradPerM2),
		CDLPos: unit.New(0.2, faradPerM2),
		ANeg:   unit.New(2.6e6, perMeter),
		APos:   unit.New(23.0e6, perMeter),
		CMax:   unit.New(5.6e3, molPerM3),
		CInit:  unit.New(5.6e3, molPerM3),
		D:      unit.New(3.21e-9, m2PerS),
		T:      unit.New(298.15, unit.Kelvin),
		ITyp:   unit.New(20, ampPerM2),
		TPlus:  0.72,
	}
}

func (c *Cell) check() error {
	checks := []struct {
		name string
		u    *unit.Unit
		dims unit.Dimensions
	}{
		{"LNeg", c.LNeg, unit.Meter},
		{"LSep", c.LSep, unit.Meter},
		{"LPos", c.LPos, unit.Meter},
		{"CDLNeg", c.CDLNeg, faradPerM2},
		{"CDLPos", c.CDLPos, faradPerM2},
		{"ANeg", c.ANeg, perMeter},
		{"APos", c.APos, perMeter},
		{"CMax", c.CMax, molPerM3},
		{"CInit", c.CInit, molPerM3},
		{"D", c.D, m2PerS},
		{"T", c.T, unit.Kelvin},
		{"ITyp", c.ITyp, ampPerM2},
	}
	for _, ch := range checks {
		if ch.u == nil {
			return fmt.Errorf("leadacid: %s is not set", ch.name)
		}
		if err := ch.u.Check(ch.dims); err != nil {
			return fmt.Errorf("leadacid: %s: %w", ch.name, err)
		}
		if v := ch.u.Value(); math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("leadacid: %s must be positive, got %g", ch.name, v)
		}
	}
	if c.TPlus <= 0 || c.TPlus >= 1 {
		return fmt.Errorf("leadacid: transference number must be in (0, 1), got %g", c.TPlus)
	}
	return nil
}

// Width returns the total cell width LNeg + LSep + LPos.
func (c *Cell) Width() *unit.Unit {
	return unit.Add(c.LNeg, c.LSep, c.LPos)
}

// ThermalVoltage returns RT/F.
func (c *Cell) ThermalVoltage() *unit.Unit {
	return unit.Div(unit.Mul(gasConstant, c.T), faraday)
}

// TimeScale returns the acid diffusion timescale Width²/D. Dimensionless
// model time multiplied by this gives seconds.
func (c *Cell) TimeScale() *unit.Unit {
	w := c.Width()
	return unit.Div(unit.Mul(w, w), c.D)
}

// Parameters converts the cell to the dimensionless parameter groups of
// the transport model. The icell argument gives the applied current in
// units of ITyp as a function of time in units of TimeScale; the schedule
// package builds such functions. Each derived group is dimension-checked
// and an error is returned if any of them fails to reduce to a pure
// number.
func (c *Cell) Parameters(icell func(t float64) float64) (eltran.Parameters, error) {
	if err := c.check(); err != nil {
		return eltran.Parameters{}, err
	}
	if icell == nil {
		return eltran.Parameters{}, fmt.Errorf("leadacid: applied current function is not set")
	}
	vt := c.ThermalVoltage()
	if err := vt.Check(volt); err != nil {
		return eltran.Parameters{}, fmt.Errorf("leadacid: thermal voltage: %w", err)
	}
	width := c.Width()

	dimless := func(name string, u *unit.Unit) (float64, error) {
		if err := u.Check(unit.Dimless); err != nil {
			return 0, fmt.Errorf("leadacid: %s: %w", name, err)
		}
		return u.Value(), nil
	}

	// γ = CDL·a·VT·D / (ITyp·Lx) compares the double-layer charging
	// timescale to the diffusion timescale.
	γn, err := dimless("negative double-layer ratio",
		unit.Div(unit.Mul(c.CDLNeg, c.ANeg, vt, c.D), unit.Mul(c.ITyp, width)))
	if err != nil {
		return eltran.Parameters{}, err
	}
	γp, err := dimless("positive double-layer ratio",
		unit.Div(unit.Mul(c.CDLPos, c.APos, vt, c.D), unit.Mul(c.ITyp, width)))
	if err != nil {
		return eltran.Parameters{}, err
	}

	// The reaction produces half a cation per electron at the negative
	// electrode, of which the fraction TPlus is carried away again by
	// migration.
	sScale, err := dimless("reaction source scale",
		unit.Div(unit.Mul(c.ITyp, width), unit.Mul(faraday, c.CMax, c.D)))
	if err != nil {
		return eltran.Parameters{}, err
	}

	c0, err := dimless("initial concentration", unit.Div(c.CInit, c.CMax))
	if err != nil {
		return eltran.Parameters{}, err
	}

	cmax := c.CMax.Value()
	vtv := vt.Value()
	κTyp, err := Conductivity(c.CMax)
	if err != nil {
		return eltran.Parameters{}, err
	}
	κTypV := κTyp.Value()
	κ := func(ĉ float64) float64 {
		return conductivity(ĉ*cmax) / κTypV
	}
	// Dilute-solution diffusional conductivity: the concentration
	// overpotential contributes 2(1-t+)·∇ln(c) to the MacInnes equation.
	κD := func(ĉ float64) float64 {
		return 2 * (1 - c.TPlus) * conductivity(ĉ*cmax) / κTypV / ĉ
	}

	return eltran.Parameters{
		C0:         c0,
		S:          (0.5 - c.TPlus) * sScale,
		GammaDLNeg: γn,
		GammaDLPos: γp,
		Icell:      icell,
		OCPNeg: func(ĉ float64) float64 {
			return openCircuitPb(molality(ĉ*cmax)) / vtv
		},
		OCPPos: func(ĉ float64) float64 {
			return openCircuitPbO2(molality(ĉ*cmax)) / vtv
		},
		KappaNeg:  κ,
		KappaPos:  κ,
		KappaDNeg: κD,
		KappaDPos: κD,
	}, nil
}

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

import "fmt"

// Electrolyte evaluates the time derivatives of the 1D electrolyte model:
// cation conservation over the full cell width and charge conservation in
// each porous electrode, coupled through the MacInnes equation. The
// parameter, operator and mesh contexts are fixed at construction, and
// every method is a pure function of its arguments, so one model value can
// be shared between goroutines.
type Electrolyte struct {
	param Parameters
	ops   OperatorSet
	mesh  *Mesh
}

// NewElectrolyte validates the three model contexts and returns a model
// ready for derivative evaluation.
func NewElectrolyte(param Parameters, ops OperatorSet, mesh *Mesh) (*Electrolyte, error) {
	if mesh == nil {
		return nil, fmt.Errorf("eltran: nil mesh: %w", ErrUnconfigured)
	}
	if err := param.check(); err != nil {
		return nil, err
	}
	if err := ops.check(); err != nil {
		return nil, err
	}
	return &Electrolyte{param: param, ops: ops, mesh: mesh}, nil
}

// InitialState holds the initial model fields: concentration over xc and
// the electrode potential differences over xcn and xcp.
type InitialState struct {
	C  Field
	En Field
	Ep Field
}

// InitialState returns uniform initial conditions: the concentration at
// its bulk value everywhere, and each electrode potential at its
// open-circuit value for that concentration.
func (m *Electrolyte) InitialState() InitialState {
	return InitialState{
		C:  UniformField(m.param.C0, m.mesh.size(WholeCell)),
		En: UniformField(m.param.OCPNeg(m.param.C0), m.mesh.size(Negative)),
		Ep: UniformField(m.param.OCPPos(m.param.C0), m.mesh.size(Positive)),
	}
}

// CationConservation evaluates dc/dt over the full cell width. The cation
// flux is the negative concentration gradient at the interior faces,
// completed by the boundary fluxes bc at the outer faces; its divergence
// is removed from each cell and the interfacial current density j acts as
// a source:
//
//	dc/dt = -div(N) + S*j,  N = [bc.Left, -grad(c), bc.Right]
func (m *Electrolyte) CationConservation(c, j Field, bc FluxBC) (Field, error) {
	n := m.mesh.size(WholeCell)
	if len(c) != n {
		return nil, fmt.Errorf("eltran: cation conservation: concentration has %d cells but xc has %d: %w", len(c), n, ErrShapeMismatch)
	}
	if len(j) != n {
		return nil, fmt.Errorf("eltran: cation conservation: interfacial current density has %d cells but xc has %d: %w", len(j), n, ErrShapeMismatch)
	}
	op := m.ops.WholeCell
	grad := op.Grad(c)
	if len(grad) != n-1 {
		return nil, fmt.Errorf("eltran: xc gradient returned %d interior faces for %d cells: %w", len(grad), n, ErrShapeMismatch)
	}
	N := make(Field, n+1)
	N[0] = bc.Left
	for k, g := range grad {
		N[k+1] = -g
	}
	N[n] = bc.Right
	div := op.Div(N)
	if len(div) != n {
		return nil, fmt.Errorf("eltran: xc divergence returned %d cells for %d faces: %w", len(div), n+1, ErrShapeMismatch)
	}
	dcdt := make(Field, n)
	for k := range dcdt {
		dcdt[k] = -div[k] + m.param.S*j[k]
	}
	return dcdt, nil
}

// CationFluxBCs returns the Neumann boundary conditions for cation
// conservation. Cations cannot pass the current collectors, so both
// boundary fluxes are zero at all times.
func (m *Electrolyte) CationFluxBCs() FluxBC {
	return FluxBC{}
}

// MacInnes evaluates the MacInnes equation for the electrolyte current
// density in electrode domain dom, returning the n+1 face values
//
//	i = [bc.Left, κD(c)*grad(c) + κ(c)*grad(e), bc.Right]
//
// with the conductivities evaluated at the mean of the two cell
// concentrations adjacent to each interior face.
func (m *Electrolyte) MacInnes(dom Domain, c, e Field, bc FluxBC) (Field, error) {
	κ, κD, err := m.param.macInnesCoeffs(dom)
	if err != nil {
		return nil, err
	}
	n := m.mesh.size(dom)
	if len(c) != n {
		return nil, fmt.Errorf("eltran: MacInnes equation: concentration has %d cells but %v has %d: %w", len(c), dom, n, ErrShapeMismatch)
	}
	if len(e) != n {
		return nil, fmt.Errorf("eltran: MacInnes equation: potential has %d cells but %v has %d: %w", len(e), dom, n, ErrShapeMismatch)
	}
	op := m.ops.forDomain(dom)
	gradC := op.Grad(c)
	gradE := op.Grad(e)
	if len(gradC) != n-1 || len(gradE) != n-1 {
		return nil, fmt.Errorf("eltran: %v gradient returned %d and %d interior faces for %d cells: %w", dom, len(gradC), len(gradE), n, ErrShapeMismatch)
	}
	i := make(Field, n+1)
	i[0] = bc.Left
	for k := 0; k < n-1; k++ {
		cFace := 0.5 * (c[k] + c[k+1])
		i[k+1] = κD(cFace)*gradC[k] + κ(cFace)*gradE[k]
	}
	i[n] = bc.Right
	return i, nil
}

// ChargeConservation evaluates de/dt in electrode domain dom. The
// electrolyte current density comes from the MacInnes equation with the
// boundary currents bc; charge transferred through the interface (j)
// leaves the double layer:
//
//	de/dt = (div(i) - j) / γ_dl
func (m *Electrolyte) ChargeConservation(dom Domain, c, e, j Field, bc FluxBC) (Field, error) {
	γ, err := m.GammaDL(dom)
	if err != nil {
		return nil, err
	}
	n := m.mesh.size(dom)
	if len(j) != n {
		return nil, fmt.Errorf("eltran: charge conservation: interfacial current density has %d cells but %v has %d: %w", len(j), dom, n, ErrShapeMismatch)
	}
	i, err := m.MacInnes(dom, c, e, bc)
	if err != nil {
		return nil, err
	}
	div := m.ops.forDomain(dom).Div(i)
	if len(div) != n {
		return nil, fmt.Errorf("eltran: %v divergence returned %d cells for %d faces: %w", dom, len(div), n+1, ErrShapeMismatch)
	}
	dedt := make(Field, n)
	for k := range dedt {
		dedt[k] = (div[k] - j[k]) / γ
	}
	return dedt, nil
}

// CurrentBCs returns the boundary conditions for the electrolyte current
// density in electrode domain dom at time t. Under galvanostatic control
// the electrolyte carries no current at the current collectors and the
// full applied current at the separator boundary.
func (m *Electrolyte) CurrentBCs(dom Domain, t float64) (FluxBC, error) {
	switch dom {
	case Negative:
		return FluxBC{Left: 0, Right: m.param.Icell(t)}, nil
	case Positive:
		return FluxBC{Left: m.param.Icell(t), Right: 0}, nil
	}
	return FluxBC{}, fmt.Errorf("eltran: current boundary conditions over %v; valid options are xcn and xcp: %w", dom, ErrInvalidDomain)
}

// GammaDL returns the double-layer capacitance ratio of electrode domain
// dom.
func (m *Electrolyte) GammaDL(dom Domain) (float64, error) {
	switch dom {
	case Negative:
		return m.param.GammaDLNeg, nil
	case Positive:
		return m.param.GammaDLPos, nil
	}
	return 0, fmt.Errorf("eltran: no double-layer capacitance over %v; valid options are xcn and xcp: %w", dom, ErrInvalidDomain)
}

// AppliedCurrent returns the applied current density at time t.
func (m *Electrolyte) AppliedCurrent(t float64) float64 {
	return m.param.Icell(t)
}

// Mesh returns the mesh the model was created with.
func (m *Electrolyte) Mesh() *Mesh {
	return m.mesh
}

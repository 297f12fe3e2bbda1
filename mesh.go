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

// Mesh holds the cell-centre coordinates of the three model domains. It is
// a container only: mesh generation happens elsewhere, and NewMesh just
// validates and freezes the coordinates it is given.
type Mesh struct {
	xc, xcn, xcp Field
}

// NewMesh returns a mesh with the given cell-centre coordinates for the
// full cell width (xc) and the negative and positive electrodes (xcn,
// xcp). Each coordinate array must be nonempty, finite and strictly
// increasing.
func NewMesh(xc, xcn, xcp []float64) (*Mesh, error) {
	domains := []struct {
		d Domain
		x []float64
	}{
		{WholeCell, xc},
		{Negative, xcn},
		{Positive, xcp},
	}
	for _, dom := range domains {
		if len(dom.x) == 0 {
			return nil, fmt.Errorf("eltran: mesh domain %v is empty: %w", dom.d, ErrUnconfigured)
		}
		for i, v := range dom.x {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("eltran: mesh domain %v has a non-finite coordinate at cell %d: %w", dom.d, i, ErrUnconfigured)
			}
			if i > 0 && v <= dom.x[i-1] {
				return nil, fmt.Errorf("eltran: mesh domain %v coordinates must be strictly increasing (cell %d): %w", dom.d, i, ErrUnconfigured)
			}
		}
	}
	return &Mesh{
		xc:  append(Field{}, xc...),
		xcn: append(Field{}, xcn...),
		xcp: append(Field{}, xcp...),
	}, nil
}

// Centers returns a copy of the cell-centre coordinates of domain d.
func (m *Mesh) Centers(d Domain) (Field, error) {
	x := m.centers(d)
	if x == nil {
		return nil, fmt.Errorf("eltran: mesh has no domain %v; valid options are xcn, xc and xcp: %w", d, ErrInvalidDomain)
	}
	return append(Field{}, x...), nil
}

// MinSpacing returns the smallest distance between adjacent cell centres
// in domain d. Explicit integrators use it to bound their timestep.
func (m *Mesh) MinSpacing(d Domain) (float64, error) {
	x := m.centers(d)
	if x == nil {
		return 0, fmt.Errorf("eltran: mesh has no domain %v; valid options are xcn, xc and xcp: %w", d, ErrInvalidDomain)
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("eltran: mesh domain %v has %d cells; spacing needs at least 2: %w", d, len(x), ErrShapeMismatch)
	}
	dx := math.Inf(1)
	for i := 1; i < len(x); i++ {
		dx = math.Min(dx, x[i]-x[i-1])
	}
	return dx, nil
}

func (m *Mesh) centers(d Domain) Field {
	switch d {
	case WholeCell:
		return m.xc
	case Negative:
		return m.xcn
	case Positive:
		return m.xcp
	}
	return nil
}

func (m *Mesh) size(d Domain) int {
	return len(m.centers(d))
}

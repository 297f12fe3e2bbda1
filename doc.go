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

// Package eltran implements a one-dimensional transport model for the
// electrolyte of a porous-electrode electrochemical cell, such as the
// lead-acid cell described in the leadacid subpackage.
//
// The model evaluates the time derivatives of the semi-discrete governing
// equations on a finite-volume mesh: conservation of cations across the
// full cell width, and conservation of charge within each porous
// electrode, coupled through the MacInnes equation for the electrolyte
// current density. All quantities are dimensionless.
//
// The mesh, the discrete gradient and divergence operators, and the
// parameter set are supplied by the caller and fixed when the model is
// created; the model itself holds no mutable state, so its methods can be
// called concurrently. Time integration of the resulting derivatives is
// the job of the simulate subpackage or of any external integrator.
package eltran

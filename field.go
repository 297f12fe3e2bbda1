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

// Field holds the values of a model variable over one domain, either at
// the cell centres (length n) or at the cell faces (length n+1).
type Field []float64

// UniformField returns a Field of n cells, all set to v.
func UniformField(v float64, n int) Field {
	f := make(Field, n)
	for i := range f {
		f[i] = v
	}
	return f
}

// FluxBC is a pair of Neumann boundary values: the flux (or current
// density) through the leftmost and rightmost faces of a domain.
type FluxBC struct {
	Left, Right float64
}

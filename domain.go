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

// Domain identifies one of the spatial subdomains of the cell.
type Domain int

const (
	// Negative is the negative porous electrode, adjacent to the x = 0
	// current collector.
	Negative Domain = iota

	// WholeCell is the full cell width, spanning both electrodes and
	// the separator between them. The electrolyte fills it.
	WholeCell

	// Positive is the positive porous electrode, adjacent to the x = 1
	// current collector.
	Positive
)

func (d Domain) String() string {
	switch d {
	case Negative:
		return "xcn"
	case WholeCell:
		return "xc"
	case Positive:
		return "xcp"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

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

// GradDiv bundles the discrete spatial operators for one domain with n
// cells. Grad maps the n cell values of a field to its n-1 interior face
// values; Div maps n+1 face values (outer boundary faces included) back to
// n cell values. Implementations come from the caller's discretisation
// library; the model only composes them and checks their output shapes.
type GradDiv interface {
	Grad(Field) Field
	Div(Field) Field
}

// OperatorSet assigns a GradDiv pair to each model domain.
type OperatorSet struct {
	WholeCell GradDiv
	Negative  GradDiv
	Positive  GradDiv
}

// ForDomain returns the operator pair for domain d.
func (o OperatorSet) ForDomain(d Domain) (GradDiv, error) {
	op := o.forDomain(d)
	if op == nil {
		return nil, fmt.Errorf("eltran: no operators for domain %v; valid options are xcn, xc and xcp: %w", d, ErrInvalidDomain)
	}
	return op, nil
}

func (o OperatorSet) forDomain(d Domain) GradDiv {
	switch d {
	case WholeCell:
		return o.WholeCell
	case Negative:
		return o.Negative
	case Positive:
		return o.Positive
	}
	return nil
}

func (o OperatorSet) check() error {
	for _, d := range []Domain{Negative, WholeCell, Positive} {
		if o.forDomain(d) == nil {
			return fmt.Errorf("eltran: operator set has no operators for domain %v: %w", d, ErrUnconfigured)
		}
	}
	return nil
}

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

import "errors"

// Sentinel errors returned (wrapped with detail) by model operations.
// Match them with errors.Is.
var (
	// ErrShapeMismatch indicates that a field's length is inconsistent
	// with the mesh, with another field, or with an operator's output.
	ErrShapeMismatch = errors.New("field shape mismatch")

	// ErrInvalidDomain indicates a Domain outside the set an operation
	// accepts.
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrUnconfigured indicates a missing or malformed model context
	// (parameters, operators or mesh) at construction.
	ErrUnconfigured = errors.New("model context missing or malformed")
)

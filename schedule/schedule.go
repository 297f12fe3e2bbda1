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

// Package schedule builds applied-current programs. A program maps
// dimensionless time to the applied current in units of the typical
// current density; positive values discharge the cell.
package schedule

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// A Program gives the applied current as a function of time.
type Program func(t float64) float64

// Constant returns a program that applies current i at all times.
func Constant(i float64) Program {
	return func(t float64) float64 { return i }
}

// Rest returns a program that applies no current.
func Rest() Program {
	return Constant(0)
}

// A Step is one stage of a stepped program.
type Step struct {
	Duration float64 // How long the step lasts.
	Current  float64 // The current applied during the step.
}

func checkSteps(steps []Step) (total float64, err error) {
	if len(steps) == 0 {
		return 0, fmt.Errorf("schedule: a stepped program needs at least one step")
	}
	for i, s := range steps {
		if math.IsNaN(s.Duration) || s.Duration <= 0 || math.IsInf(s.Duration, 0) {
			return 0, fmt.Errorf("schedule: step %d duration must be positive and finite, got %g", i, s.Duration)
		}
		if math.IsNaN(s.Current) || math.IsInf(s.Current, 0) {
			return 0, fmt.Errorf("schedule: step %d current must be finite, got %g", i, s.Current)
		}
		total += s.Duration
	}
	return total, nil
}

// stepAt returns the current of the step containing time t, assuming
// 0 <= t. Each step holds over the half-open interval from its start to
// its end, and times past the last step return the fallback.
func stepAt(steps []Step, t, fallback float64) float64 {
	var end float64
	for _, s := range steps {
		end += s.Duration
		if t < end {
			return s.Current
		}
	}
	return fallback
}

// Steps returns a program that applies each step in order, starting at
// time zero, and rests once the final step has ended.
func Steps(steps ...Step) (Program, error) {
	if _, err := checkSteps(steps); err != nil {
		return nil, err
	}
	return func(t float64) float64 {
		if t < 0 {
			return steps[0].Current
		}
		return stepAt(steps, t, 0)
	}, nil
}

// Cycle returns a program that applies each step in order and then
// repeats from the first step, indefinitely.
func Cycle(steps ...Step) (Program, error) {
	total, err := checkSteps(steps)
	if err != nil {
		return nil, err
	}
	return func(t float64) float64 {
		t = math.Mod(t, total)
		if t < 0 {
			t += total
		}
		return stepAt(steps, t, steps[0].Current)
	}, nil
}

// Expression returns a program that evaluates expr with the variable 't'
// bound to the current time. A set of default functions is available
// within expressions:
//
// 'exp(x)' applies the exponential function e^x.
//
// 'sin(x)' and 'cos(x)' apply the circular functions.
//
// 'abs(x)' applies the absolute value function.
//
// Entries in funcs add to or override the defaults. The expression may
// reference no variable other than 't', must be evaluable at t = 0, and
// must produce a number. If an evaluation fails later, the program
// returns NaN.
func Expression(expr string, funcs map[string]govaluate.ExpressionFunction) (Program, error) {
	defaultFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("schedule: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return (float64)(math.Exp(arg[0].(float64))), nil
		},
		"sin": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("schedule: got %d arguments for function 'sin', but needs 1", len(arg))
			}
			return (float64)(math.Sin(arg[0].(float64))), nil
		},
		"cos": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("schedule: got %d arguments for function 'cos', but needs 1", len(arg))
			}
			return (float64)(math.Cos(arg[0].(float64))), nil
		},
		"abs": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("schedule: got %d arguments for function 'abs', but needs 1", len(arg))
			}
			return (float64)(math.Abs(arg[0].(float64))), nil
		},
	}
	for key, val := range funcs {
		defaultFuncs[key] = val
	}

	expression, err := govaluate.NewEvaluableExpressionWithFunctions(expr, defaultFuncs)
	if err != nil {
		return nil, fmt.Errorf("schedule: parsing %q: %w", expr, err)
	}
	for _, v := range expression.Vars() {
		if v != "t" {
			return nil, fmt.Errorf("schedule: expression %q references variable %q; only 't' is available", expr, v)
		}
	}

	eval := func(t float64) (float64, error) {
		result, err := expression.Evaluate(map[string]interface{}{"t": t})
		if err != nil {
			return 0, fmt.Errorf("schedule: evaluating %q at t=%g: %w", expr, t, err)
		}
		v, ok := result.(float64)
		if !ok {
			return 0, fmt.Errorf("schedule: expression %q produced %T, not a number", expr, result)
		}
		return v, nil
	}
	if _, err := eval(0); err != nil {
		return nil, err
	}

	return func(t float64) float64 {
		v, err := eval(t)
		if err != nil {
			return math.NaN()
		}
		return v
	}, nil
}

// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"fmt"
	"math"
)

// Convergence selects the test that ends a Newton run.
type Convergence int

const (
	// ResidualChange stops when successive residuals differ by less than the tolerance.
	ResidualChange Convergence = iota
	// ResidualMagnitude stops when the residual of the new estimate is below the tolerance.
	ResidualMagnitude
	// StepSize stops when the Newton step is shorter than the tolerance (in K).
	StepSize
)

func (c Convergence) String() string {
	switch c {
	case ResidualChange:
		return "residual-change"
	case ResidualMagnitude:
		return "residual"
	case StepSize:
		return "step"
	default:
		return fmt.Sprintf("Convergence(%d)", int(c))
	}
}

func ParseConvergence(s string) (Convergence, error) {
	switch s {
	case "residual-change":
		return ResidualChange, nil
	case "residual":
		return ResidualMagnitude, nil
	case "step":
		return StepSize, nil
	default:
		return 0, fmt.Errorf("%w: unknown convergence criterion '%s'", ErrInvalidInput, s)
	}
}

type SolverConfig struct {
	MaxIterations int
	Tolerance     float64
	Convergence   Convergence
}

func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MaxIterations: 100,
		Tolerance:     1e-6,
		Convergence:   ResidualChange,
	}
}

// Iteration is the state of the solver at the start of one Newton step.
type Iteration struct {
	Index      int
	Estimate   float64 // K
	Residual   float64 // hPa
	Derivative float64 // hPa / K
}

// Solution is the outcome of a converged Newton run.
type Solution struct {
	Temperature float64 // K
	Residual    float64 // hPa
	Iterations  int
	Exact       bool
}

// Solver inverts the Goff-Gratch equation with Newton's method. A Solver holds no
// state between calls to Solve.
type Solver struct {
	config SolverConfig

	// OnIteration is called before every Newton step, if set.
	OnIteration func(Iteration)
	// Metrics records the outcome of every run, if set.
	Metrics *SolverMetrics
}

func NewSolver(config SolverConfig) (*Solver, error) {
	if config.MaxIterations <= 0 {
		return nil, fmt.Errorf("%w: maximum iterations must be positive, got %d",
			ErrInvalidInput, config.MaxIterations)
	}
	if !(config.Tolerance > 0) || math.IsInf(config.Tolerance, 1) {
		return nil, fmt.Errorf("%w: tolerance must be a positive number, got %g",
			ErrInvalidInput, config.Tolerance)
	}
	switch config.Convergence {
	case ResidualChange, ResidualMagnitude, StepSize:
	default:
		return nil, fmt.Errorf("%w: unknown convergence criterion %s", ErrInvalidInput, config.Convergence)
	}
	return &Solver{config: config}, nil
}

func (s *Solver) Config() SolverConfig {
	return s.config
}

// Solve returns the temperature in K at which the saturation vapour pressure equals
// targetPressure (hPa), starting the iteration at initialGuess (K).
func (s *Solver) Solve(initialGuess float64, targetPressure float64) (Solution, error) {
	if !isPositiveFinite(initialGuess) {
		s.Metrics.observeInvalid()
		return Solution{}, fmt.Errorf("%w: initial guess %g K is not a positive temperature",
			ErrInvalidInput, initialGuess)
	}
	if !isPositiveFinite(targetPressure) {
		s.Metrics.observeInvalid()
		return Solution{}, fmt.Errorf("%w: target vapour pressure %g hPa is not positive",
			ErrInvalidInput, targetPressure)
	}

	x := initialGuess
	var fx float64
	for i := 0; i < s.config.MaxIterations; i++ {
		fx = SaturationResidual(x, targetPressure)
		dfx := SaturationVaporPressureDerivative(x)
		s.observe(Iteration{Index: i, Estimate: x, Residual: fx, Derivative: dfx})

		if fx == 0 {
			return s.done(Solution{Temperature: x, Iterations: i, Exact: true}), nil
		}
		if dfx == 0 || math.IsNaN(dfx) || math.IsInf(dfx, 0) {
			return Solution{}, s.fail(&SolverError{
				Err:        ErrDegenerateDerivative,
				Iterations: i,
				Estimate:   x,
				Residual:   fx,
				Reason:     fmt.Sprintf("df(x)=%g", dfx),
			})
		}

		next := x - fx/dfx
		if !isPositiveFinite(next) {
			return Solution{}, s.fail(&SolverError{
				Err:        ErrNonConvergence,
				Iterations: i + 1,
				Estimate:   x,
				Residual:   fx,
				Reason:     fmt.Sprintf("estimate %g K left the model domain", next),
			})
		}
		fnext := SaturationResidual(next, targetPressure)
		if s.converged(x, next, fx, fnext) {
			return s.done(Solution{Temperature: next, Residual: fnext, Iterations: i + 1}), nil
		}
		x = next
		fx = fnext
	}

	return Solution{}, s.fail(&SolverError{
		Err:        ErrNonConvergence,
		Iterations: s.config.MaxIterations,
		Estimate:   x,
		Residual:   fx,
	})
}

func (s *Solver) converged(x, next, fx, fnext float64) bool {
	switch s.config.Convergence {
	case ResidualMagnitude:
		return math.Abs(fnext) < s.config.Tolerance
	case StepSize:
		return math.Abs(next-x) < s.config.Tolerance
	default:
		return math.Abs(fx-fnext) < s.config.Tolerance
	}
}

func (s *Solver) observe(it Iteration) {
	lg.Debugf("iteration %d: x=%g K, f(x)=%g hPa, df(x)=%g hPa/K",
		it.Index, it.Estimate, it.Residual, it.Derivative)
	if s.OnIteration != nil {
		s.OnIteration(it)
	}
}

func (s *Solver) done(solution Solution) Solution {
	lg.Debugf("converged after %d iterations: x=%g K, f(x)=%g hPa",
		solution.Iterations, solution.Temperature, solution.Residual)
	s.Metrics.observeSolution(solution)
	return solution
}

func (s *Solver) fail(err *SolverError) error {
	lg.Debugf("%s", err)
	s.Metrics.observeFailure(err)
	return err
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

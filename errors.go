// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a reading or parameter outside the domain of the model.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDegenerateDerivative indicates that the Newton update is undefined because dP/dT is zero.
	ErrDegenerateDerivative = errors.New("degenerate derivative")
	// ErrNonConvergence indicates that the solver gave up without meeting its convergence test.
	ErrNonConvergence = errors.New("failed to converge")
	// ErrUndefinedHumidity indicates that the absolute humidity cannot be calculated.
	ErrUndefinedHumidity = errors.New("undefined absolute humidity")
)

// SolverError describes a failed Newton run. It unwraps to ErrDegenerateDerivative
// or ErrNonConvergence and keeps the last state for diagnosis.
type SolverError struct {
	Err        error
	Iterations int
	Estimate   float64 // K
	Residual   float64 // hPa
	Reason     string
}

func (e *SolverError) Error() string {
	msg := fmt.Sprintf("%s after %d iterations (x=%g K, f(x)=%g hPa)",
		e.Err, e.Iterations, e.Estimate, e.Residual)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

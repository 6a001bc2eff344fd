// Copyright (C) 2021, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"errors"
	"math"
	"testing"
)

func TestVaporDensity(t *testing.T) {
	tests := []struct {
		rh          float64
		tempCelsius float64
		ah          float64
	}{
		{40.0, 20.0, 6.91},
		{50.0, 15.0, 6.41},
		{70.0, 20.0, 12.09},
		{80.0, 15.0, 10.25},
		{80.0, -10.0, 1.89},
		{20.0, 50.0, 16.55},
	}

	solver := newTestSolver(t, DefaultSolverConfig())
	for _, test := range tests {
		result, err := CalculateHumidity(solver, test.tempCelsius, test.rh)
		if err != nil {
			t.Fatalf("CalculateHumidity(%v, %v) unexpected error: %v", test.tempCelsius, test.rh, err)
		}
		if math.Abs(result.VaporDensity-test.ah) > 0.01 {
			t.Errorf(
				"Absolute humidity for %f%% humidity at %f° C was incorrect, got: %f, want: %f.",
				test.rh, test.tempCelsius, result.VaporDensity, test.ah)
		}
	}
}

func TestCalculateHumidity(t *testing.T) {
	tests := []struct {
		name             string
		dryBulb          float64
		rh               float64
		dewPoint         float64
		absoluteHumidity float64
	}{
		{"temperate", 25.0, 50.0, 13.86, 0.00987},
		{"hot and dry", 35.0, 10.0, -1.13, 0.00347},
		{"nearly saturated", 0.0, 99.9, -0.01, 0.00377},
		{"frost", -20.0, 50.0, -27.76, 0.00039},
		{"polar", -60.0, 30.0, -68.97, 0.0000035},
	}

	solver := newTestSolver(t, DefaultSolverConfig())
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result, err := CalculateHumidity(solver, test.dryBulb, test.rh)
			if err != nil {
				t.Fatalf("CalculateHumidity(%v, %v) unexpected error: %v", test.dryBulb, test.rh, err)
			}
			if math.Abs(result.DewPoint-test.dewPoint) > 0.01 {
				t.Errorf("dew point = %v, want %v", result.DewPoint, test.dewPoint)
			}
			if math.Abs(result.AbsoluteHumidity-test.absoluteHumidity) > 1e-5 {
				t.Errorf("absolute humidity = %v, want %v", result.AbsoluteHumidity, test.absoluteHumidity)
			}
			if result.DewPoint > test.dryBulb {
				t.Errorf("dew point %v above dry-bulb temperature %v", result.DewPoint, test.dryBulb)
			}
		})
	}
}

func TestCalculateHumidityScenario(t *testing.T) {
	solver := newTestSolver(t, DefaultSolverConfig())
	result, err := CalculateHumidity(solver, 25.0, 50.0)
	if err != nil {
		t.Fatalf("CalculateHumidity() unexpected error: %v", err)
	}
	if math.Abs(result.SaturationPressure-31.67) > 0.01 {
		t.Errorf("saturation pressure = %v, want 31.67", result.SaturationPressure)
	}
	if math.Abs(result.VaporPressure-15.84) > 0.01 {
		t.Errorf("vapour pressure = %v, want 15.84", result.VaporPressure)
	}
	if math.Abs(result.DewPoint-13.8) > 0.2 {
		t.Errorf("dew point = %v, want 13.8 ± 0.2", result.DewPoint)
	}
	if math.Abs(result.Solution.Temperature-celsiusZero-result.DewPoint) > 1e-9 {
		t.Errorf("solution %v K does not match dew point %v °C", result.Solution.Temperature, result.DewPoint)
	}
}

func TestCalculateHumidityFailures(t *testing.T) {
	tests := []struct {
		name      string
		dryBulb   float64
		rh        float64
		wantedErr error
	}{
		{"saturated", 0.0, 100.0, ErrUndefinedHumidity},
		{"saturated warm", 25.0, 100.0, ErrUndefinedHumidity},
		{"absolute zero", -273.15, 50.0, ErrInvalidInput},
		{"below absolute zero", -300.0, 50.0, ErrInvalidInput},
		{"NaN temperature", math.NaN(), 50.0, ErrInvalidInput},
		{"infinite temperature", math.Inf(1), 50.0, ErrInvalidInput},
		{"dry air", 20.0, 0.0, ErrInvalidInput},
		{"negative humidity", 20.0, -5.0, ErrInvalidInput},
		{"NaN humidity", 20.0, math.NaN(), ErrInvalidInput},
		{"boiling", 110.0, 99.0, ErrUndefinedHumidity},
	}

	solver := newTestSolver(t, DefaultSolverConfig())
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := CalculateHumidity(solver, test.dryBulb, test.rh)
			if !errors.Is(err, test.wantedErr) {
				t.Errorf("CalculateHumidity(%v, %v) error = %v, want %v",
					test.dryBulb, test.rh, err, test.wantedErr)
			}
		})
	}
}

func TestMixingRatio(t *testing.T) {
	ratio, err := MixingRatio(15.834)
	if err != nil {
		t.Fatalf("MixingRatio() unexpected error: %v", err)
	}
	if math.Abs(ratio-0.009874) > 1e-6 {
		t.Errorf("MixingRatio(15.834) = %v, want 0.009874", ratio)
	}
	if _, err := MixingRatio(standardPressure); !errors.Is(err, ErrUndefinedHumidity) {
		t.Errorf("MixingRatio(%v) error = %v, want %v", standardPressure, err, ErrUndefinedHumidity)
	}
}

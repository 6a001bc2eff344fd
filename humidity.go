// Copyright (C) 2021, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"fmt"
	"math"
)

const (
	gasConstant       = 8.31446261815324             // molar gas constant R in kg * m² / (s² * K * mol)
	molarMassWater    = 0.01801528                   // molar mass of water M(H2O) in kg / mol
	gasConstantWater  = gasConstant / molarMassWater // specific gas constant for water vapor in m² / (s² * K)
	molarMassRatio    = 0.622                        // M(H2O) / M(dry air)
	standardPressure  = 1013.25                      // standard atmosphere in hPa
	saturatedHumidity = 100.0                        // relative humidity of saturated air in %
)

// HumidityResult holds everything derived from one dry-bulb / relative humidity reading.
type HumidityResult struct {
	DryBulb            float64 // °C
	RelativeHumidity   float64 // %
	SaturationPressure float64 // hPa at the dry-bulb temperature
	VaporPressure      float64 // hPa
	AbsoluteHumidity   float64 // kg water vapour / kg dry air
	VaporDensity       float64 // g/m³
	DewPoint           float64 // °C
	Solution           Solution
}

// CalculateHumidity derives the absolute humidity and the dew point from the dry-bulb
// temperature in Celsius and the relative humidity in percent. The dew point is found
// by inverting the Goff-Gratch equation with the solver, starting at the dry-bulb
// temperature.
func CalculateHumidity(solver *Solver, dryBulbCelsius float64, relativeHumidity float64) (HumidityResult, error) {
	temperatureKelvin := dryBulbCelsius + celsiusZero
	if math.IsNaN(dryBulbCelsius) || !isPositiveFinite(temperatureKelvin) {
		return HumidityResult{}, fmt.Errorf(
			"%w: dry-bulb temperature %g °C is not above absolute zero", ErrInvalidInput, dryBulbCelsius)
	}
	if !isPositiveFinite(relativeHumidity) {
		return HumidityResult{}, fmt.Errorf(
			"%w: relative humidity %g %% must be greater than zero", ErrInvalidInput, relativeHumidity)
	}
	// Absolute humidity is not reported for saturated air.
	if relativeHumidity == saturatedHumidity {
		return HumidityResult{}, fmt.Errorf(
			"%w: relative humidity is %g %%", ErrUndefinedHumidity, relativeHumidity)
	}

	saturationPressure := SaturationVaporPressure(temperatureKelvin)
	vaporPressure := saturationPressure * relativeHumidity / 100
	absoluteHumidity, err := MixingRatio(vaporPressure)
	if err != nil {
		return HumidityResult{}, err
	}

	solution, err := solver.Solve(temperatureKelvin, vaporPressure)
	if err != nil {
		return HumidityResult{}, err
	}

	return HumidityResult{
		DryBulb:            dryBulbCelsius,
		RelativeHumidity:   relativeHumidity,
		SaturationPressure: saturationPressure,
		VaporPressure:      vaporPressure,
		AbsoluteHumidity:   absoluteHumidity,
		VaporDensity:       VaporDensity(vaporPressure, temperatureKelvin),
		DewPoint:           solution.Temperature - celsiusZero,
		Solution:           solution,
	}, nil
}

// MixingRatio calculates the absolute humidity in kg water vapour per kg dry air for
// the given vapour pressure in hPa at standard atmospheric pressure.
func MixingRatio(vaporPressure float64) (float64, error) {
	dryAirPressure := standardPressure - vaporPressure
	if dryAirPressure <= 0 {
		return 0, fmt.Errorf("%w: vapour pressure %g hPa reaches atmospheric pressure",
			ErrUndefinedHumidity, vaporPressure)
	}
	return molarMassRatio * vaporPressure / dryAirPressure, nil
}

// VaporDensity calculates the absolute humidity in g/m³ for a given vapour pressure in
// hPa and temperature in Kelvin.
//
// The humidity definitions and the ideal gas law were used for deriving the formula:
// 1. absoluteHumidity = massWaterVapor / VolumeAirAndWater
// 2. partialVaporPressureWater = (massWaterVapor / VolumeAirAndWater) * gasConstantWater * temperatureKelvin
//
// Resulting formula (hPa to Pa and kg to g):
// absoluteHumidity = 100 * 1000 * partialVaporPressureWater / (gasConstantWater * temperatureKelvin)
func VaporDensity(vaporPressure float64, temperatureKelvin float64) float64 {
	return 100 * 1000 * vaporPressure / (gasConstantWater * temperatureKelvin)
}

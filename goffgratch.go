// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import "math"

const (
	triplePoint = 273.16 // triple point of water in K
	celsiusZero = 273.15 // 0 °C in K

	ggA = 10.79574
	ggB = 5.028
	ggC = 1.50475e-4
	ggD = 8.2969
	ggE = 0.4287e-3
	ggF = 4.76955
	ggG = 0.78614
)

// SaturationVaporPressure calculates the saturation vapour pressure of water in hectopascal
// (hPa) for the absolute temperature in Kelvin with the Goff-Gratch equation.
// The temperature must be strictly positive.
func SaturationVaporPressure(temperatureKelvin float64) float64 {
	return math.Pow(10, goffGratchExponent(temperatureKelvin))
}

// SaturationResidual returns the saturation vapour pressure at temperatureKelvin minus
// targetPressure (both in hPa). Its root is the temperature at which air with the
// target vapour pressure becomes saturated.
func SaturationResidual(temperatureKelvin float64, targetPressure float64) float64 {
	return SaturationVaporPressure(temperatureKelvin) - targetPressure
}

// SaturationVaporPressureDerivative returns dP/dT of SaturationVaporPressure in hPa / K.
//
// With P = 10^L(T) the derivative is P * ln(10) * L'(T), where L' is
// differentiated term by term:
//
//	L'(T) = a*T0/T² - b/(T*ln 10) + c*d*ln 10*10^(-d*(T/T0-1))/T0 + e*f*ln 10*10^(f*(1-T0/T))*T0/T²
func SaturationVaporPressureDerivative(temperatureKelvin float64) float64 {
	t := temperatureKelvin
	t0 := triplePoint
	dl := ggA*t0/(t*t) -
		ggB/(t*math.Ln10) +
		ggC*ggD*math.Ln10*math.Pow(10, -ggD*(t/t0-1))/t0 +
		ggE*ggF*math.Ln10*math.Pow(10, ggF*(1-t0/t))*t0/(t*t)
	return SaturationVaporPressure(t) * math.Ln10 * dl
}

// goffGratchExponent is log10 of the saturation vapour pressure in hPa.
func goffGratchExponent(t float64) float64 {
	t0 := triplePoint
	return ggA*(1-t0/t) -
		ggB*math.Log10(t/t0) +
		ggC*(1-math.Pow(10, -ggD*(t/t0-1))) +
		ggE*(math.Pow(10, ggF*(1-t0/t))-1) +
		ggG
}

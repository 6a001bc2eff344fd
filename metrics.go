// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeConverged            = "converged"
	outcomeExact                = "exact"
	outcomeDegenerateDerivative = "degenerate_derivative"
	outcomeNonConvergence       = "non_convergence"
	outcomeInvalidInput         = "invalid_input"
)

// SolverMetrics counts Newton runs by outcome. A nil *SolverMetrics records nothing.
type SolverMetrics struct {
	Runs       *prometheus.CounterVec
	Iterations prometheus.Histogram
}

func NewSolverMetrics(reg prometheus.Registerer) *SolverMetrics {
	m := &SolverMetrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dewpoint_solver_runs_total",
				Help: "Number of dew point solver runs by outcome.",
			},
			[]string{"outcome"},
		),
		Iterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dewpoint_solver_iterations",
				Help:    "Number of Newton iterations needed by converged solver runs.",
				Buckets: prometheus.LinearBuckets(0, 2, 10),
			},
		),
	}
	reg.MustRegister(m.Runs, m.Iterations)
	return m
}

func (m *SolverMetrics) observeSolution(solution Solution) {
	if m == nil {
		return
	}
	if solution.Exact {
		m.Runs.WithLabelValues(outcomeExact).Inc()
	} else {
		m.Runs.WithLabelValues(outcomeConverged).Inc()
	}
	m.Iterations.Observe(float64(solution.Iterations))
}

func (m *SolverMetrics) observeFailure(err error) {
	if m == nil {
		return
	}
	switch {
	case errors.Is(err, ErrDegenerateDerivative):
		m.Runs.WithLabelValues(outcomeDegenerateDerivative).Inc()
	case errors.Is(err, ErrNonConvergence):
		m.Runs.WithLabelValues(outcomeNonConvergence).Inc()
	default:
		m.Runs.WithLabelValues(outcomeInvalidInput).Inc()
	}
}

func (m *SolverMetrics) observeInvalid() {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcomeInvalidInput).Inc()
}

// humidityCollector exports the result of the last calculation.
type humidityCollector struct {
	Result                *HumidityResult
	Up                    *prometheus.Desc
	DewPointC             *prometheus.Desc
	AbsoluteHumidity      *prometheus.Desc
	VaporDensity          *prometheus.Desc
	SaturationPressureHPa *prometheus.Desc
	VaporPressureHPa      *prometheus.Desc
}

func newHumidityCollector(labels prometheus.Labels) *humidityCollector {
	return &humidityCollector{
		Up: prometheus.NewDesc(
			"dewpoint_up",
			"Value is 1 if the dew point calculation was successful, 0 otherwise.",
			nil,
			labels,
		),
		DewPointC: prometheus.NewDesc(
			"dewpoint_temperature_celsius",
			"Dew point temperature in Celsius",
			nil,
			labels,
		),
		AbsoluteHumidity: prometheus.NewDesc(
			"dewpoint_absolute_humidity_ratio",
			"Absolute humidity in kg water vapour / kg dry air",
			nil,
			labels,
		),
		VaporDensity: prometheus.NewDesc(
			"dewpoint_vapor_density_grams_per_cubic_meter",
			"Absolute humidity in gram / cubic meter",
			nil,
			labels,
		),
		SaturationPressureHPa: prometheus.NewDesc(
			"dewpoint_saturation_vapor_pressure_hpa",
			"Saturation vapour pressure at the dry-bulb temperature in hectopascal",
			nil,
			labels,
		),
		VaporPressureHPa: prometheus.NewDesc(
			"dewpoint_vapor_pressure_hpa",
			"Actual vapour pressure in hectopascal",
			nil,
			labels,
		),
	}
}

func (collector *humidityCollector) Collect(ch chan<- prometheus.Metric) {
	if collector.Result == nil {
		ch <- prometheus.MustNewConstMetric(collector.Up, prometheus.GaugeValue, 0.0)
		return
	}
	r := collector.Result
	ch <- prometheus.MustNewConstMetric(collector.Up, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(
		collector.DewPointC, prometheus.GaugeValue, round64(r.DewPoint, 2))
	ch <- prometheus.MustNewConstMetric(
		collector.AbsoluteHumidity, prometheus.GaugeValue, round64(r.AbsoluteHumidity, 6))
	ch <- prometheus.MustNewConstMetric(
		collector.VaporDensity, prometheus.GaugeValue, round64(r.VaporDensity, 2))
	ch <- prometheus.MustNewConstMetric(
		collector.SaturationPressureHPa, prometheus.GaugeValue, round64(r.SaturationPressure, 3))
	ch <- prometheus.MustNewConstMetric(
		collector.VaporPressureHPa, prometheus.GaugeValue, round64(r.VaporPressure, 3))
}

func (collector *humidityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.Up
	ch <- collector.DewPointC
	ch <- collector.AbsoluteHumidity
	ch <- collector.VaporDensity
	ch <- collector.SaturationPressureHPa
	ch <- collector.VaporPressureHPa
}

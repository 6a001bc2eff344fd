// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	logger "github.com/d2r2/go-logger"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func round64(value float64, precision int) float64 {
	return math.Round(value*math.Pow10(precision)) / math.Pow10(precision)
}

// packageLogLevel maps a logrus level onto the level of the d2r2 package loggers.
func packageLogLevel(level logrus.Level) logger.LogLevel {
	switch level {
	case logrus.PanicLevel:
		return logger.PanicLevel
	case logrus.FatalLevel:
		return logger.FatalLevel
	case logrus.ErrorLevel:
		return logger.ErrorLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	default:
		return logger.DebugLevel
	}
}

func setLogLevel(level logrus.Level) {
	logrus.SetLevel(level)
	for _, pkg := range []string{"newton", "bsbmp", "i2c", "sht3x"} {
		logger.ChangePackageLogLevel(pkg, packageLogLevel(level))
	}
}

func newSource(args []string, stdin io.Reader, stdout io.Writer) (Sensor, error) {
	switch len(args) {
	case 0:
		return NewConsolePrompt(stdin, stdout), nil
	case 1:
		flags, err := parseSensorFlags(args[0])
		if err != nil {
			return nil, fmt.Errorf("sensor '%s': %w", args[0], err)
		}
		return flags.NewSensor()
	default:
		return nil, fmt.Errorf("%w: expected at most one sensor, got %d", ErrInvalidInput, len(args))
	}
}

func calculateReadings(solver *Solver, readings Readings) (HumidityResult, error) {
	if readings.temperature == nil {
		return HumidityResult{}, fmt.Errorf("%w: no temperature reading", ErrInvalidInput)
	}
	if readings.humidity == nil {
		return HumidityResult{}, fmt.Errorf("%w: no relative humidity reading", ErrInvalidInput)
	}
	return CalculateHumidity(solver, *readings.temperature, *readings.humidity)
}

func printIteration(out io.Writer) func(Iteration) {
	return func(it Iteration) {
		fmt.Fprintf(out, "iteration %d:\tx = %v,\tf(x) = %v,\tdf(x) = %v\n",
			it.Index, it.Estimate, it.Residual, it.Derivative)
	}
}

func printResult(out io.Writer, result HumidityResult, trace bool) {
	if trace {
		fmt.Fprintf(out, "solution:\tx = %v,\tf(x) = %v\n",
			result.Solution.Temperature, result.Solution.Residual)
	}
	fmt.Fprintf(out, "absolute humidity:\t%v\tkg/kg dry air\n", round64(result.AbsoluteHumidity, 4))
	fmt.Fprintf(out, "dew point:\t%v\t°C\n", round64(result.DewPoint, 1))
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	defaults := DefaultSolverConfig()
	flags := pflag.NewFlagSet("dewpoint", pflag.ContinueOnError)
	maxIterations := flags.Int(
		"max-iterations", defaults.MaxIterations, "Maximum number of Newton iterations.",
	)
	tolerance := flags.Float64(
		"tolerance", defaults.Tolerance, "Tolerance of the convergence test.",
	)
	convergenceName := flags.String(
		"convergence", defaults.Convergence.String(),
		"Convergence test: residual-change, residual, or step.",
	)
	trace := flags.Bool("trace", true, "Print every Newton iteration.")
	logLevel := flags.String("log.level", "info", "Log level (debug, info, warn, error).")
	textfile := flags.String(
		"metrics.textfile", "", "Write the results in Prometheus text format to this file.",
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	setLogLevel(level)

	convergence, err := ParseConvergence(*convergenceName)
	if err != nil {
		return err
	}
	solver, err := NewSolver(SolverConfig{
		MaxIterations: *maxIterations,
		Tolerance:     *tolerance,
		Convergence:   convergence,
	})
	if err != nil {
		return err
	}
	if *trace {
		solver.OnIteration = printIteration(stdout)
	}

	sensor, err := newSource(flags.Args(), stdin, stdout)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	solver.Metrics = NewSolverMetrics(registry)
	collector := newHumidityCollector(sensor.Labels())
	registry.MustRegister(collector, versioncollector.NewCollector("dewpoint"))

	readings, err := sensor.Poll()
	if err != nil {
		return err
	}
	if *trace {
		fmt.Fprintln(stdout, "________________")
	}
	logrus.Debugf("solving with %+v", solver.Config())

	result, calcErr := calculateReadings(solver, readings)
	if calcErr == nil {
		collector.Result = &result
		printResult(stdout, result, *trace)
	}

	if *textfile != "" {
		if err := prometheus.WriteToTextfile(*textfile, registry); err != nil {
			return errors.Join(calcErr, err)
		}
		logrus.Infof("Wrote metrics to %s", *textfile)
	}
	return calcErr
}

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		logrus.Fatal(err)
	}
}

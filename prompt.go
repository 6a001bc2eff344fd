// Copyright (C) 2021-2025, Benjamin Drung <bdrung@posteo.de>
// SPDX-License-Identifier: ISC

package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// ConsolePrompt asks the user for the dry-bulb temperature and the relative humidity.
type ConsolePrompt struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsolePrompt(in io.Reader, out io.Writer) *ConsolePrompt {
	return &ConsolePrompt{in: bufio.NewReader(in), out: out}
}

func (p *ConsolePrompt) Labels() prometheus.Labels {
	return prometheus.Labels{"source": "console"}
}

func (p *ConsolePrompt) Poll() (Readings, error) {
	var readings Readings

	temp, err := p.ask("Enter dry-bulb temperature in °C: ")
	if err != nil {
		return readings, fmt.Errorf("dry-bulb temperature: %w", err)
	}
	readings.temperature = &temp

	rh, err := p.ask("Enter relative humidity in %: ")
	if err != nil {
		return readings, fmt.Errorf("relative humidity: %w", err)
	}
	readings.humidity = &rh
	return readings, nil
}

func (p *ConsolePrompt) ask(prompt string) (float64, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, fmt.Errorf("%w: no value entered: %s", ErrInvalidInput, err)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	return value, nil
}

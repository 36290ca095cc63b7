// elGSEA: a unified interface for Gene Set Enrichment Analysis tools.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elgsea/blob/master/LICENSE.txt>.

/*
Package gsea adapts three independently developed Gene Set Enrichment
Analysis implementations behind one interface: the Broad GSEA desktop
application (a Java archive), the GSEApy package's command-line tool,
and the cudaGSEA binary. The adapters prepare the input files each
tool expects, assemble its command line, run it, and parse its output
directory into a common result shape. The enrichment statistics
themselves are entirely the work of the external tools.
*/
package gsea

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/exascience/elgsea/expression"
	"github.com/exascience/elgsea/gmt"
)

// A Result holds the enrichment scores one external tool reports for
// one gene set.
type Result struct {
	Name        string
	Size        int
	ES          float64
	NES         float64
	NominalP    float64
	FDR         float64
	FWERP       float64
	LeadingEdge string
}

// Options selects the contrast and the analysis parameters of a run.
// The zero value of an analysis parameter means the default; see
// normalize.
type Options struct {
	// Case and Control name the two groups of the contrast. Both
	// labels must exist in the design vector of the expression set.
	Case    string
	Control string
	// Metric is the gene ranking metric, in the naming of the
	// selected tool. Empty means the tool's default.
	Metric          string
	Permutations    int
	PermutationType string
	MinSize         int
	MaxSize         int
	Threads         int
	// OutDir receives the tool's raw output directory. Empty means a
	// temporary directory that is removed after parsing.
	OutDir  string
	Verbose bool
	Plot    bool
}

// DefaultOptions returns the default analysis parameters for the
// given contrast.
func DefaultOptions(caseLabel, controlLabel string) *Options {
	return &Options{
		Case:            caseLabel,
		Control:         controlLabel,
		Permutations:    1000,
		PermutationType: "phenotype",
		MinSize:         15,
		MaxSize:         500,
		Threads:         runtime.GOMAXPROCS(0),
	}
}

// normalize fills in the defaults for unset analysis parameters,
// leaving the original untouched.
func (opts *Options) normalize() (*Options, error) {
	if opts.Case == "" || opts.Control == "" {
		return nil, fmt.Errorf("a contrast requires both a case and a control label")
	}
	normalized := *opts
	if normalized.Permutations <= 0 {
		normalized.Permutations = 1000
	}
	if normalized.PermutationType == "" {
		normalized.PermutationType = "phenotype"
	}
	if normalized.MinSize <= 0 {
		normalized.MinSize = 15
	}
	if normalized.MaxSize <= 0 {
		normalized.MaxSize = 500
	}
	if normalized.Threads <= 0 {
		normalized.Threads = runtime.GOMAXPROCS(0)
	}
	return &normalized, nil
}

// A Runner runs one external GSEA implementation. Implementations
// can be swapped without rewriting data preparation.
type Runner interface {
	// Name identifies the tool in logs and error messages.
	Name() string
	// MetricsUsingVariance lists the ranking metrics that need at
	// least MinSamplesForVariance samples per group.
	MetricsUsingVariance() map[string]bool
	// Run executes the tool for the contrast selected in opts and
	// returns its report. It returns ErrNoResults if the tool
	// produced an empty report.
	Run(data *expression.Set, sets *gmt.GeneSets, opts *Options) ([]*Result, error)
}

// ErrNoResults is returned when an external tool ran but produced no
// report rows.
var ErrNoResults = errors.New("the analysis produced no results")

// MinSamplesForVariance is the smallest per-group sample count for
// which variance-based ranking metrics are defined.
const MinSamplesForVariance = 3

// A NotEnoughSamplesError reports a group too small for a
// variance-based ranking metric.
type NotEnoughSamplesError struct {
	Metric  string
	Group   string
	Samples int
}

func (err *NotEnoughSamplesError) Error() string {
	return fmt.Sprintf("too few samples (%v) in group %v for the metric %v; variance-based metrics need at least %v samples per group", err.Samples, err.Group, err.Metric, MinSamplesForVariance)
}

// checkSamples validates the per-group sample counts of a contrasted
// expression set against the requirements of the selected metric.
func checkSamples(runner Runner, contrast *expression.Set, metric string) error {
	if !runner.MetricsUsingVariance()[metric] {
		return nil
	}
	for group, samples := range contrast.GroupSizes() {
		if samples < MinSamplesForVariance {
			return &NotEnoughSamplesError{Metric: metric, Group: group, Samples: samples}
		}
	}
	return nil
}

// safeLabel replaces the spaces of a class label, matching the form
// written to CLS files.
func safeLabel(label string) string {
	return strings.ReplaceAll(label, " ", "_")
}

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

package gsea

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/exascience/elgsea/expression"
	"github.com/exascience/elgsea/gmt"
)

// GSEApy runs the gsea subcommand of the GSEApy command-line tool.
type GSEApy struct {
	// Path is the resolved gseapy executable.
	Path string
}

// NewGSEApy locates the gseapy executable on the search path. An
// empty path defaults to "gseapy".
func NewGSEApy(path string) (*GSEApy, error) {
	if path == "" {
		path = "gseapy"
	}
	full, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("could not find the gseapy executable: %v; install it with pip3 install gseapy", err)
	}
	return &GSEApy{Path: full}, nil
}

// Name implements the Runner interface.
func (*GSEApy) Name() string { return "gseapy" }

const gseapyDefaultMetric = "signal_to_noise"

// MetricsUsingVariance implements the Runner interface.
func (*GSEApy) MetricsUsingVariance() map[string]bool {
	return map[string]bool{
		"signal_to_noise": true,
		"t_test":          true,
	}
}

// Run implements the Runner interface.
func (gseapy *GSEApy) Run(data *expression.Set, sets *gmt.GeneSets, opts *Options) (results []*Result, err error) {
	opts, err = opts.normalize()
	if err != nil {
		return nil, err
	}
	contrast, err := data.Contrast(opts.Case, opts.Control)
	if err != nil {
		return nil, err
	}
	metric := opts.Metric
	if metric == "" {
		metric = gseapyDefaultMetric
	}
	if err := checkSamples(gseapy, contrast, metric); err != nil {
		return nil, err
	}

	scratch, err := newScratch(contrast, sets)
	if err != nil {
		return nil, err
	}
	defer scratch.cleanup()

	outDir, temporary, err := prepareOutDir(opts.OutDir)
	if err != nil {
		return nil, err
	}
	if temporary {
		defer func() { _ = os.RemoveAll(outDir) }()
	}

	args := []string{
		"gsea",
		"--data", scratch.gct,
		"--cls", scratch.cls,
		"--gmt", scratch.gmt,
		"--method", metric,
		"--permu-type", opts.PermutationType,
		"--permu-num", strconv.Itoa(opts.Permutations),
		"--min-size", strconv.Itoa(opts.MinSize),
		"--max-size", strconv.Itoa(opts.MaxSize),
		"--threads", strconv.Itoa(opts.Threads),
		"--outdir", outDir,
	}
	if opts.Verbose {
		args = append(args, "--verbose")
	}
	if !opts.Plot {
		args = append(args, "--no-plot")
	}
	if err := runCommand(exec.Command(gseapy.Path, args...), opts.Verbose); err != nil {
		return nil, err
	}

	report := filepath.Join(outDir, fmt.Sprintf("gseapy.gsea.%v.report.csv", opts.PermutationType))
	if results, err = parseGSEApyReport(report); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

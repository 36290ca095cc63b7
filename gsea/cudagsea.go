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

// CudaGSEA runs the cudaGSEA binary, a GPU-accelerated implementation
// of phenotype-permutation GSEA.
type CudaGSEA struct {
	// Path is the resolved cudaGSEA executable.
	Path string
	// UseCPU selects the binary's CPU code path instead of the GPU.
	UseCPU bool
}

// NewCudaGSEA locates the cudaGSEA executable on the search path. An
// empty path defaults to "cudaGSEA".
func NewCudaGSEA(path string) (*CudaGSEA, error) {
	if path == "" {
		path = "cudaGSEA"
	}
	full, err := exec.LookPath(path)
	if err != nil {
		return nil, fmt.Errorf("could not find the cudaGSEA executable: %v", err)
	}
	return &CudaGSEA{Path: full}, nil
}

// Name implements the Runner interface.
func (*CudaGSEA) Name() string { return "cudagsea" }

const cudaDefaultMetric = "onepass_signal2noise"

// MetricsUsingVariance implements the Runner interface. cudaGSEA
// names its metrics by accumulation strategy; every signal-to-noise
// and t-test variant divides by a per-group standard deviation.
func (*CudaGSEA) MetricsUsingVariance() map[string]bool {
	return map[string]bool{
		"onepass_signal2noise":  true,
		"onepass_t_test":        true,
		"twopass_signal2noise":  true,
		"twopass_t_test":        true,
		"stable_signal2noise":   true,
		"stable_t_test":         true,
		"overkill_signal2noise": true,
		"overkill_t_test":       true,
	}
}

// Run implements the Runner interface. cudaGSEA permutes phenotype
// labels only, so any other permutation type is rejected.
func (cuda *CudaGSEA) Run(data *expression.Set, sets *gmt.GeneSets, opts *Options) (results []*Result, err error) {
	opts, err = opts.normalize()
	if err != nil {
		return nil, err
	}
	if opts.PermutationType != "phenotype" {
		return nil, fmt.Errorf("cudaGSEA only supports phenotype permutation, not %v", opts.PermutationType)
	}
	contrast, err := data.Contrast(opts.Case, opts.Control)
	if err != nil {
		return nil, err
	}
	metric := opts.Metric
	if metric == "" {
		metric = cudaDefaultMetric
	}
	if err := checkSamples(cuda, contrast, metric); err != nil {
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

	dump := filepath.Join(outDir, "cudaGSEA.result.tsv")
	args := []string{
		"-res", scratch.gct,
		"-cls", scratch.cls,
		"-gmx", scratch.gmt,
		"-metric", metric,
		"-nperm", strconv.Itoa(opts.Permutations),
		"-set_min", strconv.Itoa(opts.MinSize),
		"-set_max", strconv.Itoa(opts.MaxSize),
		"-dump", dump,
	}
	if cuda.UseCPU {
		args = append(args, "-cpu")
	}
	if err := runCommand(exec.Command(cuda.Path, args...), opts.Verbose); err != nil {
		return nil, err
	}

	if results, err = parseCudaReport(dump); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

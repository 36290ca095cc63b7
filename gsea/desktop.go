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
	"regexp"
	"strconv"
	"strings"

	"github.com/exascience/elgsea/expression"
	"github.com/exascience/elgsea/gmt"
	"github.com/exascience/elgsea/internal"
)

// Desktop runs the Broad GSEA desktop application, a Java archive,
// through its xtools.gsea.Gsea command-line entry point.
type Desktop struct {
	// Home is the directory holding the gsea-<version>.jar archive.
	Home string
	// Java is the java executable that runs the archive.
	Java string
	// MemoryMB is the Java heap limit in megabytes.
	MemoryMB int

	jar string
}

// DefaultMemoryMB is the default Java heap limit. The desktop
// application loads full permutation tables into memory, so the
// default is deliberately generous.
const DefaultMemoryMB = 5000

// NewDesktop locates a desktop installation. An empty home defaults
// to gsea_home in the user's home directory. When the directory holds
// more than one archive, the newest version wins.
func NewDesktop(home string) (*Desktop, error) {
	if home == "" {
		home = filepath.Join(os.Getenv("HOME"), "gsea_home")
	}
	jars, err := filepath.Glob(filepath.Join(home, "gsea-*.jar"))
	if err != nil || len(jars) == 0 {
		return nil, fmt.Errorf("could not find a GSEA desktop installation in %v", home)
	}
	java, err := exec.LookPath("java")
	if err != nil {
		return nil, fmt.Errorf("could not find a java executable: %v", err)
	}
	return &Desktop{
		Home:     home,
		Java:     java,
		MemoryMB: DefaultMemoryMB,
		jar:      newestJar(jars),
	}, nil
}

var jarVersionPattern = regexp.MustCompile(`gsea-([0-9.]+)\.jar$`)

// jarVersion parses the numeric version components of an archive name.
func jarVersion(jar string) []int {
	m := jarVersionPattern.FindStringSubmatch(jar)
	if m == nil {
		return nil
	}
	fields := strings.Split(m[1], ".")
	version := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			break
		}
		version = append(version, n)
	}
	return version
}

// versionLess compares version component slices, with missing
// components counting as zero.
func versionLess(version1, version2 []int) bool {
	for i := 0; i < len(version1) || i < len(version2); i++ {
		var v1, v2 int
		if i < len(version1) {
			v1 = version1[i]
		}
		if i < len(version2) {
			v2 = version2[i]
		}
		if v1 != v2 {
			return v1 < v2
		}
	}
	return false
}

// newestJar picks the archive with the highest version. Versions
// compare by numeric components, not by file name, so gsea-10.0.jar
// beats gsea-4.1.0.jar.
func newestJar(jars []string) string {
	best := jars[0]
	bestVersion := jarVersion(best)
	for _, jar := range jars[1:] {
		if version := jarVersion(jar); versionLess(bestVersion, version) {
			best = jar
			bestVersion = version
		}
	}
	return best
}

// Name implements the Runner interface.
func (*Desktop) Name() string { return "gsea-desktop" }

const desktopDefaultMetric = "Signal2Noise"

// MetricsUsingVariance implements the Runner interface.
func (*Desktop) MetricsUsingVariance() map[string]bool {
	return map[string]bool{
		"Signal2Noise": true,
		"tTest":        true,
	}
}

// Run implements the Runner interface.
func (desktop *Desktop) Run(data *expression.Set, sets *gmt.GeneSets, opts *Options) (results []*Result, err error) {
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
		metric = desktopDefaultMetric
	}
	if err := checkSamples(desktop, contrast, metric); err != nil {
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

	label := fmt.Sprintf("%v_versus_%v", safeLabel(opts.Case), safeLabel(opts.Control))
	plotTopX := "0"
	if opts.Plot {
		plotTopX = "20"
	}
	args := []string{
		fmt.Sprintf("-Xmx%vm", desktop.MemoryMB),
		"-cp", desktop.jar,
		"xtools.gsea.Gsea",
		"-res", scratch.gct,
		"-cls", fmt.Sprintf("%v#%v", scratch.cls, label),
		"-gmx", scratch.gmt,
		"-metric", metric,
		"-permute", opts.PermutationType,
		"-nperm", strconv.Itoa(opts.Permutations),
		"-set_min", strconv.Itoa(opts.MinSize),
		"-set_max", strconv.Itoa(opts.MaxSize),
		"-collapse", "false",
		"-norm", "meandiv",
		"-scoring_scheme", "weighted",
		"-rpt_label", label,
		"-plot_top_x", plotTopX,
		"-make_sets", "true",
		"-zip_report", "false",
		"-gui", "false",
		"-out", outDir,
	}
	if err := runCommand(exec.Command(desktop.Java, args...), opts.Verbose); err != nil {
		return nil, err
	}

	reportDir, err := findReportDir(outDir, label)
	if err != nil {
		return nil, err
	}
	if results, err = parseDesktopReports(reportDir); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// findReportDir locates the <label>.Gsea.<timestamp> directory the
// desktop application created inside the output directory, taking the
// latest timestamp when earlier runs left theirs behind.
func findReportDir(outDir, label string) (string, error) {
	names, err := internal.Directory(outDir)
	if err != nil {
		return "", err
	}
	prefix := label + ".Gsea."
	latest := ""
	for _, name := range names {
		if strings.HasPrefix(name, prefix) && name > latest {
			latest = name
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no GSEA report directory matching %v* in %v", prefix, outDir)
	}
	return filepath.Join(outDir, latest), nil
}

// parseDesktopReports reads the two per-phenotype report files of one
// run (positively and negatively enriched sets) into one list.
func parseDesktopReports(reportDir string) ([]*Result, error) {
	names, err := internal.Directory(reportDir)
	if err != nil {
		return nil, err
	}
	var results []*Result
	for _, name := range names {
		if !strings.HasPrefix(name, "gsea_report_for_") {
			continue
		}
		switch filepath.Ext(name) {
		case ".tsv", ".xls":
		default:
			continue
		}
		rows, err := parseDesktopReport(filepath.Join(reportDir, name))
		if err != nil {
			return nil, err
		}
		results = append(results, rows...)
	}
	return results, nil
}

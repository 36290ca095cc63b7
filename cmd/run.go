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

package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/exascience/elgsea/expression"
	"github.com/exascience/elgsea/gmt"
	"github.com/exascience/elgsea/gsea"
)

// RunHelp is the help string for the run command.
const RunHelp = "\nrun parameters:\n" +
	"elgsea run expression-file gmt-file output-file\n" +
	"--classes label1,label2,...\n" +
	"--case label\n" +
	"--control label\n" +
	"[--tool (desktop | gseapy | cudagsea)]\n" +
	"[--metric name]\n" +
	"[--permutations nr]\n" +
	"[--permutation-type (phenotype | gene_set)]\n" +
	"[--min-size nr]\n" +
	"[--max-size nr]\n" +
	"[--min-representation fraction]\n" +
	"[--threads nr]\n" +
	"[--out-dir path]\n" +
	"[--gsea-home path]\n" +
	"[--gseapy path]\n" +
	"[--cudagsea path]\n" +
	"[--plot]\n" +
	"[--verbose]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// Run implements the elgsea run command: it loads an expression
// matrix and a gene set collection, restricts the collection to the
// measured genes, hands both to the selected external GSEA tool, and
// writes the parsed results as a tab-separated table.
func Run() error {
	var (
		classes, caseLabel, controlLabel       string
		tool, metric, permutationType          string
		permutations, minSize, maxSize         int
		minRepresentation                      float64
		threads                                int
		outDir, gseaHome, gseapyPath, cudaPath string
		plot, verbose, timed                   bool
		logPath                                string
	)
	var flags flag.FlagSet
	flags.StringVar(&classes, "classes", "", "comma-separated class label per sample column")
	flags.StringVar(&caseLabel, "case", "", "class label of the case group")
	flags.StringVar(&controlLabel, "control", "", "class label of the control group")
	flags.StringVar(&tool, "tool", "desktop", "external GSEA implementation to run")
	flags.StringVar(&metric, "metric", "", "gene ranking metric, in the naming of the selected tool")
	flags.IntVar(&permutations, "permutations", 1000, "number of permutations")
	flags.StringVar(&permutationType, "permutation-type", "phenotype", "permute phenotype labels or gene sets")
	flags.IntVar(&minSize, "min-size", 15, "minimum gene set size")
	flags.IntVar(&maxSize, "max-size", 500, "maximum gene set size")
	flags.Float64Var(&minRepresentation, "min-representation", 0, "minimum fraction of a gene set that must be measured")
	flags.IntVar(&threads, "threads", 0, "number of worker threads for tools that take one")
	flags.StringVar(&outDir, "out-dir", "", "keep the tool's raw output in this directory")
	flags.StringVar(&gseaHome, "gsea-home", "", "directory holding the GSEA desktop jar")
	flags.StringVar(&gseapyPath, "gseapy", "", "gseapy executable")
	flags.StringVar(&cudaPath, "cudagsea", "", "cudaGSEA executable")
	flags.BoolVar(&plot, "plot", false, "let the tool render enrichment plots")
	flags.BoolVar(&verbose, "verbose", false, "forward the tool's standard output")
	flags.BoolVar(&timed, "timed", false, "measure the analysis time")
	flags.StringVar(&logPath, "log-path", "", "write log files to this directory")

	parseFlags(flags, 5, RunHelp)

	dataFile := getFilename(os.Args[2], RunHelp)
	gmtFile := getFilename(os.Args[3], RunHelp)
	outputFile := getFilename(os.Args[4], RunHelp)

	setLogOutput(logPath)

	sanityChecksFailed := !checkExist("", dataFile)
	sanityChecksFailed = !checkExist("", gmtFile) || sanityChecksFailed
	sanityChecksFailed = !checkCreate("", outputFile) || sanityChecksFailed
	if classes == "" {
		log.Println("Error: Missing --classes parameter.")
		sanityChecksFailed = true
	}
	if caseLabel == "" || controlLabel == "" {
		log.Println("Error: A contrast requires both --case and --control.")
		sanityChecksFailed = true
	}
	if permutations <= 0 {
		log.Println("Error: Invalid number of permutations.")
		sanityChecksFailed = true
	}
	if minRepresentation < 0 || minRepresentation > 1 {
		log.Println("Error: --min-representation must be a fraction between 0 and 1.")
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, RunHelp)
		os.Exit(1)
	}

	data, err := parseExpression(dataFile)
	if err != nil {
		return err
	}
	if err := data.SetClasses(strings.Split(classes, ",")); err != nil {
		return err
	}

	sets, err := gmt.ParseGmt(gmtFile)
	if err != nil {
		return err
	}
	measured := make([]string, len(data.Genes))
	for i, gene := range data.Genes {
		measured[i] = *gene
	}
	subset := sets.Subset(measured, minRepresentation)
	log.Printf("%v of %v gene sets overlap the measured genes.\n", subset.Len(), sets.Len())
	if subset.Len() == 0 {
		log.Println("No gene sets overlap the measured genes; writing an empty result.")
		return writeResults(outputFile, nil)
	}

	var runner gsea.Runner
	switch tool {
	case "desktop":
		runner, err = gsea.NewDesktop(gseaHome)
	case "gseapy":
		runner, err = gsea.NewGSEApy(gseapyPath)
	case "cudagsea":
		runner, err = gsea.NewCudaGSEA(cudaPath)
	default:
		err = fmt.Errorf("unknown GSEA tool %v; pick desktop, gseapy, or cudagsea", tool)
	}
	if err != nil {
		return err
	}

	opts := gsea.DefaultOptions(caseLabel, controlLabel)
	opts.Metric = metric
	opts.Permutations = permutations
	opts.PermutationType = permutationType
	opts.MinSize = minSize
	opts.MaxSize = maxSize
	opts.OutDir = outDir
	opts.Plot = plot
	opts.Verbose = verbose
	if threads > 0 {
		opts.Threads = threads
	}

	var results []*gsea.Result
	err = timedRun(timed, "", fmt.Sprintf("Running %v.", runner.Name()), 1, func() (err error) {
		results, err = runner.Run(data, subset, opts)
		return err
	})
	if err != nil {
		return err
	}
	log.Printf("%v reported enrichment scores for %v gene sets.\n", runner.Name(), len(results))
	return writeResults(outputFile, results)
}

// parseExpression dispatches on the file extension: .gct files are
// parsed as GCT v1.2, anything else as a plain tab-separated table.
func parseExpression(filename string) (*expression.Set, error) {
	if strings.ToLower(filepath.Ext(filename)) == ".gct" {
		return expression.ParseGct(filename)
	}
	return expression.ParseTsv(filename)
}

// writeResults writes enrichment results as a tab-separated table
// with the column names of the desktop application's reports.
func writeResults(filename string, results []*gsea.Result) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()
	out := bufio.NewWriter(file)
	if _, err := out.WriteString("NAME\tSIZE\tES\tNES\tNOM p-val\tFDR q-val\tFWER p-val\tLEADING EDGE\n"); err != nil {
		return err
	}
	var buf []byte
	for _, result := range results {
		buf = append(buf[:0], result.Name...)
		buf = append(buf, '\t')
		buf = strconv.AppendInt(buf, int64(result.Size), 10)
		for _, value := range []float64{result.ES, result.NES, result.NominalP, result.FDR, result.FWERP} {
			buf = append(buf, '\t')
			buf = strconv.AppendFloat(buf, value, 'g', -1, 64)
		}
		buf = append(buf, '\t')
		buf = append(buf, result.LeadingEdge...)
		buf = append(buf, '\n')
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}
	return out.Flush()
}

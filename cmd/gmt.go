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
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/exascience/elgsea/gmt"
)

// GmtTrimHelp is the help string for the gmt-trim command.
const GmtTrimHelp = "\ngmt-trim parameters:\n" +
	"elgsea gmt-trim gmt-file gmt-output-file\n" +
	"[--min-size nr]\n" +
	"[--max-size nr]\n" +
	"[--log-path path]\n"

// GmtTrim implements the elgsea gmt-trim command: it keeps exactly
// the gene sets whose size lies in [min-size, max-size].
func GmtTrim() error {
	var (
		minSize, maxSize int
		logPath          string
	)
	var flags flag.FlagSet
	flags.IntVar(&minSize, "min-size", 0, "minimum gene set size")
	flags.IntVar(&maxSize, "max-size", -1, "maximum gene set size (negative means unbounded)")
	flags.StringVar(&logPath, "log-path", "", "write log files to this directory")

	parseFlags(flags, 4, GmtTrimHelp)

	input := getFilename(os.Args[2], GmtTrimHelp)
	output := getFilename(os.Args[3], GmtTrimHelp)

	setLogOutput(logPath)

	sanityChecksFailed := !checkExist("", input)
	sanityChecksFailed = !checkCreate("", output) || sanityChecksFailed
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, GmtTrimHelp)
		os.Exit(1)
	}

	sets, err := gmt.ParseGmt(input)
	if err != nil {
		return err
	}
	trimmed := sets.Trim(minSize, maxSize)
	log.Printf("Kept %v of %v gene sets.\n", trimmed.Len(), sets.Len())
	return trimmed.ToGmt(output)
}

// GmtSubsetHelp is the help string for the gmt-subset command.
const GmtSubsetHelp = "\ngmt-subset parameters:\n" +
	"elgsea gmt-subset gmt-file gmt-output-file\n" +
	"--genes gene-list-file\n" +
	"[--min-representation fraction]\n" +
	"[--log-path path]\n"

// GmtSubset implements the elgsea gmt-subset command: it intersects
// every gene set with the identifiers listed in the genes file, one
// per line, dropping sets that fall below the representation
// threshold. An empty result is written as an empty GMT file.
func GmtSubset() error {
	var (
		genesFile         string
		minRepresentation float64
		logPath           string
	)
	var flags flag.FlagSet
	flags.StringVar(&genesFile, "genes", "", "file listing one gene identifier per line")
	flags.Float64Var(&minRepresentation, "min-representation", 0, "minimum fraction of a gene set that must be retained")
	flags.StringVar(&logPath, "log-path", "", "write log files to this directory")

	parseFlags(flags, 4, GmtSubsetHelp)

	input := getFilename(os.Args[2], GmtSubsetHelp)
	output := getFilename(os.Args[3], GmtSubsetHelp)

	setLogOutput(logPath)

	sanityChecksFailed := !checkExist("", input)
	sanityChecksFailed = !checkCreate("", output) || sanityChecksFailed
	sanityChecksFailed = !checkExist("--genes", genesFile) || sanityChecksFailed
	if minRepresentation < 0 || minRepresentation > 1 {
		log.Println("Error: --min-representation must be a fraction between 0 and 1.")
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, GmtSubsetHelp)
		os.Exit(1)
	}

	genes, err := readGeneList(genesFile)
	if err != nil {
		return err
	}
	sets, err := gmt.ParseGmt(input)
	if err != nil {
		return err
	}
	subset := sets.Subset(genes, minRepresentation)
	log.Printf("Kept %v of %v gene sets.\n", subset.Len(), sets.Len())
	return subset.ToGmt(output)
}

// readGeneList reads gene identifiers, one per line, skipping blank
// lines.
func readGeneList(filename string) (genes []string, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if gene := strings.TrimSpace(scanner.Text()); gene != "" {
			genes = append(genes, gene)
		}
	}
	return genes, scanner.Err()
}

// GmtExtractHelp is the help string for the gmt-extract command.
const GmtExtractHelp = "\ngmt-extract parameters:\n" +
	"elgsea gmt-extract gmt-file gmt-output-file\n" +
	"--sets name1,name2,...\n" +
	"[--log-path path]\n"

// GmtExtract implements the elgsea gmt-extract command: it retains
// the gene sets with the given names.
func GmtExtract() error {
	var (
		setNames string
		logPath  string
	)
	var flags flag.FlagSet
	flags.StringVar(&setNames, "sets", "", "comma-separated gene set names to retain")
	flags.StringVar(&logPath, "log-path", "", "write log files to this directory")

	parseFlags(flags, 4, GmtExtractHelp)

	input := getFilename(os.Args[2], GmtExtractHelp)
	output := getFilename(os.Args[3], GmtExtractHelp)

	setLogOutput(logPath)

	sanityChecksFailed := !checkExist("", input)
	sanityChecksFailed = !checkCreate("", output) || sanityChecksFailed
	if setNames == "" {
		log.Println("Error: Missing --sets parameter.")
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, GmtExtractHelp)
		os.Exit(1)
	}

	sets, err := gmt.ParseGmt(input)
	if err != nil {
		return err
	}
	extracted := sets.Extract(strings.Split(setNames, ","))
	log.Printf("Kept %v of %v gene sets.\n", extracted.Len(), sets.Len())
	return extracted.ToGmt(output)
}

// GmtMergeHelp is the help string for the gmt-merge command.
const GmtMergeHelp = "\ngmt-merge parameters:\n" +
	"elgsea gmt-merge gmt-output-file [--sorted] gmt-file...\n" +
	"[--log-path path]\n"

// GmtMerge implements the elgsea gmt-merge command: it concatenates
// gene set collections in command-line order, optionally sorting the
// merged collection by set name.
func GmtMerge() error {
	var (
		sorted  bool
		logPath string
	)
	var flags flag.FlagSet
	flags.BoolVar(&sorted, "sorted", false, "sort the merged collection by set name")
	flags.StringVar(&logPath, "log-path", "", "write log files to this directory")

	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, GmtMergeHelp)
		os.Exit(1)
	}
	output := getFilename(os.Args[2], GmtMergeHelp)
	flags.SetOutput(ioutil.Discard)
	if err := flags.Parse(os.Args[3:]); err != nil {
		x := 0
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			x = 1
		}
		fmt.Fprint(os.Stderr, GmtMergeHelp)
		os.Exit(x)
	}
	inputs := flags.Args()

	setLogOutput(logPath)

	sanityChecksFailed := !checkCreate("", output)
	if len(inputs) == 0 {
		log.Println("Error: No input files to merge.")
		sanityChecksFailed = true
	}
	for _, input := range inputs {
		sanityChecksFailed = !checkExist("", input) || sanityChecksFailed
	}
	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, GmtMergeHelp)
		os.Exit(1)
	}

	collections := make([]*gmt.GeneSets, len(inputs))
	for i, input := range inputs {
		sets, err := gmt.ParseGmt(input)
		if err != nil {
			return err
		}
		collections[i] = sets
	}
	merged := collections[0].Merge(collections[1:]...)
	if sorted {
		merged.SortByName()
	}
	log.Printf("Merged %v collections into %v gene sets.\n", len(collections), merged.Len())
	return merged.ToGmt(output)
}

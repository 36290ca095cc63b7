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

// elGSEA is a unified command-line interface for running Gene Set
// Enrichment Analysis with the Broad GSEA desktop application,
// GSEApy, or cudaGSEA, and for manipulating the gene set collections
// they consume.
//
// Please see https://github.com/exascience/elgsea for a documentation
// of the tool, and below (and/or
// https://godoc.org/github.com/ExaScience/elgsea) for the API
// documentation.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/elgsea/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: run, gmt-trim, gmt-subset, gmt-extract, gmt-merge, msigdb-list")
	fmt.Fprint(os.Stderr, "\n", cmd.RunHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.GmtTrimHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.GmtSubsetHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.GmtExtractHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.GmtMergeHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.MsigdbListHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage, "\n")
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmd.Run()
	case "gmt-trim":
		err = cmd.GmtTrim()
	case "gmt-subset":
		err = cmd.GmtSubset()
	case "gmt-extract":
		err = cmd.GmtExtract()
	case "gmt-merge":
		err = cmd.GmtMerge()
	case "msigdb-list":
		err = cmd.MsigdbList()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command:", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

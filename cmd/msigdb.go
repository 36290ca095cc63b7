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

	"github.com/exascience/elgsea/msigdb"
)

// MsigdbListHelp is the help string for the msigdb-list command.
const MsigdbListHelp = "\nmsigdb-list parameters:\n" +
	"elgsea msigdb-list msigdb-directory\n" +
	"[--version nr]\n" +
	"[--log-path path]\n"

// DefaultMsigdbVersion is the MSigDB release the commands assume when
// none is given.
const DefaultMsigdbVersion = "7.4"

// MsigdbList implements the elgsea msigdb-list command: it prints the
// gene set libraries available in a local MSigDB directory, one
// name/identifier-type pair per line.
func MsigdbList() error {
	var (
		version string
		logPath string
	)
	var flags flag.FlagSet
	flags.StringVar(&version, "version", DefaultMsigdbVersion, "MSigDB release version")
	flags.StringVar(&logPath, "log-path", "", "write log files to this directory")

	parseFlags(flags, 3, MsigdbListHelp)

	path := getFilename(os.Args[2], MsigdbListHelp)

	setLogOutput(logPath)

	db, err := msigdb.Open(path, version)
	if err != nil {
		return err
	}
	if len(db.Entries) == 0 {
		log.Printf("No version %v gene set libraries in %v.\n", version, path)
		return nil
	}
	out := bufio.NewWriter(os.Stdout)
	for _, entry := range db.Entries {
		if _, err := fmt.Fprintf(out, "%v\t%v\n", entry.Name, entry.IDType); err != nil {
			return err
		}
	}
	return out.Flush()
}

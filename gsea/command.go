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
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/exascience/elgsea/expression"
	"github.com/exascience/elgsea/gmt"
	"github.com/exascience/elgsea/internal"
)

// A scratch holds the input files written for one external tool run.
// The file names carry a random component so that concurrent runs
// never clash.
type scratch struct {
	dir string
	gct string
	cls string
	gmt string
}

// newScratch writes the expression matrix and the design vector into
// a fresh scratch directory, and resolves the gene set collection to
// a GMT file, writing one for collections constructed in memory.
func newScratch(data *expression.Set, sets *gmt.GeneSets) (s *scratch, err error) {
	dir, err := ioutil.TempDir("", "elgsea-input-")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()
	s = &scratch{dir: dir}
	s.gct = filepath.Join(dir, fmt.Sprintf("data-%v.gct", uuid.New()))
	if err = data.ToGct(s.gct); err != nil {
		return nil, err
	}
	s.cls = filepath.Join(dir, fmt.Sprintf("classes-%v.cls", uuid.New()))
	if err = data.ToCls(s.cls); err != nil {
		return nil, err
	}
	if s.gmt, err = solveGeneSets(sets, dir); err != nil {
		return nil, err
	}
	return s, nil
}

// solveGeneSets returns the file backing a gene set collection. A
// collection parsed from a GMT file is passed to the tools by its
// original path; anything else is written to the scratch directory.
func solveGeneSets(sets *gmt.GeneSets, dir string) (string, error) {
	if sets.Path != "" {
		return internal.FullPathname(sets.Path)
	}
	filename := filepath.Join(dir, fmt.Sprintf("sets-%v.gmt", uuid.New()))
	if err := sets.ToGmt(filename); err != nil {
		return "", err
	}
	return filename, nil
}

func (s *scratch) cleanup() {
	if err := os.RemoveAll(s.dir); err != nil {
		log.Println("Warning: could not remove scratch directory: ", err)
	}
}

// prepareOutDir resolves the output directory of a run, creating a
// temporary one when none is requested. The second return value tells
// the caller to remove the directory after parsing the reports.
func prepareOutDir(outDir string) (string, bool, error) {
	if outDir == "" {
		dir, err := ioutil.TempDir("", "elgsea-out-")
		return dir, true, err
	}
	full, err := internal.FullPathname(outDir)
	if err != nil {
		return "", false, err
	}
	if err := os.MkdirAll(full, 0700); err != nil {
		return "", false, err
	}
	return full, false, nil
}

// runCommand executes an external tool, forwarding its standard
// error, and also its standard output when verbose.
func runCommand(cmd *exec.Cmd, verbose bool) error {
	log.Println("Executing command:\n", strings.Join(cmd.Args, " "))
	cmd.Stderr = os.Stderr
	if verbose {
		cmd.Stdout = os.Stdout
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v, while running %v", err, cmd.Args[0])
	}
	return nil
}

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

package gmt

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/exascience/pargo/pipeline"
)

// GMT lines list whole gene sets, so they routinely exceed the
// default bufio.Scanner token limit.
const (
	initialScanBuffer = 64 * 1024
	maxScanBuffer     = 16 * 1024 * 1024
)

// ParseGmt parses a GMT (Gene Matrix Transposed) file: one gene set
// per line, tab-separated, with the set name in the first field, a
// description in the second field, and member gene identifiers in
// the remaining fields. See
// https://software.broadinstitute.org/cancer/software/gsea/wiki/index.php/Data_formats
func ParseGmt(filename string) (sets *GeneSets, err error) {
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
	scanner.Buffer(make([]byte, initialScanBuffer), maxScanBuffer)

	var parsed []*GeneSet
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), " \t\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed gmt line %v in %v: expected at least a set name and a description", line, filename)
		}
		parsed = append(parsed, NewGeneSet(fields[0], fields[1], fields[2:]))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sets = NewGeneSets(filepath.Base(filename), parsed)
	sets.Path = filename
	return sets, nil
}

// AppendGmt appends the GMT line for the gene set to buf, including
// the trailing newline, and returns the extended buffer.
func (set *GeneSet) AppendGmt(buf []byte) []byte {
	buf = append(buf, set.Name...)
	buf = append(buf, '\t')
	buf = append(buf, set.Description...)
	for _, gene := range set.Genes {
		buf = append(buf, '\t')
		buf = append(buf, *gene...)
	}
	return append(buf, '\n')
}

// Format writes the collection to the given writer in the GMT
// format, sequentially and in collection order.
func (sets *GeneSets) Format(out *bufio.Writer) error {
	var buf []byte
	for _, set := range sets.Sets {
		buf = set.AppendGmt(buf[:0])
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// geneSetsToBytes returns a pargo pipeline.Filter that formats
// slices of GeneSet pointers into slices of bytes representing these
// sets according to the GMT file format.
func geneSetsToBytes() pipeline.Filter {
	return func(p *pipeline.Pipeline, _ pipeline.NodeKind, _ *int) (receiver pipeline.Receiver, _ pipeline.Finalizer) {
		receiver = func(_ int, data interface{}) interface{} {
			sets := data.([]*GeneSet)
			records := make([][]byte, 0, len(sets))
			var buf []byte
			for _, set := range sets {
				buf = set.AppendGmt(buf[:0])
				records = append(records, append([]byte(nil), buf...))
			}
			return records
		}
		return
	}
}

// ToGmt writes the collection to a GMT file. Gene sets are formatted
// in parallel and written in collection order, so ParseGmt composed
// with ToGmt reproduces the input file modulo trailing whitespace.
func (sets *GeneSets) ToGmt(filename string) (err error) {
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

	var p pipeline.Pipeline
	p.Source(sets.Sets)
	p.Add(
		pipeline.LimitedPar(0, geneSetsToBytes()),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			records := data.([][]byte)
			for _, record := range records {
				if _, werr := out.Write(record); werr != nil {
					p.SetErr(fmt.Errorf("%v, while writing gene sets to %v", werr, filename))
					break
				}
			}
			return data
		})),
	)
	p.Run()
	if err := p.Err(); err != nil {
		return err
	}
	return out.Flush()
}

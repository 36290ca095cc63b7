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

package expression

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/exascience/elgsea/utils"
)

// Expression matrices can be wide; keep the same scanner limits as
// the gmt package.
const (
	initialScanBuffer = 64 * 1024
	maxScanBuffer     = 16 * 1024 * 1024
)

// FormatCls writes the design vector in the Broad CLS categorical
// format: a counts line, a commented line with the distinct labels
// in first-seen order, and the space-separated labels.
func (set *Set) FormatCls(out *bufio.Writer) error {
	if set.Classes == nil {
		return fmt.Errorf("expression set has no design vector")
	}
	classes := set.SafeClasses()
	unique := uniqueClasses(classes)
	if _, err := fmt.Fprintf(out, "%v %v 1\n", len(classes), len(unique)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "# %v\n", strings.Join(unique, " ")); err != nil {
		return err
	}
	_, err := out.WriteString(strings.Join(classes, " "))
	return err
}

// ToCls writes the design vector to a CLS file.
func (set *Set) ToCls(filename string) (err error) {
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
	if err := set.FormatCls(out); err != nil {
		return err
	}
	return out.Flush()
}

// FormatGct writes the expression matrix in the GCT v1.2 format: the
// #1.2 version line, a dimensions line, a header line, and one row
// per gene with an "na" description placeholder and fixed six-decimal
// values. Missing values are an error.
func (set *Set) FormatGct(out *bufio.Writer) error {
	if _, err := out.WriteString("#1.2\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "%v\t%v\n", len(set.Genes), len(set.Samples)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "gene\tDescription\t%v\n", strings.Join(set.Samples, "\t")); err != nil {
		return err
	}
	var buf []byte
	for i, gene := range set.Genes {
		buf = append(buf[:0], *gene...)
		buf = append(buf, "\tna"...)
		for _, value := range set.Values[i] {
			if math.IsNaN(value) {
				return fmt.Errorf("expression matrix contains a missing value for gene %v", *gene)
			}
			buf = append(buf, '\t')
			buf = strconv.AppendFloat(buf, value, 'f', 6, 64)
		}
		buf = append(buf, '\n')
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ToGct writes the expression matrix to a GCT file.
func (set *Set) ToGct(filename string) (err error) {
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
	if err := set.FormatGct(out); err != nil {
		return err
	}
	return out.Flush()
}

func parseValues(fields []string, filename string, line int) ([]float64, error) {
	values := make([]float64, len(fields))
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%v, while parsing value %v on line %v of %v", err, i+1, line, filename)
		}
		values[i] = value
	}
	return values, nil
}

// ParseGct parses a GCT v1.2 file. The returned set has no design
// vector; attach one with SetClasses.
func ParseGct(filename string) (set *Set, err error) {
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

	if !scanner.Scan() || !strings.HasPrefix(scanner.Text(), "#1.2") {
		return nil, fmt.Errorf("invalid gct file %v - missing #1.2 version header", filename)
	}
	if !scanner.Scan() {
		return nil, fmt.Errorf("invalid gct file %v - missing dimensions line", filename)
	}
	dimensions := strings.Split(strings.TrimRight(scanner.Text(), " \t\r"), "\t")
	if len(dimensions) < 2 {
		return nil, fmt.Errorf("invalid gct file %v - malformed dimensions line", filename)
	}
	rows, err := strconv.Atoi(dimensions[0])
	if err != nil {
		return nil, fmt.Errorf("%v, while parsing the row count of %v", err, filename)
	}
	columns, err := strconv.Atoi(dimensions[1])
	if err != nil {
		return nil, fmt.Errorf("%v, while parsing the column count of %v", err, filename)
	}
	if !scanner.Scan() {
		return nil, fmt.Errorf("invalid gct file %v - missing header line", filename)
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), " \t\r"), "\t")
	if len(header) != columns+2 {
		return nil, fmt.Errorf("invalid gct file %v - header lists %v samples, dimensions line declares %v", filename, len(header)-2, columns)
	}
	samples := header[2:]

	genes := make([]utils.Symbol, 0, rows)
	values := make([][]float64, 0, rows)
	line := 3
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), " \t\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != columns+2 {
			return nil, fmt.Errorf("invalid gct file %v - line %v has %v fields, expected %v", filename, line, len(fields), columns+2)
		}
		row, err := parseValues(fields[2:], filename, line)
		if err != nil {
			return nil, err
		}
		genes = append(genes, utils.Intern(fields[0]))
		values = append(values, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(genes) != rows {
		return nil, fmt.Errorf("invalid gct file %v - declares %v rows but contains %v", filename, rows, len(genes))
	}

	return &Set{Genes: genes, Samples: samples, Values: values}, nil
}

// ParseTsv parses a plain tab-separated expression table: a header
// line with a row-label column followed by sample names, and one
// line per gene. The returned set has no design vector; attach one
// with SetClasses.
func ParseTsv(filename string) (set *Set, err error) {
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

	if !scanner.Scan() {
		return nil, fmt.Errorf("empty expression table %v", filename)
	}
	header := strings.Split(strings.TrimRight(scanner.Text(), " \t\r"), "\t")
	if len(header) < 2 {
		return nil, fmt.Errorf("invalid expression table %v - header lists no samples", filename)
	}
	samples := header[1:]

	var genes []utils.Symbol
	var values [][]float64
	line := 1
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), " \t\r")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != len(samples)+1 {
			return nil, fmt.Errorf("invalid expression table %v - line %v has %v fields, expected %v", filename, line, len(fields), len(samples)+1)
		}
		row, err := parseValues(fields[1:], filename, line)
		if err != nil {
			return nil, err
		}
		genes = append(genes, utils.Intern(fields[0]))
		values = append(values, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Set{Genes: genes, Samples: samples, Values: values}, nil
}

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
	"fmt"
	"math"
	"strings"

	"github.com/exascience/elgsea/internal"
	"github.com/exascience/elgsea/utils"
)

// A Set is an expression matrix (genes × samples) paired with a
// categorical design vector assigning one group label to every
// sample.
type Set struct {
	// Genes labels the rows.
	Genes []utils.Symbol
	// Samples labels the columns.
	Samples []string
	// Values holds one row of sample values per gene.
	Values [][]float64
	// Classes is the design vector, one label per sample. It is nil
	// for matrices parsed from files without a class assignment; see
	// SetClasses.
	Classes []string
}

// NewSet allocates and initializes a new expression set, validating
// that the matrix is rectangular and that the design vector matches
// the columns.
func NewSet(genes, samples []string, values [][]float64, classes []string) (*Set, error) {
	if len(values) != len(genes) {
		return nil, fmt.Errorf("number of value rows (%v) different from the number of genes (%v)", len(values), len(genes))
	}
	for i, row := range values {
		if len(row) != len(samples) {
			return nil, fmt.Errorf("row %v has %v values for %v samples", i, len(row), len(samples))
		}
	}
	set := &Set{
		Genes:   utils.InternAll(genes),
		Samples: samples,
		Values:  values,
	}
	if err := set.SetClasses(classes); err != nil {
		return nil, err
	}
	return set, nil
}

// SetClasses attaches a design vector to the expression set.
func (set *Set) SetClasses(classes []string) error {
	if len(classes) != len(set.Samples) {
		return fmt.Errorf("number of classes different from the number of columns")
	}
	set.Classes = classes
	return nil
}

// FromCasesAndControls combines two expression matrices over the
// same genes into one set with a two-group design vector.
func FromCasesAndControls(cases, controls *Set, caseName, controlName string) (*Set, error) {
	if len(cases.Genes) != len(controls.Genes) {
		return nil, fmt.Errorf("case and control matrices index different genes")
	}
	for i, gene := range cases.Genes {
		if controls.Genes[i] != gene {
			return nil, fmt.Errorf("case and control matrices index different genes")
		}
	}
	values := make([][]float64, len(cases.Genes))
	for i := range values {
		row := make([]float64, 0, len(cases.Samples)+len(controls.Samples))
		row = append(row, cases.Values[i]...)
		row = append(row, controls.Values[i]...)
		values[i] = row
	}
	samples := make([]string, 0, len(cases.Samples)+len(controls.Samples))
	samples = append(samples, cases.Samples...)
	samples = append(samples, controls.Samples...)
	classes := make([]string, 0, len(samples))
	for range cases.Samples {
		classes = append(classes, caseName)
	}
	for range controls.Samples {
		classes = append(classes, controlName)
	}
	return &Set{
		Genes:   cases.Genes,
		Samples: samples,
		Values:  values,
		Classes: classes,
	}, nil
}

// Contrast selects the samples of two groups (cases and controls)
// from the experimental groups of the expression set. Both labels
// must exist in the design vector.
func (set *Set) Contrast(caseLabel, controlLabel string) (*Set, error) {
	if set.Classes == nil {
		return nil, fmt.Errorf("expression set has no design vector")
	}
	for _, label := range []string{caseLabel, controlLabel} {
		found := false
		for _, class := range set.Classes {
			if class == label {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("class label %v not present in the design vector", label)
		}
	}
	var columns []int
	for i, class := range set.Classes {
		if class == caseLabel || class == controlLabel {
			columns = append(columns, i)
		}
	}
	samples := make([]string, len(columns))
	classes := make([]string, len(columns))
	for i, column := range columns {
		samples[i] = set.Samples[column]
		classes[i] = set.Classes[column]
	}
	values := make([][]float64, len(set.Values))
	for i, row := range set.Values {
		selected := make([]float64, len(columns))
		for j, column := range columns {
			selected[j] = row[column]
		}
		values[i] = selected
	}
	return &Set{
		Genes:   set.Genes,
		Samples: samples,
		Values:  values,
		Classes: classes,
	}, nil
}

// SafeClasses returns the design vector with spaces replaced by
// underscores, the form the external tools accept in CLS files and
// phenotype arguments.
func (set *Set) SafeClasses() []string {
	classes := make([]string, len(set.Classes))
	for i, class := range set.Classes {
		classes[i] = strings.ReplaceAll(class, " ", "_")
	}
	return classes
}

// uniqueClasses returns the distinct class labels in first-seen
// order.
func uniqueClasses(classes []string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, class := range classes {
		if !seen[class] {
			seen[class] = true
			unique = append(unique, class)
		}
	}
	return unique
}

// GroupSizes returns the number of samples per class label.
func (set *Set) GroupSizes() map[string]int {
	sizes := make(map[string]int)
	for _, class := range set.Classes {
		sizes[class]++
	}
	return sizes
}

// Fingerprint returns a cheap fingerprint of the expression set (row
// labels, column labels, value sum) for callers that memoize runs on
// identical inputs. Gene rows hash by their interned symbols, so the
// fingerprint is stable within one process.
func (set *Set) Fingerprint() uint64 {
	var sum float64
	for _, row := range set.Values {
		for _, value := range row {
			sum += value
		}
	}
	hash := uint64(5381)
	for _, gene := range set.Genes {
		hash = ((hash << 5) + hash) + utils.SymbolHash(gene)
	}
	for _, sample := range set.Samples {
		hash = ((hash << 5) + hash) + internal.StringHash(sample)
	}
	return hash ^ math.Float64bits(sum)
}

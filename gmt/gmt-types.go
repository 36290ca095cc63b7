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
	"fmt"
	"log"
	"sort"
	"strings"

	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/elgsea/utils"
)

// A GeneSet is a named collection of unique gene identifiers, as
// described by one line of a GMT file. See
// https://software.broadinstitute.org/cancer/software/gsea/wiki/index.php/Data_formats
type GeneSet struct {
	Name        string
	Description string
	// Genes in file order, without duplicates.
	Genes []utils.Symbol
	// Metadata holds optional per-set annotations, for example the
	// attributes of the matching MSigDB XML record.
	Metadata utils.StringMap
}

// NewGeneSet allocates and initializes a new GeneSet. Duplicate gene
// identifiers are removed, keeping the first occurrence, and reported
// with a warning.
func NewGeneSet(name, description string, genes []string) *GeneSet {
	seen := make(map[utils.Symbol]bool, len(genes))
	unique := make([]utils.Symbol, 0, len(genes))
	var redundant []string
	for _, gene := range genes {
		sym := utils.Intern(gene)
		if seen[sym] {
			redundant = append(redundant, gene)
			continue
		}
		seen[sym] = true
		unique = append(unique, sym)
	}
	if len(redundant) > 0 {
		log.Printf("Warning: Gene set %v received a non-unique collection of genes; redundant genes: %v.\n", name, strings.Join(redundant, ", "))
	}
	return &GeneSet{Name: name, Description: description, Genes: unique}
}

// Size returns the number of genes in the set.
func (set *GeneSet) Size() int {
	return len(set.Genes)
}

// IsEmpty returns true if the set has no genes.
func (set *GeneSet) IsEmpty() bool {
	return len(set.Genes) == 0
}

// GeneStrings returns the gene identifiers of the set as strings, in
// set order.
func (set *GeneSet) GeneStrings() []string {
	return utils.SymbolStrings(set.Genes)
}

// Contains returns true if the given gene identifier is a member of
// the set.
func (set *GeneSet) Contains(gene string) bool {
	sym := utils.Intern(gene)
	for _, g := range set.Genes {
		if g == sym {
			return true
		}
	}
	return false
}

// GeneSets is a gene set collection: a named group of gene sets, for
// example one MSigDB library.
type GeneSets struct {
	Name string
	// Path is the file this collection was parsed from, if any.
	Path string
	Sets []*GeneSet
}

// NewGeneSets allocates and initializes a new gene set
// collection. Empty gene sets are removed, and sets with identical
// membership under different names are reported, both with a warning.
func NewGeneSets(name string, sets []*GeneSet) *GeneSets {
	kept := make([]*GeneSet, 0, len(sets))
	empty := 0
	for _, set := range sets {
		if set.IsEmpty() {
			empty++
			continue
		}
		kept = append(kept, set)
	}
	if empty > 0 {
		log.Printf("Warning: %v empty gene sets were removed.\n", empty)
	}
	result := &GeneSets{Name: name, Sets: kept}
	if redundant := result.FindRedundant(); len(redundant) > 0 {
		affected := 0
		for _, group := range redundant {
			affected += len(group)
		}
		log.Printf("Warning: %v gene sets in %v groups share identical membership under different names; use FindRedundant to investigate, or CollapseRedundant to merge them.\n", affected, len(redundant))
	}
	return result
}

// Len returns the number of gene sets in the collection.
func (sets *GeneSets) Len() int {
	return len(sets.Sets)
}

// Trim returns a new collection that keeps exactly the gene sets
// whose size lies in the closed interval [minGenes, maxGenes]. A
// negative maxGenes means no upper bound.
func (sets *GeneSets) Trim(minGenes, maxGenes int) *GeneSets {
	if maxGenes < 0 {
		maxGenes = int(^uint(0) >> 1)
	}
	kept := make([]*GeneSet, 0, len(sets.Sets))
	for _, set := range sets.Sets {
		if n := len(set.Genes); n >= minGenes && n <= maxGenes {
			kept = append(kept, set)
		}
	}
	return &GeneSets{Name: sets.Name, Sets: kept}
}

// Subset returns a new collection in which every gene set is
// intersected with the given measured genes. Sets whose retained
// fraction falls below minRepresentation are dropped, as are sets
// with an empty intersection. An empty result is a valid empty
// collection, not an error.
func (sets *GeneSets) Subset(genes []string, minRepresentation float64) *GeneSets {
	matrix := sets.Matrix()
	measured := matrix.GeneRow(genes)
	kept := make([]*GeneSet, 0, len(sets.Sets))
	for i, set := range sets.Sets {
		overlap := matrix.Rows[i].IntersectionCardinality(measured)
		if overlap == 0 {
			continue
		}
		if float64(overlap)/float64(len(set.Genes)) < minRepresentation {
			continue
		}
		retained := make([]utils.Symbol, 0, overlap)
		for _, gene := range set.Genes {
			if column, ok := matrix.Column(gene); ok && measured.Test(column) {
				retained = append(retained, gene)
			}
		}
		kept = append(kept, &GeneSet{
			Name:        set.Name,
			Description: set.Description,
			Genes:       retained,
			Metadata:    set.Metadata,
		})
	}
	return &GeneSets{Name: sets.Name, Sets: kept}
}

// Extract returns a new collection that retains the gene sets with
// the given names.
func (sets *GeneSets) Extract(names []string) *GeneSets {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	kept := make([]*GeneSet, 0, len(names))
	for _, set := range sets.Sets {
		if wanted[set.Name] {
			kept = append(kept, set)
		}
	}
	return &GeneSets{Name: sets.Name, Sets: kept}
}

// Merge returns a new collection concatenating this collection with
// the given ones, in order.
func (sets *GeneSets) Merge(others ...*GeneSets) *GeneSets {
	merged := make([]*GeneSet, 0, len(sets.Sets))
	merged = append(merged, sets.Sets...)
	for _, other := range others {
		merged = append(merged, other.Sets...)
	}
	return &GeneSets{Name: sets.Name, Sets: merged}
}

// FormatNames returns a new collection in which every gene set is
// renamed by the given formatter. Set count and membership are
// preserved.
func (sets *GeneSets) FormatNames(formatter func(*GeneSet) string) *GeneSets {
	renamed := make([]*GeneSet, len(sets.Sets))
	for i, set := range sets.Sets {
		renamed[i] = &GeneSet{
			Name:        formatter(set),
			Description: set.Description,
			Genes:       set.Genes,
			Metadata:    set.Metadata,
		}
	}
	return &GeneSets{Name: sets.Name, Sets: renamed}
}

// AllGenes returns the gene universe of the collection, in
// first-occurrence order.
func (sets *GeneSets) AllGenes() []utils.Symbol {
	seen := make(map[utils.Symbol]bool)
	var genes []utils.Symbol
	for _, set := range sets.Sets {
		for _, gene := range set.Genes {
			if !seen[gene] {
				seen[gene] = true
				genes = append(genes, gene)
			}
		}
	}
	return genes
}

// ByName maps set names to gene sets. Duplicate names are an error.
func (sets *GeneSets) ByName() (map[string]*GeneSet, error) {
	byName := make(map[string]*GeneSet, len(sets.Sets))
	for _, set := range sets.Sets {
		if _, found := byName[set.Name]; found {
			return nil, fmt.Errorf("duplicate gene set name %v in collection %v", set.Name, sets.Name)
		}
		byName[set.Name] = set
	}
	return byName, nil
}

// GroupIdentical groups the gene sets of the collection by identical
// membership. Groups appear in first-occurrence order.
func (sets *GeneSets) GroupIdentical() [][]*GeneSet {
	matrix := sets.Matrix()
	groups := make(map[string][]*GeneSet)
	var order []string
	for i, set := range sets.Sets {
		key := rowKey(matrix.Rows[i])
		if _, found := groups[key]; !found {
			order = append(order, key)
		}
		groups[key] = append(groups[key], set)
	}
	result := make([][]*GeneSet, 0, len(order))
	for _, key := range order {
		result = append(result, groups[key])
	}
	return result
}

// FindRedundant returns the groups of gene sets that share identical
// membership under more than one name.
func (sets *GeneSets) FindRedundant() [][]*GeneSet {
	var redundant [][]*GeneSet
	for _, group := range sets.GroupIdentical() {
		if len(group) > 1 {
			redundant = append(redundant, group)
		}
	}
	return redundant
}

// DefaultCollapseLimit is the maximum number of set names joined into
// the name of a collapsed gene set.
const DefaultCollapseLimit = 10

// CollapseRedundant returns a new collection in which every group of
// gene sets with identical membership is merged into a single set
// whose name joins up to limit member names with sep. The full list
// of names is kept in the description. A limit < 1 means
// DefaultCollapseLimit. Collection order is preserved by the first
// member of each group.
func (sets *GeneSets) CollapseRedundant(sep string, limit int) *GeneSets {
	if limit < 1 {
		limit = DefaultCollapseLimit
	}
	groups := sets.GroupIdentical()
	collapsed := make([]*GeneSet, 0, len(groups))
	merged := 0
	for _, group := range groups {
		if len(group) == 1 {
			collapsed = append(collapsed, group[0])
			continue
		}
		merged += len(group)
		names := make([]string, len(group))
		for i, set := range group {
			names[i] = set.Name
		}
		name := strings.Join(names[:min(limit, len(names))], sep)
		if len(names) > limit {
			log.Printf("Warning: Redundant group of %v gene sets including %v exceeds the collapse limit (%v); only as many names are included in the collapsed set name.\n", len(names), names[0], limit)
			name += fmt.Sprintf("%v... %v more", sep, len(names)-limit)
		}
		collapsed = append(collapsed, &GeneSet{
			Name:        name,
			Description: strings.Join(names, sep),
			Genes:       group[0].Genes,
		})
	}
	if merged > 0 {
		log.Printf("Collapsed %v redundant gene sets into %v non-redundant sets.\n", merged, merged-(len(sets.Sets)-len(collapsed)))
	}
	return &GeneSets{Name: sets.Name, Sets: collapsed}
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

type geneSetSorter struct {
	sets []*GeneSet
	by   func(set1, set2 *GeneSet) bool
}

func (s geneSetSorter) SequentialSort(i, j int) {
	sets, by := s.sets[i:j], s.by
	sort.SliceStable(sets, func(i, j int) bool {
		return by(sets[i], sets[j])
	})
}

func (s geneSetSorter) NewTemp() psort.StableSorter {
	return geneSetSorter{make([]*GeneSet, len(s.sets)), s.by}
}

func (s geneSetSorter) Len() int {
	return len(s.sets)
}

func (s geneSetSorter) Less(i, j int) bool {
	return s.by(s.sets[i], s.sets[j])
}

func (s geneSetSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s.sets, p.(geneSetSorter).sets
	return func(i, j, len int) {
		copy(dst[i:i+len], src[j:j+len])
	}
}

// SortByName sorts the gene sets of the collection by name, in
// place, using a parallel stable sort.
func (sets *GeneSets) SortByName() {
	psort.StableSort(geneSetSorter{sets.Sets, func(set1, set2 *GeneSet) bool {
		return set1.Name < set2.Name
	}})
}

// SortBySize sorts the gene sets of the collection by size, smallest
// first and by name within one size, in place, using a parallel
// stable sort.
func (sets *GeneSets) SortBySize() {
	psort.StableSort(geneSetSorter{sets.Sets, func(set1, set2 *GeneSet) bool {
		if len(set1.Genes) != len(set2.Genes) {
			return len(set1.Genes) < len(set2.Genes)
		}
		return set1.Name < set2.Name
	}})
}

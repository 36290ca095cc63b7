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
	"encoding/binary"

	"github.com/willf/bitset"

	"github.com/exascience/elgsea/utils"
)

// A Membership is a boolean set × gene membership table over the
// gene universe of a collection.
type Membership struct {
	// Genes is the gene universe of the collection, in
	// first-occurrence order. It defines the columns of the table.
	Genes []utils.Symbol
	// Rows holds one bit set per gene set, aligned with the
	// collection, with one bit per universe gene.
	Rows []*bitset.BitSet

	columns map[utils.Symbol]uint
}

// Matrix computes the membership table of the collection.
func (sets *GeneSets) Matrix() *Membership {
	columns := make(map[utils.Symbol]uint)
	var genes []utils.Symbol
	for _, set := range sets.Sets {
		for _, gene := range set.Genes {
			if _, found := columns[gene]; !found {
				columns[gene] = uint(len(genes))
				genes = append(genes, gene)
			}
		}
	}
	rows := make([]*bitset.BitSet, len(sets.Sets))
	for i, set := range sets.Sets {
		row := bitset.New(uint(len(genes)))
		for _, gene := range set.Genes {
			row.Set(columns[gene])
		}
		rows[i] = row
	}
	return &Membership{Genes: genes, Rows: rows, columns: columns}
}

// Column returns the universe column of the given gene, and whether
// the gene occurs in the universe at all.
func (matrix *Membership) Column(gene utils.Symbol) (uint, bool) {
	column, found := matrix.columns[gene]
	return column, found
}

// Test returns true if the given gene is a member of the set at the
// given row.
func (matrix *Membership) Test(row int, gene utils.Symbol) bool {
	column, found := matrix.columns[gene]
	return found && matrix.Rows[row].Test(column)
}

// GeneRow returns a fresh row marking the given genes. Genes outside
// the universe are ignored.
func (matrix *Membership) GeneRow(genes []string) *bitset.BitSet {
	row := bitset.New(uint(len(matrix.Genes)))
	for _, gene := range genes {
		if column, found := matrix.columns[utils.Intern(gene)]; found {
			row.Set(column)
		}
	}
	return row
}

// rowKey fingerprints a membership row for grouping. Rows of one
// table all span the same universe, so equal key means equal
// membership.
func rowKey(row *bitset.BitSet) string {
	words := row.Bytes()
	buf := make([]byte, 8*len(words))
	for i, word := range words {
		binary.LittleEndian.PutUint64(buf[8*i:], word)
	}
	return string(buf)
}

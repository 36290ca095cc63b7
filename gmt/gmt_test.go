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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testSets() *GeneSets {
	return NewGeneSets("test", []*GeneSet{
		NewGeneSet("SET_A", "first", []string{"TP53", "BRCA1", "EGFR"}),
		NewGeneSet("SET_B", "second", []string{"TP53", "MYC"}),
		NewGeneSet("SET_C", "third", []string{"KRAS", "MYC", "EGFR", "BRAF"}),
	})
}

func namesOf(sets *GeneSets) []string {
	names := make([]string, sets.Len())
	for i, set := range sets.Sets {
		names[i] = set.Name
	}
	return names
}

func namesEqual(sets *GeneSets, names ...string) bool {
	actual := namesOf(sets)
	if len(actual) != len(names) {
		return false
	}
	for i, name := range names {
		if actual[i] != name {
			return false
		}
	}
	return true
}

func genesEqual(set *GeneSet, genes ...string) bool {
	actual := set.GeneStrings()
	if len(actual) != len(genes) {
		return false
	}
	for i, gene := range genes {
		if actual[i] != gene {
			return false
		}
	}
	return true
}

func TestNewGeneSet(t *testing.T) {
	set := NewGeneSet("SET", "na", []string{"TP53", "MYC", "TP53", "EGFR", "MYC"})
	if !genesEqual(set, "TP53", "MYC", "EGFR") {
		t.Error("NewGeneSet deduplication failed")
	}
	if set.Size() != 3 {
		t.Error("NewGeneSet size failed")
	}
	if !set.Contains("MYC") || set.Contains("BRAF") {
		t.Error("Contains failed")
	}
}

func TestNewGeneSets(t *testing.T) {
	sets := NewGeneSets("test", []*GeneSet{
		NewGeneSet("SET_A", "na", []string{"TP53"}),
		NewGeneSet("EMPTY", "na", nil),
		NewGeneSet("SET_B", "na", []string{"MYC"}),
	})
	if !namesEqual(sets, "SET_A", "SET_B") {
		t.Error("NewGeneSets empty set removal failed")
	}
}

func TestTrim(t *testing.T) {
	sets := testSets()
	if !namesEqual(sets.Trim(0, -1), "SET_A", "SET_B", "SET_C") {
		t.Error("unbounded Trim failed")
	}
	if !namesEqual(sets.Trim(3, 3), "SET_A") {
		t.Error("Trim 1 failed")
	}
	if !namesEqual(sets.Trim(2, 3), "SET_A", "SET_B") {
		t.Error("Trim 2 failed")
	}
	if !namesEqual(sets.Trim(3, -1), "SET_A", "SET_C") {
		t.Error("Trim 3 failed")
	}
	if sets.Trim(5, -1).Len() != 0 {
		t.Error("Trim 4 failed")
	}
	if sets.Len() != 3 {
		t.Error("Trim modified its receiver")
	}
}

func TestSubset(t *testing.T) {
	sets := testSets()
	measured := []string{"TP53", "MYC", "KRAS", "GAPDH"}
	subset := sets.Subset(measured, 0)
	if !namesEqual(subset, "SET_A", "SET_B", "SET_C") {
		t.Error("Subset 1 failed")
	}
	universe := make(map[string]bool)
	for _, gene := range measured {
		universe[gene] = true
	}
	for _, set := range subset.Sets {
		for _, gene := range set.GeneStrings() {
			if !universe[gene] {
				t.Error("Subset introduced a gene absent from the measured genes")
			}
		}
	}
	if !genesEqual(subset.Sets[0], "TP53") {
		t.Error("Subset 2 failed")
	}
	if !genesEqual(subset.Sets[1], "TP53", "MYC") {
		t.Error("Subset order failed")
	}
	// SET_A retains 1/3, SET_B 2/2, SET_C 2/4.
	if !namesEqual(sets.Subset(measured, 0.5), "SET_B", "SET_C") {
		t.Error("Subset representation 1 failed")
	}
	if !namesEqual(sets.Subset(measured, 0.6), "SET_B") {
		t.Error("Subset representation 2 failed")
	}
	if sets.Subset([]string{"GAPDH"}, 0).Len() != 0 {
		t.Error("empty Subset failed")
	}
}

func TestExtract(t *testing.T) {
	sets := testSets()
	if !namesEqual(sets.Extract([]string{"SET_C", "SET_A"}), "SET_A", "SET_C") {
		t.Error("Extract failed")
	}
	if sets.Extract([]string{"NO_SUCH_SET"}).Len() != 0 {
		t.Error("empty Extract failed")
	}
}

func TestMerge(t *testing.T) {
	sets := testSets()
	other := NewGeneSets("other", []*GeneSet{
		NewGeneSet("SET_D", "na", []string{"GAPDH"}),
	})
	merged := sets.Merge(other)
	if !namesEqual(merged, "SET_A", "SET_B", "SET_C", "SET_D") {
		t.Error("Merge failed")
	}
}

func TestFormatNames(t *testing.T) {
	sets := testSets()
	renamed := sets.FormatNames(func(set *GeneSet) string {
		return strings.ToLower(set.Name)
	})
	if !namesEqual(renamed, "set_a", "set_b", "set_c") {
		t.Error("FormatNames failed")
	}
	if renamed.Len() != sets.Len() {
		t.Error("FormatNames changed the set count")
	}
	for i, set := range renamed.Sets {
		if !genesEqual(set, sets.Sets[i].GeneStrings()...) {
			t.Error("FormatNames changed set membership")
		}
	}
}

func TestAllGenes(t *testing.T) {
	genes := testSets().AllGenes()
	expected := []string{"TP53", "BRCA1", "EGFR", "MYC", "KRAS", "BRAF"}
	if len(genes) != len(expected) {
		t.Error("AllGenes 1 failed")
	}
	for i, gene := range genes {
		if *gene != expected[i] {
			t.Error("AllGenes 2 failed")
		}
	}
}

func TestByName(t *testing.T) {
	sets := testSets()
	byName, err := sets.ByName()
	if err != nil {
		t.Error("ByName failed: ", err)
	}
	if byName["SET_B"] != sets.Sets[1] {
		t.Error("ByName lookup failed")
	}
	dup := sets.Merge(sets)
	if _, err := dup.ByName(); err == nil {
		t.Error("ByName accepted duplicate names")
	}
}

func redundantSets() *GeneSets {
	return NewGeneSets("redundant", []*GeneSet{
		NewGeneSet("SET_A", "na", []string{"TP53", "MYC"}),
		NewGeneSet("SET_B", "na", []string{"MYC", "TP53"}),
		NewGeneSet("SET_C", "na", []string{"KRAS"}),
	})
}

func TestFindRedundant(t *testing.T) {
	groups := redundantSets().FindRedundant()
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Error("FindRedundant failed")
	}
	if groups[0][0].Name != "SET_A" || groups[0][1].Name != "SET_B" {
		t.Error("FindRedundant order failed")
	}
	if len(testSets().FindRedundant()) != 0 {
		t.Error("FindRedundant false positive")
	}
}

func TestCollapseRedundant(t *testing.T) {
	collapsed := redundantSets().CollapseRedundant(" or ", 0)
	if !namesEqual(collapsed, "SET_A or SET_B", "SET_C") {
		t.Error("CollapseRedundant failed")
	}
	if !genesEqual(collapsed.Sets[0], "TP53", "MYC") {
		t.Error("CollapseRedundant membership failed")
	}
	limited := redundantSets().CollapseRedundant("|", 1)
	if !strings.HasPrefix(limited.Sets[0].Name, "SET_A|") || !strings.Contains(limited.Sets[0].Name, "1 more") {
		t.Error("CollapseRedundant limit failed")
	}
}

func TestSort(t *testing.T) {
	sets := testSets()
	sets.SortBySize()
	if !namesEqual(sets, "SET_B", "SET_A", "SET_C") {
		t.Error("SortBySize failed")
	}
	sets.SortByName()
	if !namesEqual(sets, "SET_A", "SET_B", "SET_C") {
		t.Error("SortByName failed")
	}
}

func TestMembership(t *testing.T) {
	sets := testSets()
	matrix := sets.Matrix()
	if len(matrix.Genes) != 6 || len(matrix.Rows) != 3 {
		t.Error("Matrix dimensions failed")
	}
	for i, set := range sets.Sets {
		for _, gene := range set.Genes {
			if !matrix.Test(i, gene) {
				t.Error("Matrix membership failed")
			}
		}
	}
	row := matrix.GeneRow([]string{"TP53", "GAPDH"})
	if row.Count() != 1 {
		t.Error("GeneRow ignored universe boundaries")
	}
}

func TestAppendGmt(t *testing.T) {
	set := NewGeneSet("SET", "a description", []string{"TP53", "MYC"})
	if string(set.AppendGmt(nil)) != "SET\ta description\tTP53\tMYC\n" {
		t.Error("AppendGmt failed")
	}
}

func TestGmtRoundTrip(t *testing.T) {
	dir := t.TempDir()
	contents := "SET_A\tfirst set\tTP53\tBRCA1\tEGFR\n" +
		"SET_B\tna\tTP53\tMYC\n" +
		"SET_C\t\tKRAS\n"
	input := filepath.Join(dir, "test.gmt")
	if err := ioutil.WriteFile(input, []byte(contents+" \t\n"), 0666); err != nil {
		t.Fatal(err)
	}
	sets, err := ParseGmt(input)
	if err != nil {
		t.Fatal(err)
	}
	if sets.Name != "test.gmt" || sets.Path != input {
		t.Error("ParseGmt naming failed")
	}
	if !namesEqual(sets, "SET_A", "SET_B", "SET_C") {
		t.Error("ParseGmt failed")
	}
	if sets.Sets[0].Description != "first set" {
		t.Error("ParseGmt description failed")
	}
	output := filepath.Join(dir, "roundtrip.gmt")
	if err := sets.ToGmt(output); err != nil {
		t.Fatal(err)
	}
	written, err := ioutil.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(written) != contents {
		t.Error("GMT round trip failed")
	}
}

func TestParseGmtMalformed(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.gmt")
	if err := ioutil.WriteFile(input, []byte("LONELY_NAME\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseGmt(input); err == nil {
		t.Error("ParseGmt accepted a malformed line")
	}
	if _, err := ParseGmt(filepath.Join(dir, "missing.gmt")); !os.IsNotExist(err) {
		t.Error("ParseGmt missing file failed")
	}
}

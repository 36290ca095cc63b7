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
	"bytes"
	"io/ioutil"
	"math"
	"path/filepath"
	"testing"

	"github.com/exascience/elgsea/utils"
)

func testSet(t *testing.T) *Set {
	set, err := NewSet(
		[]string{"TP53", "MYC"},
		[]string{"s1", "s2", "s3", "s4"},
		[][]float64{
			{1, 2, 3, 4},
			{5, 6, 7, 8},
		},
		[]string{"tumour", "tumour", "normal", "normal"},
	)
	if err != nil {
		t.Fatal(err)
	}
	return set
}

func TestNewSet(t *testing.T) {
	if _, err := NewSet(
		[]string{"TP53"},
		[]string{"s1"},
		[][]float64{{1}, {2}},
		[]string{"tumour"},
	); err == nil {
		t.Error("NewSet accepted a ragged matrix")
	}
	if _, err := NewSet(
		[]string{"TP53"},
		[]string{"s1", "s2"},
		[][]float64{{1}},
		[]string{"tumour", "normal"},
	); err == nil {
		t.Error("NewSet accepted a short row")
	}
	if _, err := NewSet(
		[]string{"TP53"},
		[]string{"s1", "s2"},
		[][]float64{{1, 2}},
		[]string{"tumour"},
	); err == nil {
		t.Error("NewSet accepted a short design vector")
	}
}

func TestContrast(t *testing.T) {
	set, err := NewSet(
		[]string{"TP53"},
		[]string{"s1", "s2", "s3"},
		[][]float64{{1, 2, 3}},
		[]string{"a", "b", "c"},
	)
	if err != nil {
		t.Fatal(err)
	}
	contrast, err := set.Contrast("a", "c")
	if err != nil {
		t.Fatal(err)
	}
	if len(contrast.Samples) != 2 || contrast.Samples[0] != "s1" || contrast.Samples[1] != "s3" {
		t.Error("Contrast samples failed")
	}
	if contrast.Values[0][0] != 1 || contrast.Values[0][1] != 3 {
		t.Error("Contrast values failed")
	}
	if contrast.Classes[0] != "a" || contrast.Classes[1] != "c" {
		t.Error("Contrast classes failed")
	}
	if _, err := set.Contrast("a", "no_such_label"); err == nil {
		t.Error("Contrast accepted an unknown label")
	}
}

func TestFromCasesAndControls(t *testing.T) {
	cases, err := NewSet([]string{"TP53"}, []string{"c1"}, [][]float64{{1}}, []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	controls, err := NewSet([]string{"TP53"}, []string{"n1", "n2"}, [][]float64{{2, 3}}, []string{"x", "x"})
	if err != nil {
		t.Fatal(err)
	}
	combined, err := FromCasesAndControls(cases, controls, "tumour", "normal")
	if err != nil {
		t.Fatal(err)
	}
	if len(combined.Samples) != 3 || combined.Classes[0] != "tumour" || combined.Classes[2] != "normal" {
		t.Error("FromCasesAndControls failed")
	}
	if combined.Values[0][0] != 1 || combined.Values[0][2] != 3 {
		t.Error("FromCasesAndControls values failed")
	}
	mismatched, err := NewSet([]string{"MYC"}, []string{"n1"}, [][]float64{{2}}, []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FromCasesAndControls(cases, mismatched, "tumour", "normal"); err == nil {
		t.Error("FromCasesAndControls accepted mismatched genes")
	}
}

func TestFingerprint(t *testing.T) {
	if testSet(t).Fingerprint() != testSet(t).Fingerprint() {
		t.Error("Fingerprint is not deterministic")
	}
	reference := testSet(t).Fingerprint()
	changedValue := testSet(t)
	changedValue.Values[1][2] = 42
	if changedValue.Fingerprint() == reference {
		t.Error("Fingerprint ignored a value change")
	}
	changedSample := testSet(t)
	changedSample.Samples[0] = "other"
	if changedSample.Fingerprint() == reference {
		t.Error("Fingerprint ignored a sample label change")
	}
	changedGene := testSet(t)
	changedGene.Genes[0] = utils.Intern("BRCA1")
	if changedGene.Fingerprint() == reference {
		t.Error("Fingerprint ignored a gene label change")
	}
}

func TestGroupSizes(t *testing.T) {
	sizes := testSet(t).GroupSizes()
	if sizes["tumour"] != 2 || sizes["normal"] != 2 {
		t.Error("GroupSizes failed")
	}
}

func TestFormatCls(t *testing.T) {
	set := testSet(t)
	var buf bytes.Buffer
	out := bufio.NewWriter(&buf)
	if err := set.FormatCls(out); err != nil {
		t.Fatal(err)
	}
	if err := out.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "4 2 1\n# tumour normal\ntumour tumour normal normal" {
		t.Error("FormatCls failed")
	}
	if err := set.SetClasses([]string{"breast tumour", "breast tumour", "healthy tissue", "healthy tissue"}); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	out = bufio.NewWriter(&buf)
	if err := set.FormatCls(out); err != nil {
		t.Fatal(err)
	}
	if err := out.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "4 2 1\n# breast_tumour healthy_tissue\nbreast_tumour breast_tumour healthy_tissue healthy_tissue" {
		t.Error("FormatCls escaping failed")
	}
}

func TestFormatGct(t *testing.T) {
	set := testSet(t)
	var buf bytes.Buffer
	out := bufio.NewWriter(&buf)
	if err := set.FormatGct(out); err != nil {
		t.Fatal(err)
	}
	if err := out.Flush(); err != nil {
		t.Fatal(err)
	}
	expected := "#1.2\n" +
		"2\t4\n" +
		"gene\tDescription\ts1\ts2\ts3\ts4\n" +
		"TP53\tna\t1.000000\t2.000000\t3.000000\t4.000000\n" +
		"MYC\tna\t5.000000\t6.000000\t7.000000\t8.000000\n"
	if buf.String() != expected {
		t.Error("FormatGct failed")
	}
	set.Values[1][2] = math.NaN()
	out = bufio.NewWriter(&buf)
	if err := set.FormatGct(out); err == nil {
		t.Error("FormatGct accepted a missing value")
	}
}

func TestGctRoundTrip(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.gct")
	set := testSet(t)
	if err := set.ToGct(filename); err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseGct(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed.Genes) != 2 || *parsed.Genes[1] != "MYC" {
		t.Error("ParseGct genes failed")
	}
	if len(parsed.Samples) != 4 || parsed.Samples[3] != "s4" {
		t.Error("ParseGct samples failed")
	}
	if parsed.Values[1][3] != 8 {
		t.Error("ParseGct values failed")
	}
	if parsed.Classes != nil {
		t.Error("ParseGct invented a design vector")
	}
}

func TestParseGctInvalid(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "bad.gct")
	if err := ioutil.WriteFile(filename, []byte("not a gct file\n"), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseGct(filename); err == nil {
		t.Error("ParseGct accepted a file without a version header")
	}
	contents := "#1.2\n3\t2\ngene\tDescription\ts1\ts2\nTP53\tna\t1\t2\n"
	if err := ioutil.WriteFile(filename, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseGct(filename); err == nil {
		t.Error("ParseGct accepted a row count mismatch")
	}
}

func TestParseTsv(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.tsv")
	contents := "gene\ts1\ts2\nTP53\t1.5\t2\nMYC\t3\t4.25\n"
	if err := ioutil.WriteFile(filename, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	set, err := ParseTsv(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Genes) != 2 || *set.Genes[0] != "TP53" {
		t.Error("ParseTsv genes failed")
	}
	if set.Values[0][0] != 1.5 || set.Values[1][1] != 4.25 {
		t.Error("ParseTsv values failed")
	}
	if err := set.SetClasses([]string{"a"}); err == nil {
		t.Error("SetClasses accepted a short design vector")
	}
	if err := set.SetClasses([]string{"a", "b"}); err != nil {
		t.Error("SetClasses failed: ", err)
	}
}

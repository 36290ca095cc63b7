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

package msigdb

import (
	"io/ioutil"
	"path/filepath"
	"testing"
)

const testXML = `<?xml version="1.0"?>
<MSIGDB NAME="msigdb" VERSION="7.4">
<GENESET STANDARD_NAME="SET_A" ORGANISM="Homo sapiens" CONTRIBUTOR="test"/>
<GENESET STANDARD_NAME="SET_B" ORGANISM="Homo sapiens"/>
</MSIGDB>
`

func makeTestDatabase(t *testing.T) string {
	dir := t.TempDir()
	files := map[string]string{
		"h.all.v7.4.symbols.gmt":       "SET_A\tna\tTP53\tMYC\nSET_B\tna\tKRAS\n",
		"h.all.v7.4.entrez.gmt":        "SET_A\tna\t7157\t4609\nSET_B\tna\t3845\n",
		"c2.cp.reactome.v7.4.symbols.gmt": "SET_A\tna\tTP53\n",
		"h.all.v7.3.symbols.gmt":       "OLD_SET\tna\tTP53\n",
		"README.txt":                   "not a gene set library\n",
		"msigdb_v7.4.xml":              testXML,
	}
	for name, contents := range files {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(contents), 0666); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestOpen(t *testing.T) {
	dir := makeTestDatabase(t)
	db, err := Open(dir, "7.4")
	if err != nil {
		t.Fatal(err)
	}
	if len(db.Entries) != 3 {
		t.Error("Open found the wrong libraries: ", db.Entries)
	}
	expected := []Entry{
		{"c2.cp.reactome", "symbols"},
		{"h.all", "entrez"},
		{"h.all", "symbols"},
	}
	for i, entry := range db.Entries {
		if entry != expected[i] {
			t.Error("Open entry order failed")
		}
	}
	old, err := Open(dir, "7.3")
	if err != nil {
		t.Fatal(err)
	}
	if len(old.Entries) != 1 || old.Entries[0].Name != "h.all" {
		t.Error("Open version scoping failed")
	}
	if _, err := Open(filepath.Join(dir, "no_such_dir"), "7.4"); err == nil {
		t.Error("Open accepted a missing directory")
	}
}

func TestResolve(t *testing.T) {
	db, err := Open(makeTestDatabase(t), "7.4")
	if err != nil {
		t.Fatal(err)
	}
	path, err := db.Resolve("h.all", "symbols")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "h.all.v7.4.symbols.gmt" {
		t.Error("Resolve failed")
	}
	if _, err := db.Resolve("no.such.library", "symbols"); err == nil {
		t.Error("Resolve accepted an unknown library")
	}
}

func TestLoad(t *testing.T) {
	db, err := Open(makeTestDatabase(t), "7.4")
	if err != nil {
		t.Fatal(err)
	}
	sets, err := db.Load("h.all", "symbols")
	if err != nil {
		t.Fatal(err)
	}
	if sets.Name != "h.all" || sets.Len() != 2 {
		t.Error("Load failed")
	}
	if sets.Sets[0].Metadata["ORGANISM"] != "Homo sapiens" {
		t.Error("Load metadata failed")
	}
	if sets.Sets[0].Metadata["CONTRIBUTOR"] != "test" {
		t.Error("Load metadata attributes failed")
	}
	if sets.Sets[1].Metadata["CONTRIBUTOR"] != "" {
		t.Error("Load metadata leaked across sets")
	}
}

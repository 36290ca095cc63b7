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

// Package msigdb locates and loads gene set libraries from a local
// copy of the Molecular Signatures Database (MSigDB).
package msigdb

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/exascience/elgsea/gmt"
	"github.com/exascience/elgsea/internal"
)

// An Entry describes one gene set library available in an MSigDB
// directory.
type Entry struct {
	// Name of the library, for example "c2.cp.reactome".
	Name string
	// IDType is the gene identifier type, "symbols" or "entrez".
	IDType string
}

// A Database is a local MSigDB directory for one release version,
// holding libraries named <name>.v<version>.<idtype>.gmt.
type Database struct {
	Path    string
	Version string
	Entries []Entry

	xmlPath string
}

// Open scans an MSigDB directory for the libraries of the given
// release version. If a msigdb_v<version>.xml file exists next to
// the libraries or one directory above, Load attaches its per-set
// metadata.
func Open(path, version string) (*Database, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("could not find MSigDB: %v does not exist", path)
	}
	pattern := regexp.MustCompile(`^(.*)\.v` + regexp.QuoteMeta(version) + `\.(entrez|symbols)\.gmt$`)
	names, err := internal.Directory(path)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	db := &Database{Path: path, Version: version}
	for _, name := range names {
		if m := pattern.FindStringSubmatch(name); m != nil {
			db.Entries = append(db.Entries, Entry{Name: m[1], IDType: m[2]})
		}
	}
	for _, dir := range []string{path, filepath.Dir(path)} {
		candidate := filepath.Join(dir, fmt.Sprintf("msigdb_v%v.xml", version))
		if _, err := os.Stat(candidate); err == nil {
			db.xmlPath = candidate
			break
		}
	}
	return db, nil
}

// Resolve returns the file name of the given library.
func (db *Database) Resolve(name, idType string) (string, error) {
	path := filepath.Join(db.Path, fmt.Sprintf("%v.v%v.%v.gmt", name, db.Version, idType))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("unknown gene set library: %v", path)
	}
	return path, nil
}

// Load parses the given library, attaching XML metadata when the
// database has it.
func (db *Database) Load(name, idType string) (*gmt.GeneSets, error) {
	path, err := db.Resolve(name, idType)
	if err != nil {
		return nil, err
	}
	sets, err := gmt.ParseGmt(path)
	if err != nil {
		return nil, err
	}
	sets.Name = name
	if db.xmlPath != "" {
		if err := AttachMetadata(sets, db.xmlPath); err != nil {
			return nil, err
		}
	}
	return sets, nil
}

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
	"bufio"
	"encoding/xml"
	"io"
	"log"
	"os"

	"github.com/exascience/elgsea/gmt"
	"github.com/exascience/elgsea/utils"
)

// AttachMetadata parses an MSigDB XML file and attaches the
// attributes of every GENESET record to the gene set with the
// matching STANDARD_NAME. Sets without a record are left untouched.
//
// MSigDB XML files are large; the records are decoded in a streaming
// fashion without building the document tree.
func AttachMetadata(sets *gmt.GeneSets, filename string) (err error) {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()

	metadata := make(map[string]utils.StringMap)
	decoder := xml.NewDecoder(bufio.NewReader(file))
	for {
		token, terr := decoder.Token()
		if terr == io.EOF {
			break
		}
		if terr != nil {
			return terr
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "GENESET" {
			continue
		}
		record := make(utils.StringMap, len(start.Attr))
		for _, attr := range start.Attr {
			if !record.SetUniqueEntry(attr.Name.Local, attr.Value) {
				log.Printf("Warning: duplicate attribute %v in MSigDB record %v.\n", attr.Name.Local, record["STANDARD_NAME"])
			}
		}
		metadata[record["STANDARD_NAME"]] = record
	}

	for _, set := range sets.Sets {
		if record, found := metadata[set.Name]; found {
			set.Metadata = record
		}
	}
	return nil
}

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

package gsea

import (
	"encoding/csv"
	"io"
	"io/ioutil"

	"github.com/gocarina/gocsv"
)

// The tools write their reports as delimited tables with uneven
// column sets across versions. The row structs below only bind the
// columns the common result shape needs; unmatched report columns are
// ignored, and report cells left empty parse as zero.

// setTabReader switches gocsv to tab-separated input. The desktop
// application and cudaGSEA write tab-separated reports (the desktop
// files carried an .xls extension in releases before 4.1).
func setTabReader() {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		reader := csv.NewReader(in)
		reader.Comma = '\t'
		reader.LazyQuotes = true
		return reader
	})
}

func setCommaReader() {
	gocsv.SetCSVReader(gocsv.DefaultCSVReader)
}

type desktopRow struct {
	Name        string  `csv:"NAME"`
	Size        int     `csv:"SIZE"`
	ES          float64 `csv:"ES"`
	NES         float64 `csv:"NES"`
	NominalP    float64 `csv:"NOM p-val"`
	FDR         float64 `csv:"FDR q-val"`
	FWERP       float64 `csv:"FWER p-val"`
	LeadingEdge string  `csv:"LEADING EDGE"`
}

// parseDesktopReport parses one gsea_report_for_<phenotype> file of
// the desktop application.
func parseDesktopReport(filename string) ([]*Result, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	setTabReader()
	var rows []*desktopRow
	if err := gocsv.UnmarshalBytes(contents, &rows); err != nil {
		return nil, err
	}
	results := make([]*Result, len(rows))
	for i, row := range rows {
		results[i] = &Result{
			Name:        row.Name,
			Size:        row.Size,
			ES:          row.ES,
			NES:         row.NES,
			NominalP:    row.NominalP,
			FDR:         row.FDR,
			FWERP:       row.FWERP,
			LeadingEdge: row.LeadingEdge,
		}
	}
	return results, nil
}

type gseapyRow struct {
	Term        string  `csv:"Term"`
	ES          float64 `csv:"es"`
	NES         float64 `csv:"nes"`
	NominalP    float64 `csv:"pval"`
	FDR         float64 `csv:"fdr"`
	Size        int     `csv:"geneset_size"`
	Matched     int     `csv:"matched_size"`
	LeadingEdge string  `csv:"ledge_genes"`
}

// parseGSEApyReport parses the gseapy.gsea.<permutation type>.report.csv
// file GSEApy writes. GSEApy does not compute family-wise error rates,
// so FWERP stays zero.
func parseGSEApyReport(filename string) ([]*Result, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	setCommaReader()
	var rows []*gseapyRow
	if err := gocsv.UnmarshalBytes(contents, &rows); err != nil {
		return nil, err
	}
	results := make([]*Result, len(rows))
	for i, row := range rows {
		size := row.Matched
		if size == 0 {
			size = row.Size
		}
		results[i] = &Result{
			Name:        row.Term,
			Size:        size,
			ES:          row.ES,
			NES:         row.NES,
			NominalP:    row.NominalP,
			FDR:         row.FDR,
			LeadingEdge: row.LeadingEdge,
		}
	}
	return results, nil
}

type cudaRow struct {
	Name     string  `csv:"NAME"`
	Size     int     `csv:"SIZE"`
	ES       float64 `csv:"ES"`
	NES      float64 `csv:"NES"`
	NominalP float64 `csv:"NP"`
	FDR      float64 `csv:"FDR"`
	FWERP    float64 `csv:"FWER"`
}

// parseCudaReport parses the statistics table cudaGSEA dumps. The
// binary reports no leading edge subsets.
func parseCudaReport(filename string) ([]*Result, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	setTabReader()
	var rows []*cudaRow
	if err := gocsv.UnmarshalBytes(contents, &rows); err != nil {
		return nil, err
	}
	results := make([]*Result, len(rows))
	for i, row := range rows {
		results[i] = &Result{
			Name:     row.Name,
			Size:     row.Size,
			ES:       row.ES,
			NES:      row.NES,
			NominalP: row.NominalP,
			FDR:      row.FDR,
			FWERP:    row.FWERP,
		}
	}
	return results, nil
}

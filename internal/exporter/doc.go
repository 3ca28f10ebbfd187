// Package exporter writes the derived tables of a render to disk for the
// rendering layer.
//
// This package contains three writers:
//
// CSVWriter: one CSV file per table, with an optional UTF-8 BOM for Excel
// compatibility.
//
// WorkbookWriter: a single .xlsx workbook holding one sheet per table.
//
// JSONWriter: the whole Dataset as one JSON document.
//
// Example usage:
//
//	tables := exporter.Tables(ds)
//	files, err := exporter.NewCSVWriter("out").ExportTables(tables)
//	err = exporter.NewWorkbookWriter("out/crvx.xlsx").Export(tables)
//	err = exporter.NewJSONWriter("out/dataset.json").Export(ds)
package exporter

// Package report renders the artifact set of a pipeline run: static PNG
// charts via gonum/plot, an interactive HTML chart page via go-echarts, a
// bilingual PDF report with shaped Arabic text, an XLSX evaluation
// workbook, and the held-out predictions CSV.
//
// Chart rendering fans out over a bounded worker group; every artifact is
// date-stamped, so runs on different days never overwrite each other.
package report

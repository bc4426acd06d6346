// Package exporter writes CSV artifacts: cleaned dataset exports and
// prediction files. All exports are UTF-8 with a BOM prefix so Excel opens
// them correctly, and numeric values use round-trip formatting so a
// re-loaded export carries the exact original values.
package exporter

package dataset

import (
	"fmt"
	"strings"

	apierrors "wellpulse/internal/errors"
)

// Canonical column names for the production dataset. Raw file headers are
// normalized and aliased to these before any other component sees the table.
const (
	ColDate             = "date"
	ColFieldName        = "field_name"
	ColWellID           = "well_id"
	ColStatus           = "status"
	ColOilProduction    = "oil_production_bbl"
	ColGasProduction    = "gas_production_mcf"
	ColWaterProduction  = "water_production_bbl"
	ColWellheadPressure = "wellhead_pressure_psi"
	ColTubingPressure   = "tubing_pressure_psi"
	ColChokeSize        = "choke_size_in"
	ColPumpEfficiency   = "pump_efficiency_pct"
)

// TargetColumn is the column the regression model predicts.
const TargetColumn = ColOilProduction

// RequiredColumns must be present in every raw input file.
var RequiredColumns = []string{
	ColDate,
	ColFieldName,
	ColOilProduction,
	ColWellheadPressure,
	ColChokeSize,
	ColPumpEfficiency,
}

// NumericColumns lists the canonical numeric columns in modeling order.
var NumericColumns = []string{
	ColOilProduction,
	ColGasProduction,
	ColWaterProduction,
	ColWellheadPressure,
	ColTubingPressure,
	ColChokeSize,
	ColPumpEfficiency,
}

// CategoricalColumns lists the canonical categorical columns.
var CategoricalColumns = []string{
	ColFieldName,
	ColWellID,
	ColStatus,
}

// headerAliases maps normalized raw headers to canonical names. Applied
// after NormalizeHeader, so keys are already snake_case.
var headerAliases = map[string]string{
	"timestamp":               ColDate,
	"production_date":         ColDate,
	"record_date":             ColDate,
	"field":                   ColFieldName,
	"oil_field":               ColFieldName,
	"well":                    ColWellID,
	"well_name":               ColWellID,
	"well_status":             ColStatus,
	"oil_production":          ColOilProduction,
	"oil_production_bbl_d":    ColOilProduction,
	"oil_rate_bbl":            ColOilProduction,
	"gas_production":          ColGasProduction,
	"gas_production_mcf_d":    ColGasProduction,
	"water_production":        ColWaterProduction,
	"water_production_bbl_d":  ColWaterProduction,
	"water_cut_bbl":           ColWaterProduction,
	"wellhead_pressure":       ColWellheadPressure,
	"whp_psi":                 ColWellheadPressure,
	"tubing_pressure":         ColTubingPressure,
	"thp_psi":                 ColTubingPressure,
	"choke_size":              ColChokeSize,
	"choke_size_inches":       ColChokeSize,
	"choke_in":                ColChokeSize,
	"pump_efficiency":         ColPumpEfficiency,
	"pump_efficiency_percent": ColPumpEfficiency,
	"pump_eff_pct":            ColPumpEfficiency,
}

// NormalizeHeader lower-cases a raw header and collapses every run of
// non-alphanumeric characters into a single underscore.
// "Oil Production (bbl)" becomes "oil_production_bbl".
func NormalizeHeader(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// CanonicalHeader normalizes a raw header and resolves known aliases.
// Unknown headers keep their normalized form.
func CanonicalHeader(raw string) string {
	normalized := NormalizeHeader(raw)
	if canonical, ok := headerAliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// CheckRequired verifies that every required column is present.
func CheckRequired(t Table) error {
	var missing []string
	for _, col := range RequiredColumns {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return apierrors.NewDataFormatError(
			fmt.Sprintf("required columns missing: %s", strings.Join(missing, ", ")), nil).
			WithContext("missing_columns", missing)
	}
	return nil
}

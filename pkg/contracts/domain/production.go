package domain

import (
	"time"
)

// WellStatus describes the operational state of a well.
type WellStatus string

const (
	WellStatusActive      WellStatus = "Active"
	WellStatusShutIn      WellStatus = "Shut-in"
	WellStatusMaintenance WellStatus = "Maintenance"
	WellStatusAbandoned   WellStatus = "Abandoned"
)

// ProductionRecord represents one measured day for a well.
// Numeric fields use NaN to represent a missing measurement before cleaning.
type ProductionRecord struct {
	Date              time.Time  `json:"date" validate:"required"`
	FieldName         string     `json:"field_name" validate:"required,min=1,max=100"`
	WellID            string     `json:"well_id,omitempty"`
	Status            WellStatus `json:"status,omitempty"`
	OilProductionBbl  float64    `json:"oil_production_bbl"`
	GasProductionMcf  float64    `json:"gas_production_mcf"`
	WaterProductionBbl float64   `json:"water_production_bbl"`
	WellheadPressurePsi float64  `json:"wellhead_pressure_psi"`
	TubingPressurePsi float64    `json:"tubing_pressure_psi"`
	ChokeSizeIn       float64    `json:"choke_size_in"`
	PumpEfficiencyPct float64    `json:"pump_efficiency_pct"`
}

// ProductionFilter narrows a dataset to a field and/or date range.
// A zero From/To leaves that side of the range open; both bounds inclusive.
type ProductionFilter struct {
	Field string    `json:"field,omitempty" validate:"omitempty,max=100"`
	From  time.Time `json:"from,omitempty"`
	To    time.Time `json:"to,omitempty" validate:"omitempty,gtefield=From"`
}

// IsZero reports whether the filter selects the whole dataset.
func (f ProductionFilter) IsZero() bool {
	return f.Field == "" && f.From.IsZero() && f.To.IsZero()
}

// KPISummary holds the headline numbers for a (filtered) dataset slice.
type KPISummary struct {
	TotalOilBbl    float64 `json:"total_oil_bbl"`
	AvgDailyOilBbl float64 `json:"avg_daily_oil_bbl"`
	ActiveWells    int     `json:"active_wells"`
	RecordCount    int     `json:"record_count"`
	FieldCount     int     `json:"field_count"`
	DateFrom       string  `json:"date_from,omitempty"`
	DateTo         string  `json:"date_to,omitempty"`
}

// Insight is one automatically derived observation about the dataset.
type Insight struct {
	Label   string  `json:"label"`
	LabelAr string  `json:"label_ar,omitempty"`
	Value   string  `json:"value"`
	Score   float64 `json:"score,omitempty"`
}

// TimeSeriesPoint is one aggregated point of the production time series.
type TimeSeriesPoint struct {
	Date   string  `json:"date"`
	OilBbl float64 `json:"oil_bbl"`
}

// DatasetInfo describes the cleaned dataset backing the dashboard.
type DatasetInfo struct {
	Path      string    `json:"path"`
	Rows      int       `json:"rows"`
	Columns   []string  `json:"columns"`
	Fields    []string  `json:"fields"`
	LoadedAt  time.Time `json:"loaded_at"`
	DataFrom  string    `json:"data_from,omitempty"`
	DataTo    string    `json:"data_to,omitempty"`
}

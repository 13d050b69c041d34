package control

// Frequency is the cadence class of a control point.
type Frequency string

const (
	FrequencyWeekly     Frequency = "weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySixMonthly Frequency = "six_monthly"
	FrequencyYearly     Frequency = "yearly"
)

// IntervalUnit is the calendar unit a frequency steps over.
type IntervalUnit string

const (
	UnitWeek  IntervalUnit = "week"
	UnitMonth IntervalUnit = "month"
)

// FrequencyConfig describes one catalog entry: how many periods a year
// holds, how wide one period is, and the calendar-offset fallback used
// when a scope's settings leave the offset unset.
type FrequencyConfig struct {
	Interval       int
	Unit           IntervalUnit
	PeriodsPerYear int
	Label          string
	DefaultOffset  int // weekday for weekly, day-of-month for monthly, start month otherwise
}

// Frequencies is the fixed frequency catalog. Lookup never fails for a
// validated control point; an unknown key is a configuration error caught
// by ControlPoint.Validate, not by the date calculator.
var Frequencies = map[Frequency]FrequencyConfig{
	FrequencyWeekly:     {Interval: 1, Unit: UnitWeek, PeriodsPerYear: 52, Label: "Weekly", DefaultOffset: 1},
	FrequencyMonthly:    {Interval: 1, Unit: UnitMonth, PeriodsPerYear: 12, Label: "Monthly", DefaultOffset: 1},
	FrequencyQuarterly:  {Interval: 3, Unit: UnitMonth, PeriodsPerYear: 4, Label: "Quarterly", DefaultOffset: 1},
	FrequencySixMonthly: {Interval: 6, Unit: UnitMonth, PeriodsPerYear: 2, Label: "6 Months", DefaultOffset: 1},
	FrequencyYearly:     {Interval: 12, Unit: UnitMonth, PeriodsPerYear: 1, Label: "Yearly", DefaultOffset: 1},
}

// FrequencyKeys lists the valid catalog keys in cadence order.
func FrequencyKeys() []Frequency {
	return []Frequency{
		FrequencyWeekly,
		FrequencyMonthly,
		FrequencyQuarterly,
		FrequencySixMonthly,
		FrequencyYearly,
	}
}

// IsValid reports whether f is a catalog key.
func (f Frequency) IsValid() bool {
	_, ok := Frequencies[f]
	return ok
}

// Config returns the catalog entry for f and whether it exists.
func (f Frequency) Config() (FrequencyConfig, bool) {
	cfg, ok := Frequencies[f]
	return cfg, ok
}

// PeriodsPerYear returns the number of periods a year holds for f.
// Unknown frequencies fall back to 12, mirroring the defensive default
// of the date calculator.
func (f Frequency) PeriodsPerYear() int {
	if cfg, ok := Frequencies[f]; ok {
		return cfg.PeriodsPerYear
	}
	return 12
}

// Label returns the human-readable cadence label.
func (f Frequency) Label() string {
	if cfg, ok := Frequencies[f]; ok {
		return cfg.Label
	}
	return string(f)
}

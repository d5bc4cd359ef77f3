package covid

import (
	"time"
)

// HistoricalPoint is one calendar date's global cumulative counts as reported
// by the source. The fetch layer materializes these from the API's date-keyed
// maps; Transform does not assume they arrive sorted or that the counters
// never decrease.
type HistoricalPoint struct {
	Date   time.Time
	Cases  int64
	Deaths int64
}

// CountryEntry is one country's static snapshot from the countries endpoint.
// Population is nullable in the source feed; entries without it contribute
// nothing to the population total.
type CountryEntry struct {
	Country    string `json:"country"`
	Population *int64 `json:"population"`
}

// EnrichedRecord is one output row, one per calendar date, in ascending date
// order. Derived metrics are pointers: nil means the value is undefined for
// that row (first-row deltas, zero-denominator growth rate, short
// moving-average windows, zero total population), as opposed to computed as
// zero.
type EnrichedRecord struct {
	Date             time.Time `parquet:"date,timestamp(millisecond)" json:"date"`
	Cases            int64     `parquet:"cases" json:"cases"`
	Deaths           int64     `parquet:"deaths" json:"deaths"`
	NewCases         *float64  `parquet:"new_cases,optional" json:"new_cases"`
	NewDeaths        *float64  `parquet:"new_deaths,optional" json:"new_deaths"`
	GrowthRate       *float64  `parquet:"growth_rate,optional" json:"growth_rate"`
	CasesMA7         *float64  `parquet:"cases_ma7,optional" json:"cases_ma7"`
	DeathsMA7        *float64  `parquet:"deaths_ma7,optional" json:"deaths_ma7"`
	CasesPerMillion  *float64  `parquet:"cases_per_million,optional" json:"cases_per_million"`
	DeathsPerMillion *float64  `parquet:"deaths_per_million,optional" json:"deaths_per_million"`
}

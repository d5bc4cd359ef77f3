package covid

import (
	"sort"
)

// maWindow is the trailing window size for the smoothed daily metrics.
const maWindow = 7

// Transform derives the enriched daily table from raw cumulative counts and
// the per-country snapshot. The history is sorted by date once up front, the
// reported populations are summed, and a single walk over the ordered rows
// computes the deltas, growth rate, and moving averages while the per-capita
// columns are filled independently.
//
// The per-capita denominator is the sum of populations the countries endpoint
// reports at run time, matching the published dataset. It drifts if the
// source's country list changes between runs; that is the documented behavior
// of the feed, not something this function corrects.
//
// Empty input yields an empty table, not an error.
func Transform(historical []HistoricalPoint, countries []CountryEntry) []EnrichedRecord {
	points := make([]HistoricalPoint, len(historical))
	copy(points, historical)
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	totalPopulation := TotalPopulation(countries)

	var (
		caseDeltas  []float64
		deathDeltas []float64
	)

	records := make([]EnrichedRecord, 0, len(points))
	for i, p := range points {
		rec := EnrichedRecord{
			Date:   p.Date,
			Cases:  p.Cases,
			Deaths: p.Deaths,
		}

		if i > 0 {
			prev := points[i-1]

			// Deltas are exact: computed in int64, converted once.
			newCases := float64(p.Cases - prev.Cases)
			newDeaths := float64(p.Deaths - prev.Deaths)
			rec.NewCases = &newCases
			rec.NewDeaths = &newDeaths

			if prev.Cases != 0 {
				growth := newCases / float64(prev.Cases) * 100
				rec.GrowthRate = &growth
			}

			caseDeltas = append(caseDeltas, newCases)
			deathDeltas = append(deathDeltas, newDeaths)
			if len(caseDeltas) > maWindow {
				caseDeltas = caseDeltas[1:]
				deathDeltas = deathDeltas[1:]
			}

			// The window must hold 7 actual deltas. Row 0 has none, so the
			// averages first become defined at index 7.
			if len(caseDeltas) == maWindow {
				rec.CasesMA7 = mean(caseDeltas)
				rec.DeathsMA7 = mean(deathDeltas)
			}
		}

		if totalPopulation > 0 {
			cpm := float64(p.Cases) / float64(totalPopulation) * 1_000_000
			dpm := float64(p.Deaths) / float64(totalPopulation) * 1_000_000
			rec.CasesPerMillion = &cpm
			rec.DeathsPerMillion = &dpm
		}

		records = append(records, rec)
	}

	return records
}

// TotalPopulation sums the reported populations across the country snapshot.
// Countries without a reported population are skipped.
func TotalPopulation(countries []CountryEntry) int64 {
	var total int64
	for _, c := range countries {
		if c.Population != nil {
			total += *c.Population
		}
	}
	return total
}

func mean(vals []float64) *float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

package searchContext

import (
	"github.com/FACorreiaa/go-family-activity-search/internal/api/holidays"
	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// BuildContext merges the user request with every gatherer output into the
// single immutable Context sent to the recommendation backend. Pure function:
// no I/O, and identical inputs always produce an identical Context, which is
// what makes invoker retries idempotent with respect to the request payload.
func BuildContext(req types.SearchRequest, loc types.ResolvedLocation, weather types.WeatherSnapshot, holidayResult holidays.Result, festivals []types.FestivalFact) types.Context {
	ages := make([]int, len(req.ChildAges))
	copy(ages, req.ChildAges)

	var holidayFacts []types.HolidayFact
	if len(holidayResult.Holidays) > 0 {
		holidayFacts = make([]types.HolidayFact, len(holidayResult.Holidays))
		copy(holidayFacts, holidayResult.Holidays)
	}

	// Festivals come from both the festival gatherer and the holiday chain's
	// knowledge-graph/AI stages; the dedicated gatherer's output leads.
	var festivalFacts []types.FestivalFact
	if total := len(festivals) + len(holidayResult.Festivals); total > 0 {
		festivalFacts = make([]types.FestivalFact, 0, total)
		festivalFacts = append(festivalFacts, festivals...)
		for _, f := range holidayResult.Festivals {
			if !containsFestival(festivalFacts, f.Name) {
				festivalFacts = append(festivalFacts, f)
			}
		}
	}

	return types.Context{
		Location:        loc.Label(),
		Date:            req.Date,
		DurationHrs:     req.DurationHrs,
		ChildAges:       ages,
		Weather:         weather,
		IsPublicHoliday: holidayResult.IsPublicHoliday,
		Holidays:        holidayFacts,
		Festivals:       festivalFacts,
		Instructions:    req.Instructions,
	}
}

func containsFestival(facts []types.FestivalFact, name string) bool {
	for _, f := range facts {
		if f.Name == name {
			return true
		}
	}
	return false
}

package holidays

import (
	"strings"

	"github.com/FACorreiaa/go-family-activity-search/internal/types"
)

// holidayKeywords is the fixed, English-only keyword list separating public
// holidays from festivals in AI-discovered event names. Behavior for
// non-English names is undefined; such events classify as festivals.
var holidayKeywords = []string{
	"christmas",
	"easter",
	"new year",
	"independence day",
	"thanksgiving",
	"national day",
	"labor day",
	"labour day",
	"memorial day",
	"constitution day",
	"republic day",
	"liberation day",
	"unity day",
	"saint",
	"holy",
	"eid",
	"ramadan",
	"hanukkah",
	"passover",
	"diwali",
	"assumption",
	"all saints",
	"epiphany",
	"whit",
	"pentecost",
	"ascension",
	"boxing day",
	"bank holiday",
	"public holiday",
}

// ClassifiedEvents partitions AI-discovered events.
type ClassifiedEvents struct {
	Holidays  []types.HolidayFact
	Festivals []types.FestivalFact
}

// ClassifyEvents splits discovered events into holidays and festivals.
// An event is a holiday when its name matches the keyword list and its date
// equals the target date; everything else is a festival.
func ClassifyEvents(events []DiscoveredEvent, targetDate string) ClassifiedEvents {
	var out ClassifiedEvents
	for _, ev := range events {
		if ev.Name == "" {
			continue
		}
		if matchesHolidayKeyword(ev.Name) && ev.Date == targetDate {
			out.Holidays = append(out.Holidays, types.HolidayFact{
				Name:      ev.Name,
				LocalName: ev.Name,
				Date:      ev.Date,
			})
			continue
		}
		out.Festivals = append(out.Festivals, types.FestivalFact{
			Name:      ev.Name,
			URL:       ev.URL,
			StartDate: ev.Date,
		})
	}
	return out
}

func matchesHolidayKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range holidayKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

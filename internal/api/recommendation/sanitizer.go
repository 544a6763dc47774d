package recommendation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// numericFields and booleanFields limit type coercion to fields where a
// string-typed value is definitely model noise and not content.
var numericFields = map[string]struct{}{
	"duration_hours": {},
	"latitude":       {},
	"longitude":      {},
}

var booleanFields = map[string]struct{}{
	"free": {},
}

var enumFields = map[string]struct{}{
	"category":    {},
	"weather_fit": {},
}

// sanitizeActivities is the first validation tier: parse string-typed entries
// as JSON, strip markdown noise from free text, lowercase the enumerations,
// and coerce numeric/boolean strings on the known fields.
func sanitizeActivities(raw []any) []map[string]any {
	out := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		switch v := entry.(type) {
		case map[string]any:
			out = append(out, sanitizeActivity(v))
		case string:
			var parsed map[string]any
			if err := json.Unmarshal([]byte(stripWrapping(v)), &parsed); err == nil {
				out = append(out, sanitizeActivity(parsed))
			}
			// Unparsable string entries are dropped here; the repair tier
			// cannot make an activity out of free prose.
		}
	}
	return out
}

func sanitizeActivity(activity map[string]any) map[string]any {
	clean := make(map[string]any, len(activity))
	for key, value := range activity {
		str, isString := value.(string)
		if !isString {
			clean[key] = value
			continue
		}
		str = stripWrapping(str)

		if _, ok := enumFields[key]; ok {
			clean[key] = strings.ToLower(str)
			continue
		}
		if _, ok := numericFields[key]; ok {
			if num, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
				clean[key] = num
				continue
			}
		}
		if _, ok := booleanFields[key]; ok {
			switch strings.ToLower(strings.TrimSpace(str)) {
			case "true", "yes":
				clean[key] = true
				continue
			case "false", "no":
				clean[key] = false
				continue
			}
		}
		clean[key] = str
	}
	return clean
}

// stripWrapping removes wrapping quotes and markdown markers the model tends
// to leave around free-text fields.
func stripWrapping(s string) string {
	s = strings.TrimSpace(s)
	for _, marker := range []string{"```json", "```"} {
		s = strings.TrimPrefix(s, marker)
		s = strings.TrimSuffix(s, marker)
	}
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') || (first == '*' && last == '*') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// repairActivities forces each activity to satisfy the minimum-viability
// rules and drops the ones that still lack a title or description.
func repairActivities(sanitized []map[string]any) []map[string]any {
	repaired := make([]map[string]any, 0, len(sanitized))
	for _, activity := range sanitized {
		title := stringField(activity, "title")
		description := stringField(activity, "description")

		if title == "" && description != "" {
			title = synthesizeTitle(description)
		}
		if description == "" && title != "" {
			description = fmt.Sprintf("%s (no further details were provided).", title)
		}
		if title == "" || description == "" {
			continue
		}

		fixed := make(map[string]any, len(activity))
		for k, v := range activity {
			fixed[k] = v
		}
		fixed["title"] = title
		fixed["description"] = description
		if stringField(fixed, "suitable_ages") == "" {
			fixed["suitable_ages"] = defaultSuitableAges
		}
		if _, ok := fixed["duration_hours"].(float64); !ok {
			fixed["duration_hours"] = defaultDurationHrs
		}
		if stringField(fixed, "category") == "" {
			fixed["category"] = "other"
		}
		if stringField(fixed, "weather_fit") == "" {
			fixed["weather_fit"] = "ok"
		}
		// Non-string junk in free-text fields would fail the schema re-check.
		for _, key := range []string{"address", "booking_url", "notes"} {
			if v, present := fixed[key]; present {
				if _, isString := v.(string); !isString {
					delete(fixed, key)
				}
			}
		}
		repaired = append(repaired, fixed)
	}
	return repaired
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// synthesizeTitle builds a short placeholder title from the first words of
// the description.
func synthesizeTitle(description string) string {
	words := strings.Fields(description)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.TrimRight(strings.Join(words, " "), ".,;:") + "…"
}

package library

import (
	"strconv"
	"strings"
)

// Rule operators. Anything else never matches.
const (
	OpEquals   = "equals"
	OpContains = "contains"
	OpGreater  = "greater"
	OpLess     = "less"
)

// EvaluateRules reports whether item satisfies every rule in the set.
// An empty rule set matches everything, mirroring an all-of predicate over
// zero clauses. Evaluation short-circuits on the first failing rule.
func EvaluateRules(item Content, rules []SmartRule) bool {
	for _, rule := range rules {
		if !matchRule(item, rule) {
			return false
		}
	}
	return true
}

// matchRule dispatches on operator, then on field. Fields are read with
// their natural type: list fields (genre) match per element, numeric
// comparisons only apply to fields with a numeric reading. Unknown fields,
// unknown operators and numeric operators on non-numeric fields all fail
// the match rather than erroring; a malformed rule just never selects
// anything.
func matchRule(item Content, rule SmartRule) bool {
	switch rule.Operator {
	case OpEquals:
		if list, ok := listField(item, rule.Field); ok {
			for _, v := range list {
				if v == rule.Value {
					return true
				}
			}
			return false
		}
		s, ok := stringField(item, rule.Field)
		return ok && s == rule.Value

	case OpContains:
		needle := strings.ToLower(rule.Value)
		if list, ok := listField(item, rule.Field); ok {
			for _, v := range list {
				if strings.Contains(strings.ToLower(v), needle) {
					return true
				}
			}
			return false
		}
		s, ok := stringField(item, rule.Field)
		return ok && strings.Contains(strings.ToLower(s), needle)

	case OpGreater, OpLess:
		fieldVal, ok := numericField(item, rule.Field)
		if !ok {
			return false
		}
		ruleVal, err := strconv.ParseFloat(strings.TrimSpace(rule.Value), 64)
		if err != nil {
			return false
		}
		if rule.Operator == OpGreater {
			return fieldVal > ruleVal
		}
		return fieldVal < ruleVal
	}
	return false
}

// stringField returns the natural string form of a scalar field.
// Booleans read as "true"/"false"; an unrated item's rating reads as the
// empty string so that equals/contains against nil cannot panic and only
// an empty rule value matches it.
func stringField(item Content, field string) (string, bool) {
	switch field {
	case "title":
		return item.Title, true
	case "type":
		return item.Type, true
	case "platform":
		return item.Platform, true
	case "releaseDate":
		return item.ReleaseDate, true
	case "host":
		return item.Host, true
	case "duration":
		return item.Duration, true
	case "youtubeId":
		return item.YouTubeID, true
	case "watched":
		return strconv.FormatBool(item.Watched), true
	case "rating":
		if item.Rating == nil {
			return "", true
		}
		return strconv.Itoa(*item.Rating), true
	case "tmdbRating":
		return strconv.FormatFloat(item.TMDBRating, 'f', -1, 64), true
	case "episodeCount":
		return strconv.Itoa(item.EpisodeCount), true
	}
	return "", false
}

func listField(item Content, field string) ([]string, bool) {
	if field == "genre" {
		return item.Genre, true
	}
	return nil, false
}

func numericField(item Content, field string) (float64, bool) {
	switch field {
	case "rating":
		if item.Rating == nil {
			return 0, false
		}
		return float64(*item.Rating), true
	case "tmdbRating":
		return item.TMDBRating, true
	case "episodeCount":
		return float64(item.EpisodeCount), true
	}
	return 0, false
}

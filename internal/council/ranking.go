// internal/council/ranking.go
package council

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// rankingLinePattern matches one entry of a model's final ranking list,
// e.g. "1. Response B" or "2) Response A".
var rankingLinePattern = regexp.MustCompile(`(?m)^\s*\d+[.)]\s*(Response [A-Z])\s*$`)

// rankingMarker separates a model's free-form evaluation from the ordered
// list the parser consumes.
const rankingMarker = "FINAL RANKING:"

// AssignLabels maps anonymized labels ("Response A", "Response B", ...) to
// the models behind the phase-1 responses, in response order. The labels
// hide model identities from the rankers; the returned mapping is what the
// UI later uses to resolve them back for display.
func AssignLabels(responses []Stage1Response) map[string]string {
	labels := make(map[string]string, len(responses))
	for i, r := range responses {
		labels[Label(i)] = r.Model
	}
	return labels
}

// Label returns the anonymized label for the response at index i.
func Label(i int) string {
	return fmt.Sprintf("Response %c", 'A'+i)
}

// ParseRanking extracts the ordered labels from a model's raw ranking text,
// best first. Text before the FINAL RANKING marker is ignored so models may
// reason freely above it. Returns nil if no ranking list is found.
func ParseRanking(text string) []string {
	section := text
	if idx := strings.LastIndex(text, rankingMarker); idx >= 0 {
		section = text[idx+len(rankingMarker):]
	}

	matches := rankingLinePattern.FindAllStringSubmatch(section, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	var order []string
	for _, m := range matches {
		label := m[1]
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		order = append(order, label)
	}
	return order
}

// Aggregate derives the cross-model ordering from the parsed rankings.
// Each model's ranking contributes positions 1..n; models are ordered by
// average position, best (lowest) first. Labels missing from the mapping
// are kept under their raw label so a malformed ranking still counts.
func Aggregate(rankings []Stage2Ranking, labelToModel map[string]string) []AggregateRanking {
	type tally struct {
		sum   float64
		count int
	}
	tallies := make(map[string]*tally)

	for _, r := range rankings {
		for pos, label := range r.ParsedRanking {
			name, ok := labelToModel[label]
			if !ok {
				name = label
			}
			t := tallies[name]
			if t == nil {
				t = &tally{}
				tallies[name] = t
			}
			t.sum += float64(pos + 1)
			t.count++
		}
	}

	agg := make([]AggregateRanking, 0, len(tallies))
	for name, t := range tallies {
		agg = append(agg, AggregateRanking{
			Model:         name,
			AverageRank:   t.sum / float64(t.count),
			RankingsCount: t.count,
		})
	}
	sort.Slice(agg, func(i, j int) bool {
		if agg[i].AverageRank != agg[j].AverageRank {
			return agg[i].AverageRank < agg[j].AverageRank
		}
		return agg[i].Model < agg[j].Model
	})
	return agg
}

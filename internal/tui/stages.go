// internal/tui/stages.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/councilchat/council/internal/council"
)

// markdownRenderer is the text-to-fragment collaborator consumed by the
// stage renderers. It must be a pure function of its input.
type markdownRenderer interface {
	Render(text string) string
}

var (
	stageTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	modelNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	loadingTextStyle  = lipgloss.NewStyle().Faint(true)
	aggregateStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	rankingEntryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// renderStage1 produces the independent-responses fragment. The three stage
// renderers share one contract: loading flag set yields a loading line,
// data present yields the rendered data, neither yields an empty fragment.
// Each renderer depends only on its own stage's inputs.
func renderStage1(responses []council.Stage1Response, loading bool, md markdownRenderer) string {
	if loading {
		return loadingTextStyle.Render("· consulting the council...")
	}
	if len(responses) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(stageTitleStyle.Render("Independent responses"))
	for _, r := range responses {
		b.WriteString("\n\n")
		b.WriteString(modelNameStyle.Render(r.Model))
		b.WriteString("\n")
		b.WriteString(md.Render(r.Response))
	}
	return b.String()
}

// renderStage2 produces the peer-ranking fragment. Ranking labels are
// resolved to model names through the label-to-model mapping; a label with
// no mapping renders literally rather than failing the fragment. The
// aggregate ordering renders as its own block, distinct from any single
// model's ranking.
func renderStage2(rankings []council.Stage2Ranking, meta *council.Metadata, loading bool) string {
	if loading {
		return loadingTextStyle.Render("· council is ranking responses...")
	}
	if len(rankings) == 0 {
		return ""
	}

	var labels map[string]string
	if meta != nil {
		labels = meta.LabelToModel
	}

	var b strings.Builder
	b.WriteString(stageTitleStyle.Render("Peer rankings"))
	for _, r := range rankings {
		b.WriteString("\n")
		b.WriteString(modelNameStyle.Render(r.Model))
		b.WriteString(" ranked: ")
		if len(r.ParsedRanking) == 0 {
			b.WriteString(rankingEntryStyle.Render("(no ranking given)"))
			continue
		}
		resolved := make([]string, len(r.ParsedRanking))
		for i, label := range r.ParsedRanking {
			name, ok := labels[label]
			if !ok {
				name = label
			}
			resolved[i] = name
		}
		b.WriteString(rankingEntryStyle.Render(strings.Join(resolved, " > ")))
	}

	if meta != nil && len(meta.AggregateRankings) > 0 {
		b.WriteString("\n\n")
		b.WriteString(stageTitleStyle.Render("Aggregate ranking"))
		for i, agg := range meta.AggregateRankings {
			b.WriteString("\n")
			b.WriteString(aggregateStyle.Render(fmt.Sprintf("%d. %s (avg rank %.2f across %d rankings)", i+1, agg.Model, agg.AverageRank, agg.RankingsCount)))
		}
	}
	return b.String()
}

// renderStage3 produces the final-synthesis fragment.
func renderStage3(final *council.Stage3Response, loading bool, md markdownRenderer) string {
	if loading {
		return loadingTextStyle.Render("· chairman is synthesizing...")
	}
	if final == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(stageTitleStyle.Render("Final answer"))
	b.WriteString(" ")
	b.WriteString(modelNameStyle.Render("(" + final.Model + ")"))
	b.WriteString("\n")
	b.WriteString(md.Render(final.Response))
	return b.String()
}

// internal/providers/openrouter/prompts.go
package openrouter

import (
	"fmt"
	"strings"

	"github.com/councilchat/council/internal/council"
)

// buildRankingPrompt assembles the anonymized ranking request sent to each
// council model in phase 2. Responses appear under their labels only, so
// rankers cannot play favorites.
func buildRankingPrompt(prompt string, responses []council.Stage1Response) string {
	var b strings.Builder
	b.WriteString("You are evaluating answers to the following question:\n\n")
	b.WriteString(prompt)
	b.WriteString("\n\nHere are the candidate answers from several anonymous models:\n\n")
	for i, r := range responses {
		fmt.Fprintf(&b, "%s:\n%s\n\n", council.Label(i), r.Response)
	}
	b.WriteString("Evaluate each answer for accuracy, depth, and clarity. ")
	b.WriteString("You may reason freely first. Then end your reply with exactly this format, best answer first:\n\n")
	b.WriteString("FINAL RANKING:\n")
	for i := range responses {
		fmt.Fprintf(&b, "%d. Response X\n", i+1)
	}
	b.WriteString("\nwhere each X is replaced by a response letter. Every response must appear exactly once.")
	return b.String()
}

// buildChairmanPrompt assembles the synthesis request for phase 3: the
// question, every labeled answer, and each ranker's verdict.
func buildChairmanPrompt(prompt string, responses []council.Stage1Response, rankings []council.Stage2Ranking, labels map[string]string) string {
	var b strings.Builder
	b.WriteString("You are the chairman of a council of AI models. The council was asked:\n\n")
	b.WriteString(prompt)
	b.WriteString("\n\nThe council produced these answers:\n\n")
	for i, r := range responses {
		fmt.Fprintf(&b, "%s (%s):\n%s\n\n", council.Label(i), r.Model, r.Response)
	}
	if len(rankings) > 0 {
		b.WriteString("The council then ranked the answers (anonymized):\n\n")
		for _, r := range rankings {
			if len(r.ParsedRanking) == 0 {
				continue
			}
			var resolved []string
			for _, label := range r.ParsedRanking {
				name, ok := labels[label]
				if !ok {
					name = label
				}
				resolved = append(resolved, name)
			}
			fmt.Fprintf(&b, "%s ranked: %s\n", r.Model, strings.Join(resolved, " > "))
		}
		b.WriteString("\n")
	}
	b.WriteString("Synthesize the best elements of these answers into one final, definitive response to the original question. ")
	b.WriteString("Do not mention the council, the rankings, or the individual models.")
	return b.String()
}

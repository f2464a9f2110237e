// Package extract converts free-form agent output into typed records.
// Every extractor is pure and tolerant: malformed text degrades to partial or
// empty structured output, never to an error. Callers must treat "no result"
// as a legitimate outcome.
package extract

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"coscientist/internal/memory"
)

// blockStart matches numbered block openers like "1. Title" or "2) Title".
var blockStart = regexp.MustCompile(`^\s*\d+[.)]\s+`)

// Hypotheses splits generation output into numbered blocks and returns one
// hypothesis per block. Blocks lacking both a title and a body are discarded.
func Hypotheses(text, researchGoal string) []memory.Hypothesis {
	var sections []string
	var current strings.Builder
	started := false

	for _, line := range strings.Split(text, "\n") {
		if blockStart.MatchString(line) {
			if started {
				sections = append(sections, current.String())
				current.Reset()
			}
			started = true
		}
		if started {
			current.WriteString(line)
			current.WriteString("\n")
		}
	}
	if started {
		sections = append(sections, current.String())
	}

	var out []memory.Hypothesis
	for _, section := range sections {
		lines := strings.SplitN(strings.TrimSpace(section), "\n", 2)
		title := blockTitle(lines[0])
		description := ""
		if len(lines) > 1 {
			description = strings.TrimSpace(lines[1])
		}
		if title == "" && description == "" {
			continue
		}
		out = append(out, memory.Hypothesis{
			ID:           uuid.NewString(),
			Title:        title,
			Description:  description,
			ResearchGoal: researchGoal,
			Source:       memory.StateGeneration,
		})
	}
	return out
}

// blockTitle strips the list marker and any leading "Title:" label from the
// first line of a block.
func blockTitle(line string) string {
	title := blockStart.ReplaceAllString(line, "")
	if i := strings.Index(title, ":"); i >= 0 {
		title = title[i+1:]
	}
	title = strings.TrimSpace(title)
	title = strings.Trim(title, "*")
	return strings.TrimSpace(title)
}

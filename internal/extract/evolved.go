package extract

import (
	"strings"

	"github.com/google/uuid"

	"coscientist/internal/memory"
)

// Evolved parses evolution output into child hypotheses. Records follow the
// field-marker format (Title/Parent/Evolution Strategy/Description/
// Improvements/Validation); a "Hypothesis N" header or a repeated Title marker
// starts a new record, and the parent id is read from a "(ID: ...)" tag.
// Records lacking a title or a description are dropped.
//
// A single pass over lines, not a split on "Hypothesis": the Parent line
// itself contains that token, so section splitting would cut every record
// in half.
func Evolved(text, researchGoal string) []memory.Hypothesis {
	var out []memory.Hypothesis
	var cur *memory.Hypothesis
	field := ""

	newRecord := func() *memory.Hypothesis {
		return &memory.Hypothesis{
			ID:           uuid.NewString(),
			ResearchGoal: researchGoal,
			Source:       memory.StateEvolution,
		}
	}
	flush := func() {
		if cur != nil && cur.Title != "" && cur.Description != "" {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "title:"):
			if cur == nil || cur.Title != "" {
				flush()
				cur = newRecord()
			}
			cur.Title = strings.TrimSpace(line[len("title:"):])
			field = ""
		case strings.HasPrefix(lower, "hypothesis "):
			flush()
			cur = newRecord()
			field = ""
		case cur == nil:
			// preamble before the first record
		case strings.HasPrefix(lower, "parent:"):
			field = ""
			cur.ParentID = parentID(line[len("parent:"):])
		case strings.HasPrefix(lower, "evolution strategy:"):
			field = ""
			for _, s := range strings.Split(line[len("evolution strategy:"):], ",") {
				if s = strings.TrimSpace(s); s != "" {
					cur.Strategies = append(cur.Strategies, s)
				}
			}
		case strings.HasPrefix(lower, "description:"):
			field = "description"
		case strings.HasPrefix(lower, "improvements:"):
			field = "improvements"
		case strings.HasPrefix(lower, "validation:"):
			field = "validation"
		default:
			switch field {
			case "description":
				if cur.Description != "" {
					cur.Description += "\n"
				}
				cur.Description += line
			case "improvements":
				if strings.HasPrefix(line, "-") {
					cur.Improvements = append(cur.Improvements, strings.TrimSpace(line[1:]))
				}
			case "validation":
				if cur.Validation != "" {
					cur.Validation += "\n"
				}
				cur.Validation += line
			}
		}
	}
	flush()
	return out
}

// parentID extracts a hypothesis id from text like "Hypothesis 1 (ID: abc-123)".
func parentID(s string) string {
	if i := strings.Index(s, "(ID:"); i >= 0 {
		rest := s[i+len("(ID:"):]
		if j := strings.Index(rest, ")"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return ""
}

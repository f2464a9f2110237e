package extract

import "testing"

const generationFixture = `Here are three hypotheses addressing the goal:

1. Photocatalytic Nitrogen Fixation
Use visible-light photocatalysts to drive ambient-condition nitrogen fixation.
This approach replaces the Haber-Bosch process with solar-driven chemistry.

2. Hypothesis: Enzyme-Mimetic Cascades
Engineer synthetic metalloenzyme cascades that mimic nitrogenase activity.

3. Plasma-Assisted Synthesis
Non-thermal plasma activates dinitrogen at low bulk temperatures.
`

func TestHypotheses_NumberedBlocks(t *testing.T) {
	got := Hypotheses(generationFixture, "ambient nitrogen fixation")
	if len(got) != 3 {
		t.Fatalf("expected 3 hypotheses, got %d: %+v", len(got), got)
	}

	if got[0].Title != "Photocatalytic Nitrogen Fixation" {
		t.Errorf("title 0: %q", got[0].Title)
	}
	if got[1].Title != "Enzyme-Mimetic Cascades" {
		t.Errorf("title 1 (label stripped): %q", got[1].Title)
	}
	if got[0].Description == "" {
		t.Error("description 0 empty")
	}
	for i, h := range got {
		if h.ID == "" {
			t.Errorf("hypothesis %d has no id", i)
		}
		if h.ResearchGoal != "ambient nitrogen fixation" {
			t.Errorf("hypothesis %d goal: %q", i, h.ResearchGoal)
		}
		if h.Source != "generation" {
			t.Errorf("hypothesis %d source: %q", i, h.Source)
		}
	}
}

func TestHypotheses_MalformedInput(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"no blocks", "I could not generate anything useful today.", 0},
		{"bare number", "1. ", 0},
		{"title only", "1. Lone Title With No Body", 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Hypotheses(c.text, "goal")
			if len(got) != c.want {
				t.Fatalf("got %d hypotheses: %+v", len(got), got)
			}
		})
	}
}

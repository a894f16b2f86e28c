package internal

import "testing"

func TestEvaluationGlobalScore(t *testing.T) {
	cases := []struct {
		name     string
		criteria EvaluationCriteria
		want     float64
	}{
		{name: "all fives", criteria: EvaluationCriteria{Cost: 5, Quality: 5, Deadlines: 5, Technical: 5, Management: 5, Innovation: 5}, want: 5},
		{name: "all zeroes", criteria: EvaluationCriteria{}, want: 0},
		{name: "mixed", criteria: EvaluationCriteria{Cost: 4, Quality: 5, Deadlines: 4, Technical: 5, Management: 3, Innovation: 2}, want: 4.15},
		{name: "cost dominates", criteria: EvaluationCriteria{Cost: 5}, want: 1.75},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.criteria.GlobalScore(); got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}

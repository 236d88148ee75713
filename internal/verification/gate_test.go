package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"previnet/internal/signable"
)

func intPtr(i int) *int { return &i }

func twoQuestionChallenge() *signable.Challenge {
	return &signable.Challenge{Questions: []signable.ChallengeQuestion{
		{
			ID:            "q1",
			Prompt:        "Which PPE is required at height?",
			Options:       []string{"Gloves", "Harness", "Goggles"},
			CorrectOption: 1,
		},
		{
			ID:             "q2",
			Prompt:         "Who do you report incidents to?",
			ExpectedAnswer: "Site supervisor",
		},
	}}
}

func TestGateValidate(t *testing.T) {
	gate := NewGate()

	t.Run("correct answers pass", func(t *testing.T) {
		ok := gate.Validate(twoQuestionChallenge(), map[string]signable.Answer{
			"q1": {Option: intPtr(1)},
			"q2": {Text: "site supervisor"},
		})
		assert.True(t, ok)
	})

	t.Run("free text is trimmed and case folded", func(t *testing.T) {
		ok := gate.Validate(twoQuestionChallenge(), map[string]signable.Answer{
			"q1": {Option: intPtr(1)},
			"q2": {Text: "  SITE Supervisor \n"},
		})
		assert.True(t, ok)
	})

	t.Run("wrong option fails", func(t *testing.T) {
		ok := gate.Validate(twoQuestionChallenge(), map[string]signable.Answer{
			"q1": {Option: intPtr(0)},
			"q2": {Text: "site supervisor"},
		})
		assert.False(t, ok)
	})

	t.Run("missing answer fails", func(t *testing.T) {
		ok := gate.Validate(twoQuestionChallenge(), map[string]signable.Answer{
			"q1": {Option: intPtr(1)},
		})
		assert.False(t, ok)
	})

	t.Run("nil option on multiple choice fails", func(t *testing.T) {
		ok := gate.Validate(twoQuestionChallenge(), map[string]signable.Answer{
			"q1": {Text: "Harness"},
			"q2": {Text: "site supervisor"},
		})
		assert.False(t, ok)
	})

	t.Run("no challenge always passes", func(t *testing.T) {
		assert.True(t, gate.Validate(nil, nil))
	})
}

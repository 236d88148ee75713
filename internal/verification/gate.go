// Package verification decides whether a worker may proceed to sign: the
// challenge answers must check out, and for records with an attachment the
// worker must have opened the file first.
package verification

import (
	"strings"

	"previnet/internal/signable"
)

// Gate evaluates challenge answers. It is stateless; attachment-view state
// lives in a ViewTracker.
type Gate struct{}

func NewGate() *Gate {
	return &Gate{}
}

// Validate reports whether the answers satisfy every question in the
// challenge. Multiple-choice questions match on the selected option index;
// free-text answers compare after trimming and lowercasing. A missing or
// half-empty answer fails the whole challenge.
func (g *Gate) Validate(challenge *signable.Challenge, answers map[string]signable.Answer) bool {
	if challenge == nil {
		return true
	}
	for _, q := range challenge.Questions {
		answer, ok := answers[q.ID]
		if !ok {
			return false
		}
		if len(q.Options) > 0 {
			if answer.Option == nil || *answer.Option != q.CorrectOption {
				return false
			}
			continue
		}
		if normalize(answer.Text) != normalize(q.ExpectedAnswer) {
			return false
		}
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

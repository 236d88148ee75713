package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	assert.Nil(t, DedupeAndTrim(nil))
	assert.Equal(t, []string{"w1", "w2"}, DedupeAndTrim([]string{" w1 ", "w2", "w1", "", "  "}))
	assert.Equal(t, []string{"a"}, DedupeAndTrim([]string{"a", "a", "a"}))
}

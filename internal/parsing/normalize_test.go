package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkill(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"golang", "Go"},
		{"js", "JavaScript"},
		{"k8s", "Kubernetes"},
		{"  python  ", "Python"},
		{"SQL", "SQL"},      // short all-caps stays an acronym
		{"PostgreSQL", "PostgreSQL"}, // mixed case preserved
		{"react", "React"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSkill(tt.in))
		})
	}
}

func TestNormalizeSkillSet_DedupesAndKeepsOrder(t *testing.T) {
	got := NormalizeSkillSet([]string{"golang", "Go", "js", "JavaScript", "", "  "})
	assert.Equal(t, []string{"Go", "JavaScript"}, got)
}

func TestNormalizeSkillSet_Empty(t *testing.T) {
	assert.Empty(t, NormalizeSkillSet(nil))
}

// Package parsing provides text normalization helpers for ingested career
// records: canonical skill names and HTML-to-text conversion.
package parsing

import "strings"

// skillAliases maps lowercase variants to a canonical display name. Ingested
// documents spell the same skill many ways; similarity scoring and skill
// updates both go through this table.
var skillAliases = map[string]string{
	"golang":              "Go",
	"go":                  "Go",
	"js":                  "JavaScript",
	"javascript":          "JavaScript",
	"ts":                  "TypeScript",
	"typescript":          "TypeScript",
	"node":                "Node.js",
	"nodejs":              "Node.js",
	"node.js":             "Node.js",
	"react":               "React",
	"reactjs":             "React",
	"react.js":            "React",
	"vue":                 "Vue.js",
	"vuejs":               "Vue.js",
	"vue.js":              "Vue.js",
	"py":                  "Python",
	"python":              "Python",
	"postgres":            "PostgreSQL",
	"postgresql":          "PostgreSQL",
	"psql":                "PostgreSQL",
	"k8s":                 "Kubernetes",
	"kubernetes":          "Kubernetes",
	"aws":                 "AWS",
	"amazon web services": "AWS",
	"gcp":                 "GCP",
	"google cloud":        "GCP",
	"ml":                  "Machine Learning",
	"machine learning":    "Machine Learning",
	"ci/cd":               "CI/CD",
	"cicd":                "CI/CD",
}

// NormalizeSkill returns the canonical form of a skill name. Unknown skills
// are trimmed and title-cased on the first letter when written in a single
// uniform case; mixed-case input is preserved as written.
func NormalizeSkill(skill string) string {
	trimmed := strings.TrimSpace(skill)
	if trimmed == "" {
		return ""
	}

	lower := strings.ToLower(trimmed)
	if canonical, ok := skillAliases[lower]; ok {
		return canonical
	}

	// Mixed case already carries intent (e.g. "OpenCV", "iOS").
	if trimmed != strings.ToUpper(trimmed) && trimmed != strings.ToLower(trimmed) {
		return trimmed
	}

	// Short all-caps names are treated as acronyms.
	if trimmed == strings.ToUpper(trimmed) && len(trimmed) <= 4 && !strings.Contains(trimmed, " ") {
		return trimmed
	}

	return strings.ToUpper(lower[:1]) + lower[1:]
}

// NormalizeSkillSet normalizes every skill and removes duplicates, keeping
// first-seen order. Empty entries are dropped.
func NormalizeSkillSet(skills []string) []string {
	normalized := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))

	for _, skill := range skills {
		n := NormalizeSkill(skill)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, n)
	}

	return normalized
}

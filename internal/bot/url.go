package bot

import (
	"regexp"
	"strings"
)

var postURLPattern = regexp.MustCompile(`^https?://(www\.)?(old\.)?reddit\.com/r/[\w-]+/comments/[\w-]+/.*`)

// ValidPostURL reports whether u looks like a Reddit thread URL
func ValidPostURL(u string) bool {
	return postURLPattern.MatchString(u)
}

// LegacyHost rewrites the first "www." in u to "old.". The legacy site renders
// a stable reply form that the reply flow depends on.
func LegacyHost(u string) string {
	return strings.Replace(u, "www.", "old.", 1)
}

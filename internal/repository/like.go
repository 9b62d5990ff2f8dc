package repository

import (
	"encoding/json"
	"strings"
)

// likeEscape is the escape character of every LIKE pattern built here. A
// backslash would need doubling in MySQL string literals.
const likeEscape = "!"

var likeReplacer = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// containsPattern matches s literally anywhere in a column. Use with "LIKE ? ESCAPE '!'".
func containsPattern(s string) string {
	return "%" + likeReplacer.Replace(s) + "%"
}

// jsonElementPattern matches tag as a string element of a JSON array column.
// The tag is encoded the way gorm's json serializer stored it.
func jsonElementPattern(tag string) string {
	b, _ := json.Marshal(tag)
	return containsPattern(string(b))
}

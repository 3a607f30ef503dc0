package utils

import "strings"

// JoinPath builds the display path of a folder from the names on its
// ancestry, root first: no names gives "/", and ["Projects", "2024"] gives
// "/Projects/2024". Slashes around a name are dropped and blank names are
// skipped.
func JoinPath(names ...string) string {
	var b strings.Builder
	for _, name := range names {
		name = strings.Trim(name, "/")
		if name == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(name)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

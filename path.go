package metify

import (
	"strconv"
	"strings"
)

// pointerJoin appends one reference token to a JSON Pointer. The empty string
// and "/" both denote the document root.
func pointerJoin(base, token string) string {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(token, "~", "~0"), "/", "~1")
	if base == "" || base == "/" {
		return "/" + esc
	}
	return base + "/" + esc
}

func pointerIndex(base string, i int) string { return pointerJoin(base, strconv.Itoa(i)) }

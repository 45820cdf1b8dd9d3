package metify

import (
	"reflect"
	"strings"
)

// structTag is the parsed form of a `metify:"..."` tag.
type structTag struct {
	name     string
	alias    string
	desc     string
	required bool
	noInit   bool
	noRepr   bool
}

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// field name in a derived schema.
// Priority: metify:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if t := parseStructTag(sf); t.name != "" {
		return t.name
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
			return sf.Name
		}
		return jt
	}
	return sf.Name
}

func parseStructTag(sf reflect.StructField) structTag {
	var t structTag
	mt := sf.Tag.Get("metify")
	if mt == "" {
		return t
	}
	if mt == "-" {
		t.name = "-"
		return t
	}
	for _, p := range strings.Split(mt, ",") {
		p = strings.TrimSpace(p)
		switch {
		case strings.HasPrefix(p, "name="):
			t.name = strings.TrimPrefix(p, "name=")
		case strings.HasPrefix(p, "alias="):
			t.alias = strings.TrimPrefix(p, "alias=")
		case strings.HasPrefix(p, "desc="):
			t.desc = strings.TrimPrefix(p, "desc=")
		case p == "required":
			t.required = true
		case p == "noinit":
			t.noInit = true
		case p == "norepr":
			t.noRepr = true
		}
	}
	return t
}

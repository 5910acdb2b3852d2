// README: Common identifier value object used across modules.
package types

type ID string

// Valid reports whether the id is 1-64 characters of [A-Za-z0-9_-], which keeps
// it safe to embed in storage keys.
func (id ID) Valid() bool {
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for _, c := range id {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '-' {
			continue
		}
		return false
	}
	return true
}

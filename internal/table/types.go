// types.go
package table

// RawConfig mirrors the YAML level table schema.
type RawConfig struct {
	Version  string            `yaml:"version"`
	Fallback *RawEntry         `yaml:"fallback,omitempty"`
	Levels   map[int]*RawEntry `yaml:"levels"`
	Notes    string            `yaml:"notes,omitempty"`
}

// RawEntry is one level row. Pointers distinguish "unset" from zero so an
// override file can change a single field.
type RawEntry struct {
	Chance     *float64         `yaml:"chance,omitempty"`
	Protection *int             `yaml:"protection,omitempty"`
	Price      map[string]int64 `yaml:"price,omitempty"` // "weapon" | "armor"
}

// Package modeldef builds candidate models from declarative YAML definitions.
package modeldef

// Definition is the top-level model file.
type Definition struct {
	Name    string      `koanf:"name"`
	Player  Player      `koanf:"player"`
	Presets []string    `koanf:"presets"`
	Groups  []GroupDef  `koanf:"groups"`
	Dialogs []DialogDef `koanf:"dialogs"`
}

// Player holds player-level bindings.
type Player struct {
	Name string `koanf:"name"`
	Sex  string `koanf:"sex"`
}

// Selector picks catalog keys by exact name or regular expression.
type Selector struct {
	Keys     []string `koanf:"keys"`
	Patterns []string `koanf:"patterns"`
}

// Empty reports whether the selector names nothing.
func (s Selector) Empty() bool { return len(s.Keys) == 0 && len(s.Patterns) == 0 }

// GroupDef is one (checker, spreading) pair.
type GroupDef struct {
	Name      string      `koanf:"name"`
	Keys      []string    `koanf:"keys"`
	Patterns  []string    `koanf:"patterns"`
	Deny      Selector    `koanf:"deny"`
	Spreading []SpreadDef `koanf:"spreading"`
}

// SpreadDef declares the candidates of one variable. Exactly one of Range,
// Ints, Values and Catalog must be set. Range is half-open: [lo, hi).
type SpreadDef struct {
	Var     string    `koanf:"var"`
	Range   []int     `koanf:"range"`
	Ints    []int     `koanf:"ints"`
	Values  []string  `koanf:"values"`
	Catalog *Selector `koanf:"catalog"`
}

// DialogDef maps dialog titles to the model of their bodies.
type DialogDef struct {
	Title  Selector   `koanf:"title"`
	Groups []GroupDef `koanf:"groups"`
}

package modeldef

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ErrEmptyDefinition is returned for a definition without groups or presets.
var ErrEmptyDefinition = errors.New("model definition selects nothing")

// Load reads a model definition from a YAML file.
func Load(path string) (*Definition, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load model file: %w", err)
	}

	var def Definition
	if err := k.Unmarshal("", &def); err != nil {
		return nil, fmt.Errorf("decode model file %s: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("model file %s: %w", path, err)
	}
	return &def, nil
}

// FromPresets builds a definition out of built-in presets alone.
func FromPresets(names ...string) (*Definition, error) {
	def := &Definition{Name: "presets", Presets: names}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Validate checks presets and spreads without needing a catalog.
func (d *Definition) Validate() error {
	if len(d.Groups) == 0 && len(d.Presets) == 0 && len(d.Dialogs) == 0 {
		return ErrEmptyDefinition
	}
	for _, name := range d.Presets {
		if _, err := Preset(name); err != nil {
			return err
		}
	}
	groups := d.modelGroups()
	for i, dlg := range d.Dialogs {
		if dlg.Title.Empty() {
			return fmt.Errorf("dialog %d: empty title selector", i)
		}
		groups = append(groups, dlg.Groups...)
	}
	for _, g := range groups {
		for _, sd := range g.Spreading {
			if err := sd.validate(); err != nil {
				return fmt.Errorf("group %q: %w", g.Name, err)
			}
		}
	}
	return nil
}

func (sd SpreadDef) validate() error {
	if sd.Var == "" {
		return errors.New("spread without var")
	}
	set := 0
	for _, present := range []bool{sd.Range != nil, sd.Ints != nil, sd.Values != nil, sd.Catalog != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("spread %q: exactly one of range, ints, values, catalog is required", sd.Var)
	}
	if sd.Range != nil && len(sd.Range) != 2 {
		return fmt.Errorf("spread %q: range needs [lo, hi]", sd.Var)
	}
	return nil
}

// modelGroups returns preset groups followed by the declared ones. Unknown
// presets are skipped; Validate reports them.
func (d *Definition) modelGroups() []GroupDef {
	var groups []GroupDef
	for _, name := range d.Presets {
		if g, err := Preset(name); err == nil {
			groups = append(groups, g)
		}
	}
	return append(groups, d.Groups...)
}

package modeldef

import (
	"fmt"
	"regexp"

	"lang-resolver/internal/lang"
)

// Options turns the player section into model options.
func (d *Definition) Options() ([]lang.ModelOption, error) {
	var opts []lang.ModelOption
	if d.Player.Name != "" {
		opts = append(opts, lang.WithPlayerName(d.Player.Name))
	}
	if d.Player.Sex != "" {
		sex, ok := lang.ParseSex(d.Player.Sex)
		if !ok {
			return nil, fmt.Errorf("player sex %q: %w", d.Player.Sex, lang.ErrInvalidSex)
		}
		opts = append(opts, lang.WithPlayerSex(sex))
	}
	return opts, nil
}

// CompileGroups compiles preset and declared groups against cat. Catalog
// spreads are resolved here, so the result is tied to cat's content.
func (d *Definition) CompileGroups(cat *lang.Catalog) ([]lang.Group, error) {
	return compileGroups(cat, d.modelGroups())
}

// Build compiles the definition into a model. extra options are applied
// after the definition's own player options.
func (d *Definition) Build(cat *lang.Catalog, extra ...lang.ModelOption) (*lang.Model, error) {
	groups, err := d.CompileGroups(cat)
	if err != nil {
		return nil, err
	}
	opts, err := d.Options()
	if err != nil {
		return nil, err
	}
	m, err := lang.NewModel(cat, groups, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("build model %q: %w", d.Name, err)
	}
	return m, nil
}

// DialogBodies builds one body model per dialog section.
func (d *Definition) DialogBodies(cat *lang.Catalog, extra ...lang.ModelOption) (*lang.DialogBodies, error) {
	opts, err := d.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)

	bodies := lang.NewDialogBodies()
	for i, dlg := range d.Dialogs {
		title, err := selectorChecker(dlg.Title)
		if err != nil {
			return nil, fmt.Errorf("dialog %d title: %w", i, err)
		}
		groups, err := compileGroups(cat, dlg.Groups)
		if err != nil {
			return nil, fmt.Errorf("dialog %d: %w", i, err)
		}
		body, err := lang.NewModel(cat, groups, opts...)
		if err != nil {
			return nil, fmt.Errorf("dialog %d: %w", i, err)
		}
		if err := bodies.Add(cat, title, body); err != nil {
			return nil, fmt.Errorf("dialog %d: %w", i, err)
		}
	}
	return bodies, nil
}

func compileGroups(cat *lang.Catalog, defs []GroupDef) ([]lang.Group, error) {
	groups := make([]lang.Group, 0, len(defs))
	for _, def := range defs {
		g, err := compileGroup(cat, def)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", def.Name, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func compileGroup(cat *lang.Catalog, def GroupDef) (lang.Group, error) {
	checker, err := selectorChecker(Selector{Keys: def.Keys, Patterns: def.Patterns})
	if err != nil {
		return lang.Group{}, err
	}
	if !def.Deny.Empty() {
		deny, err := selectorChecker(def.Deny)
		if err != nil {
			return lang.Group{}, fmt.Errorf("deny: %w", err)
		}
		checker = lang.Filter(checker, nil, &deny)
	}

	entries := make([]lang.SpreadEntry, 0, len(def.Spreading))
	for _, sd := range def.Spreading {
		if err := sd.validate(); err != nil {
			return lang.Group{}, err
		}
		s, err := spreadFor(cat, sd)
		if err != nil {
			return lang.Group{}, fmt.Errorf("spread %q: %w", sd.Var, err)
		}
		entries = append(entries, lang.SpreadEntry{Var: lang.NewVar(sd.Var), Spread: s})
	}

	return lang.Group{Name: def.Name, Checker: checker, Spreading: lang.NewSpreading(entries...)}, nil
}

func selectorChecker(s Selector) (lang.Checker, error) {
	members := make([]lang.Checker, 0, len(s.Keys)+len(s.Patterns))
	for _, k := range s.Keys {
		members = append(members, lang.Literal(k))
	}
	for _, p := range s.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return lang.Checker{}, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		members = append(members, lang.Pattern(re))
	}
	return lang.Any(members...), nil
}

func spreadFor(cat *lang.Catalog, sd SpreadDef) (lang.Spread, error) {
	switch {
	case sd.Range != nil:
		return lang.IntRange(sd.Range[0], sd.Range[1])
	case sd.Ints != nil:
		items := make([]lang.Datum, len(sd.Ints))
		for i, n := range sd.Ints {
			items[i] = lang.Int(n)
		}
		return lang.NewSpread(items...)
	case sd.Values != nil:
		return lang.Strings(sd.Values...)
	default:
		checker, err := selectorChecker(*sd.Catalog)
		if err != nil {
			return lang.Spread{}, err
		}
		return lang.CatalogSpread(checker.Select(cat))
	}
}

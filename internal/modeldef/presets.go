package modeldef

import (
	"fmt"
	"sort"
)

// Calendar constants.
const (
	YearVar  = "reg2"
	DayVar   = "reg1"
	MinYear  = 1257
	MaxYears = 21
)

var monthKeys = []string{
	"str_january_reg1_reg2",
	"str_february_reg1_reg2",
	"str_march_reg1_reg2",
	"str_april_reg1_reg2",
	"str_may_reg1_reg2",
	"str_june_reg1_reg2",
	"str_july_reg1_reg2",
	"str_august_reg1_reg2",
	"str_september_reg1_reg2",
	"str_october_reg1_reg2",
	"str_november_reg1_reg2",
	"str_december_reg1_reg2",
}

var timeOfDayKeys = []string{
	"ui_midnight",
	"ui_late_night",
	"ui_dawn",
	"ui_early_morning",
	"ui_morning",
	"ui_noon",
	"ui_afternoon",
	"ui_late_afternoon",
	"ui_dusk",
	"ui_evening",
}

var presets = map[string]GroupDef{
	"calendar-date": {
		Name: "calendar-date",
		Keys: monthKeys,
		Spreading: []SpreadDef{
			{Var: YearVar, Range: []int{MinYear, MinYear + MaxYears}},
			{Var: DayVar, Range: []int{1, 32}},
		},
	},
	"time-of-day": {
		Name: "time-of-day",
		Keys: timeOfDayKeys,
	},
	"relation": {
		Name: "relation",
		Keys: []string{"str_relation_reg1", "str_morale_reg1"},
		Spreading: []SpreadDef{
			{Var: "reg1", Range: []int{-100, 101}},
		},
	},
}

// Preset returns a built-in group definition.
func Preset(name string) (GroupDef, error) {
	g, ok := presets[name]
	if !ok {
		return GroupDef{}, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return g, nil
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Month returns the 1-based month of a calendar date key.
func Month(key string) (int, bool) {
	for i, k := range monthKeys {
		if k == key {
			return i + 1, true
		}
	}
	return 0, false
}

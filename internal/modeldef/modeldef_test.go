package modeldef

import (
	"os"
	"path/filepath"
	"testing"

	"lang-resolver/internal/lang"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const troopModel = `
name: troops
player:
  name: Ragnar
  sex: female
presets:
  - time-of-day
groups:
  - name: lords
    patterns: ["^str_lord_"]
    deny:
      keys: [str_lord_secret]
    spreading:
      - var: s1
        catalog:
          patterns: ["^trp_knight_"]
      - var: reg1
        ints: [1, 2, 3]
  - name: greetings
    keys: [str_greet]
    spreading:
      - var: s2
        values: [friend, stranger]
dialogs:
  - title:
      keys: [dlga_title]
    groups:
      - name: body
        keys: [dlga_body]
`

func testCatalog() *lang.Catalog {
	return lang.ParseCatalog(map[string]string{
		"str_lord_intro":  "I am {s1}, holder of {reg1} fiefs",
		"str_lord_secret": "hidden",
		"str_greet":       "Hello {s2}, {playername}",
		"trp_knight_1_1":  "Count Delinard",
		"trp_knight_1_2":  "Count Haringoth",
		"ui_noon":         "Noon",
		"dlga_title":      "Talk",
		"dlga_body":       "{Sir/Madam}, what do you want?",
	})
}

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	def, err := Load(writeModel(t, troopModel))
	require.NoError(t, err)

	assert.Equal(t, "troops", def.Name)
	assert.Equal(t, Player{Name: "Ragnar", Sex: "female"}, def.Player)
	assert.Equal(t, []string{"time-of-day"}, def.Presets)
	require.Len(t, def.Groups, 2)
	assert.Equal(t, []string{"^str_lord_"}, def.Groups[0].Patterns)
	assert.Equal(t, []string{"str_lord_secret"}, def.Groups[0].Deny.Keys)
	require.Len(t, def.Groups[0].Spreading, 2)
	assert.Equal(t, []int{1, 2, 3}, def.Groups[0].Spreading[1].Ints)
	require.NotNil(t, def.Groups[0].Spreading[0].Catalog)
	require.Len(t, def.Dialogs, 1)
}

func TestDefinition_Build(t *testing.T) {
	def, err := Load(writeModel(t, troopModel))
	require.NoError(t, err)

	m, err := def.Build(testCatalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"str_greet", "str_lord_intro", "ui_noon"}, m.Keys())

	v, ok := m.Value("str_greet")
	require.True(t, ok)
	assert.Equal(t, "Hello {s2}, Ragnar", v.String())

	sp, ok := m.Spreading("str_lord_intro")
	require.True(t, ok)
	require.Equal(t, 2, sp.Len())
	s1, ok := sp.Get(lang.NewVar("s1"))
	require.True(t, ok)
	assert.Equal(t, []lang.Datum{
		lang.KeyText{Key: "trp_knight_1_1", Text: "Count Delinard"},
		lang.KeyText{Key: "trp_knight_1_2", Text: "Count Haringoth"},
	}, s1.Items())

	sp, ok = m.Spreading("ui_noon")
	require.True(t, ok)
	assert.Equal(t, 0, sp.Len())
}

func TestDefinition_CompileGroups(t *testing.T) {
	def, err := Load(writeModel(t, troopModel))
	require.NoError(t, err)

	groups, err := def.CompileGroups(testCatalog())
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "time-of-day", groups[0].Name)
	assert.Equal(t, "lords", groups[1].Name)
	assert.Equal(t, "greetings", groups[2].Name)

	assert.True(t, groups[1].Checker.Match("str_lord_intro"))
	assert.False(t, groups[1].Checker.Match("str_lord_secret"))
	assert.Equal(t, 2, groups[1].Spreading.Len())
	assert.Len(t, def.Groups, 2)
}

func TestDefinition_DialogBodies(t *testing.T) {
	def, err := Load(writeModel(t, troopModel))
	require.NoError(t, err)

	bodies, err := def.DialogBodies(testCatalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"dlga_title"}, bodies.Titles())

	body, ok := bodies.Body("dlga_title")
	require.True(t, ok)
	v, ok := body.Value("dlga_body")
	require.True(t, ok)
	assert.Equal(t, "Madam, what do you want?", v.String())
}

func TestCalendarPreset(t *testing.T) {
	def, err := FromPresets("calendar-date")
	require.NoError(t, err)

	cat := lang.ParseCatalog(map[string]string{
		"str_march_reg1_reg2": "March {reg1}, {reg2}",
		"str_other":           "Other",
	})
	m, err := def.Build(cat)
	require.NoError(t, err)
	assert.Equal(t, []string{"str_march_reg1_reg2"}, m.Keys())

	sp, _ := m.Spreading("str_march_reg1_reg2")
	assert.Equal(t, []lang.Var{lang.NewVar(YearVar), lang.NewVar(DayVar)}, sp.Vars())
	year, _ := sp.Get(lang.NewVar(YearVar))
	assert.Equal(t, MaxYears, year.Len())
	assert.Equal(t, lang.Datum(lang.Int(MinYear)), year.Items()[0])

	month, ok := Month("str_march_reg1_reg2")
	require.True(t, ok)
	assert.Equal(t, 3, month)
	_, ok = Month("str_other")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"empty", Definition{}},
		{"unknown preset", Definition{Presets: []string{"weather"}}},
		{"spread without var", Definition{Groups: []GroupDef{{Spreading: []SpreadDef{{Values: []string{"a"}}}}}}},
		{"two sources", Definition{Groups: []GroupDef{{Spreading: []SpreadDef{{Var: "x", Values: []string{"a"}, Ints: []int{1}}}}}}},
		{"bad range", Definition{Groups: []GroupDef{{Spreading: []SpreadDef{{Var: "x", Range: []int{1}}}}}}},
		{"empty title", Definition{Dialogs: []DialogDef{{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.def.Validate())
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	def := &Definition{Player: Player{Sex: "unknown"}, Presets: []string{"relation"}}
	_, err := def.Build(testCatalog())
	assert.ErrorIs(t, err, lang.ErrInvalidSex)

	def = &Definition{Groups: []GroupDef{{Name: "bad", Patterns: []string{"("}}}}
	_, err = def.Build(testCatalog())
	assert.Error(t, err)

	def = &Definition{Groups: []GroupDef{{
		Keys:      []string{"str_greet"},
		Spreading: []SpreadDef{{Var: "s2", Catalog: &Selector{Keys: []string{"missing"}}}},
	}}}
	_, err = def.Build(testCatalog())
	assert.ErrorIs(t, err, lang.ErrEmptySpread)
}

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const declYAML = `
models:
  - name: Widget
    table: widgets
    properties:
      - {name: title, type: text}
      - {name: owner, to_one: Person, nullable: true}
  - name: Person
    table: people
    properties:
      - {name: name, type: text}
      - {name: nickname, type: text, nullable: true}
      - {name: widgets, to_many: Widget, foreign_key: owner}
`

func TestLoadYAML(t *testing.T) {
	models, err := LoadYAML(strings.NewReader(declYAML))
	require.NoError(t, err)
	require.Len(t, models, 2)

	widget, person := models[0], models[1]
	assert.Equal(t, "Widget", widget.Name)
	assert.Equal(t, "widgets", widget.Table)

	owner := widget.Property("owner")
	require.NotNil(t, owner)
	assert.Equal(t, KindToOne, owner.Kind)
	assert.Equal(t, person, owner.Related)
	assert.True(t, owner.Nullable)

	// Declaration order between models does not matter: Widget's to-one
	// references Person before Person is declared, and Person's to-many
	// resolves against Widget's to-one.
	widgets := person.Property("widgets")
	require.NotNil(t, widgets)
	assert.Equal(t, KindToMany, widgets.Kind)
	assert.Equal(t, owner, widgets.Inverse())

	nickname := person.Property("nickname")
	require.NotNil(t, nickname)
	assert.Equal(t, TypeText, nickname.Type)
	assert.True(t, nickname.Nullable)
}

func TestLoadYAML_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown type": `
models:
  - name: Widget
    table: widgets
    properties:
      - {name: title, type: varchar}
`,
		"unknown related model": `
models:
  - name: Widget
    table: widgets
    properties:
      - {name: owner, to_one: Person}
`,
		"to_many without foreign_key": `
models:
  - name: Widget
    table: widgets
    properties:
      - {name: owner, to_one: Person}
  - name: Person
    table: people
    properties:
      - {name: widgets, to_many: Widget}
`,
		"missing table": `
models:
  - name: Widget
    properties:
      - {name: title, type: text}
`,
		"empty": `{}`,
	}

	for name, decl := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(decl))
			assert.Error(t, err)
		})
	}
}

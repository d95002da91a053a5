package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// declFile is the YAML file structure for declared schemas.
//
// Example:
//
//	models:
//	  - name: Person
//	    table: people
//	    properties:
//	      - {name: name, type: text}
//	      - {name: nickname, type: text, nullable: true}
//	      - {name: widgets, to_many: Widget, foreign_key: owner}
//	  - name: Widget
//	    table: widgets
//	    properties:
//	      - {name: title, type: text}
//	      - {name: owner, to_one: Person}
type declFile struct {
	Models []modelDecl `yaml:"models"`
}

type modelDecl struct {
	Name       string         `yaml:"name"`
	Table      string         `yaml:"table"`
	Properties []propertyDecl `yaml:"properties"`
}

type propertyDecl struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type,omitempty"`
	Nullable   bool   `yaml:"nullable,omitempty"`
	ToOne      string `yaml:"to_one,omitempty"`
	ToMany     string `yaml:"to_many,omitempty"`
	ForeignKey string `yaml:"foreign_key,omitempty"`
}

var typesByName = map[string]Type{
	"integer":  TypeInteger,
	"real":     TypeReal,
	"text":     TypeText,
	"blob":     TypeBlob,
	"bool":     TypeBool,
	"datetime": TypeDatetime,
}

// LoadYAML parses model declarations from YAML.
//
// Loading is three-pass so declaration order between models does not
// matter: models are created first, then scalar and to-one properties,
// then to-many properties (which need the backing to-one resolved).
func LoadYAML(r io.Reader) ([]*Model, error) {
	var file declFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("parse schema: no models declared")
	}

	byName := make(map[string]*Model, len(file.Models))
	models := make([]*Model, 0, len(file.Models))
	for _, md := range file.Models {
		if md.Name == "" || md.Table == "" {
			return nil, fmt.Errorf("parse schema: model needs name and table")
		}
		if _, dup := byName[md.Name]; dup {
			return nil, fmt.Errorf("parse schema: duplicate model %q", md.Name)
		}
		m := New(md.Name, md.Table)
		byName[md.Name] = m
		models = append(models, m)
	}

	for _, md := range file.Models {
		m := byName[md.Name]
		for _, pd := range md.Properties {
			if pd.ToMany != "" {
				continue
			}
			if err := addDecl(m, pd, byName); err != nil {
				return nil, err
			}
		}
	}
	for _, md := range file.Models {
		m := byName[md.Name]
		for _, pd := range md.Properties {
			if pd.ToMany == "" {
				continue
			}
			if err := addDecl(m, pd, byName); err != nil {
				return nil, err
			}
		}
	}
	return models, nil
}

func addDecl(m *Model, pd propertyDecl, byName map[string]*Model) error {
	switch {
	case pd.Name == "":
		return fmt.Errorf("parse schema: model %q: property needs a name", m.Name)
	case pd.ToOne != "":
		related, ok := byName[pd.ToOne]
		if !ok {
			return fmt.Errorf("parse schema: %s.%s: unknown model %q", m.Name, pd.Name, pd.ToOne)
		}
		m.ToOne(pd.Name, related, pd.Nullable)
	case pd.ToMany != "":
		related, ok := byName[pd.ToMany]
		if !ok {
			return fmt.Errorf("parse schema: %s.%s: unknown model %q", m.Name, pd.Name, pd.ToMany)
		}
		if pd.ForeignKey == "" {
			return fmt.Errorf("parse schema: %s.%s: to_many needs foreign_key", m.Name, pd.Name)
		}
		back := related.Property(pd.ForeignKey)
		if back == nil || back.Kind != KindToOne || back.Related != m {
			return fmt.Errorf("parse schema: %s.%s: %s.%s is not a to-one back to %s",
				m.Name, pd.Name, related.Name, pd.ForeignKey, m.Name)
		}
		m.ToMany(pd.Name, related, pd.ForeignKey)
	default:
		t, ok := typesByName[pd.Type]
		if !ok {
			return fmt.Errorf("parse schema: %s.%s: unknown type %q", m.Name, pd.Name, pd.Type)
		}
		m.Scalar(pd.Name, t, pd.Nullable)
	}
	return nil
}

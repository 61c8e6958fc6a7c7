package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-set/v2"
	"github.com/jinzhu/inflection"

	"github.com/mlwelles/colaGen/model"
)

// FieldKind is the semantic type of a schema field.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldInteger
	FieldFloat
	FieldBoolean
	FieldEntity
	FieldPlural
)

func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "string"
	case FieldInteger:
		return "integer"
	case FieldFloat:
		return "float"
	case FieldBoolean:
		return "boolean"
	case FieldEntity:
		return "entity"
	case FieldPlural:
		return "plural"
	default:
		return "unknown"
	}
}

// Field describes one field of a target struct. Name is the sanitized Go
// field identifier; SourceName preserves the original spelling for model
// lookups, so the mapping round-trips.
type Field struct {
	SourceName string
	Name       string
	Getter     string
	Kind       FieldKind
	TypeName   string // struct or wrapper name for entity/plural fields
	Optional   bool
}

// GoType returns the Go type of the field as emitted, with optional fields
// rendered as pointers.
func (f *Field) GoType() string {
	var t string
	switch f.Kind {
	case FieldString:
		t = "string"
	case FieldInteger:
		t = "int64"
	case FieldFloat:
		t = "float64"
	case FieldBoolean:
		t = "bool"
	default:
		t = f.TypeName
	}
	if f.Optional {
		return "*" + t
	}
	return t
}

// EntityType is one struct of the derived schema: the union of all model
// instances sharing a type key.
type EntityType struct {
	Key        string
	SourceName string
	Name       string
	IsRoot     bool
	Fields     []*Field
	Instances  []model.NodeID
}

// PluralType is the collection wrapper generated once per singular type
// observed in a plural position. Keys are always the instance name strings.
type PluralType struct {
	SingularKey  string
	SingularName string
	Name         string
	SourceName   string
}

// Schema is the full target-language type description derived from a model.
type Schema struct {
	Types   []*EntityType
	Plurals []*PluralType
	Root    *EntityType
}

// Type returns the entity type with the given key.
func (s *Schema) Type(key string) *EntityType {
	for _, t := range s.Types {
		if t.Key == key {
			return t
		}
	}
	return nil
}

// SchemaError reports a type-inference impossibility, such as one field
// name carrying incompatible scalar kinds across sibling instances.
type SchemaError struct {
	TypeName string
	Field    string
	Msg      string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: field %q of type %q: %s", e.Field, e.TypeName, e.Msg)
}

// Infer walks the model breadth-first and derives the target schema: one
// EntityType per type key with fields unioned across instances, and one
// PluralType per singular type observed in a plural position. A field
// missing from some instances becomes optional; Integer widens to Float
// when any occurrence is Float; any other kind mix is a SchemaError.
func Infer(m *model.Model) (*Schema, error) {
	var typeOrder []string
	instances := make(map[string][]model.NodeID)

	var pluralOrder []string
	plurals := make(map[string]*PluralType)

	queue := []model.NodeID{m.RootID()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := m.Node(id)
		if n.IsPlural() {
			if _, seen := plurals[n.TypeName]; !seen {
				pluralOrder = append(pluralOrder, n.TypeName)
				plurals[n.TypeName] = &PluralType{SingularKey: n.TypeName, SourceName: n.Name}
			}
		} else {
			if _, seen := instances[n.TypeName]; !seen {
				typeOrder = append(typeOrder, n.TypeName)
			}
			instances[n.TypeName] = append(instances[n.TypeName], id)
		}
		for pair := n.Children.Oldest(); pair != nil; pair = pair.Next() {
			queue = append(queue, pair.Value)
		}
	}

	for _, key := range pluralOrder {
		p := plurals[key]
		p.SingularName = Sanitize(key, IdentType)
		p.Name = Sanitize(p.SourceName, IdentType)
		if p.Name == p.SingularName {
			// The collection identifier must not shadow the singular struct.
			p.Name = Sanitize(inflection.Plural(p.SourceName), IdentType)
		}
	}

	schema := &Schema{}
	for _, key := range typeOrder {
		et, err := inferType(m, key, instances[key], plurals)
		if err != nil {
			return nil, err
		}
		if key == model.RootName && m.Node(instances[key][0]).ID == m.RootID() {
			et.IsRoot = true
			schema.Root = et
		}
		schema.Types = append(schema.Types, et)
	}
	for _, key := range pluralOrder {
		schema.Plurals = append(schema.Plurals, plurals[key])
	}
	return schema, nil
}

type fieldInfo struct {
	kinds        map[FieldKind]bool
	childTypeKey string
	pluralKey    string
}

// inferType unions the fields of every instance of one type key.
func inferType(m *model.Model, key string, ids []model.NodeID, plurals map[string]*PluralType) (*EntityType, error) {
	et := &EntityType{
		Key:        key,
		SourceName: key,
		Name:       Sanitize(key, IdentType),
		Instances:  ids,
	}

	var fieldOrder []string
	infos := make(map[string]*fieldInfo)
	var required *set.Set[string]

	record := func(name string) *fieldInfo {
		fi, ok := infos[name]
		if !ok {
			fi = &fieldInfo{kinds: make(map[FieldKind]bool)}
			infos[name] = fi
			fieldOrder = append(fieldOrder, name)
		}
		return fi
	}

	for _, id := range ids {
		n := m.Node(id)
		present := set.New[string](n.Fields.Len() + n.Children.Len())
		for pair := n.Fields.Oldest(); pair != nil; pair = pair.Next() {
			fi := record(pair.Key)
			fi.kinds[scalarFieldKind(pair.Value.Kind)] = true
			present.Insert(pair.Key)
		}
		for pair := n.Children.Oldest(); pair != nil; pair = pair.Next() {
			child := m.Node(pair.Value)
			fi := record(pair.Key)
			if child.IsPlural() {
				fi.kinds[FieldPlural] = true
				fi.pluralKey = child.TypeName
			} else {
				fi.kinds[FieldEntity] = true
				if fi.childTypeKey != "" && fi.childTypeKey != child.TypeName {
					return nil, &SchemaError{
						TypeName: key,
						Field:    pair.Key,
						Msg:      fmt.Sprintf("refers to entity type %q in one instance and %q in another", fi.childTypeKey, child.TypeName),
					}
				}
				fi.childTypeKey = child.TypeName
			}
			present.Insert(pair.Key)
		}
		if required == nil {
			required = present
		} else {
			required = required.Intersect(present).(*set.Set[string])
		}
	}

	for _, name := range fieldOrder {
		fi := infos[name]
		kind, ok := reconcileKinds(fi.kinds)
		if !ok {
			return nil, &SchemaError{
				TypeName: key,
				Field:    name,
				Msg:      "incompatible kinds " + kindList(fi.kinds),
			}
		}
		f := &Field{
			SourceName: name,
			Name:       Sanitize(name, IdentField),
			Getter:     Sanitize(name, IdentType),
			Kind:       kind,
			Optional:   kind != FieldPlural && !required.Contains(name),
		}
		switch kind {
		case FieldEntity:
			f.TypeName = Sanitize(fi.childTypeKey, IdentType)
		case FieldPlural:
			f.TypeName = plurals[fi.pluralKey].Name
		}
		et.Fields = append(et.Fields, f)
	}
	return et, nil
}

func scalarFieldKind(k model.ValueKind) FieldKind {
	switch k {
	case model.ValueString:
		return FieldString
	case model.ValueInteger:
		return FieldInteger
	case model.ValueFloat:
		return FieldFloat
	default:
		return FieldBoolean
	}
}

// reconcileKinds folds the kinds observed for one field name across
// instances. Integer widens to Float; everything else must be uniform.
func reconcileKinds(kinds map[FieldKind]bool) (FieldKind, bool) {
	if len(kinds) == 1 {
		for k := range kinds {
			return k, true
		}
	}
	if len(kinds) == 2 && kinds[FieldInteger] && kinds[FieldFloat] {
		return FieldFloat, true
	}
	return 0, false
}

func kindList(kinds map[FieldKind]bool) string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k.String())
	}
	sort.Strings(names)
	return strings.Join(names, " and ")
}

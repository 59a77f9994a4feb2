package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/common"
)

// Property is one name/value pair of a character. Names are not unique;
// the first occurrence wins on lookup.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PropertiesFromStrings parses "name=value" items. The value may itself
// contain '='.
func PropertiesFromStrings(s []string) ([]Property, error) {
	data := make([]Property, len(s))
	for n, item := range s {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("%w: property %q must be name=value", common.ErrValidation, item)
		}
		data[n] = Property{Name: parts[0], Value: parts[1]}
	}
	return data, nil
}

// Relation is a labelled link to another character of the same collection.
// Target may point at a deleted character.
type Relation struct {
	Target int64  `json:"target"`
	Label  string `json:"label"`
}

// Character is one entry of a collection.
type Character struct {
	ID         int64
	Name       string
	Avatar     []byte
	Properties []Property
	Tags       []string
	Note       string
	Relations  []Relation
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Property returns the value of the first property called name.
func (c *Character) Property(name string) (string, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// AddTag appends tag unless it is empty or already present.
func (c *Character) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range c.Tags {
		if t == tag {
			return false
		}
	}
	c.Tags = append(c.Tags, tag)
	return true
}

// HasTag reports whether tag is attached to the character.
func (c *Character) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the fields a character must carry before it is stored.
func (c *Character) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	for i, p := range c.Properties {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: property #%d has no name", common.ErrValidation, i+1)
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	cp := *c
	if c.Avatar != nil {
		cp.Avatar = append([]byte(nil), c.Avatar...)
	}
	cp.Properties = append([]Property(nil), c.Properties...)
	cp.Tags = append([]string(nil), c.Tags...)
	cp.Relations = append([]Relation(nil), c.Relations...)
	return &cp
}

// characterWire is the archive representation. Properties and relations
// travel as parallel arrays; the avatar travels as a separate archive entry.
type characterWire struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	PropertyKeys   []string      `json:"propertyKeys"`
	PropertyValues []string      `json:"propertyValues"`
	Tags           []string      `json:"tags"`
	Note           string        `json:"note"`
	RelationKeys   []relationKey `json:"relationKeys"`
	RelationValues []string      `json:"relationValues"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// relationKey is a relation target id. It is written as a number but also
// read from a quoted number, which is how some older archives store it.
type relationKey int64

func (k *relationKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: relation key %s is not a character id", common.ErrArchiveFormat, data)
	}
	*k = relationKey(n)
	return nil
}

// MarshalJSON encodes c in the archive layout.
func (c Character) MarshalJSON() ([]byte, error) {
	w := characterWire{
		ID:             c.ID,
		Name:           c.Name,
		PropertyKeys:   make([]string, len(c.Properties)),
		PropertyValues: make([]string, len(c.Properties)),
		Tags:           c.Tags,
		Note:           c.Note,
		RelationKeys:   make([]relationKey, len(c.Relations)),
		RelationValues: make([]string, len(c.Relations)),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	for i, p := range c.Properties {
		w.PropertyKeys[i] = p.Name
		w.PropertyValues[i] = p.Value
	}
	for i, r := range c.Relations {
		w.RelationKeys[i] = relationKey(r.Target)
		w.RelationValues[i] = r.Label
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the archive layout. Parallel arrays of different
// lengths are rejected with common.ErrArchiveFormat.
func (c *Character) UnmarshalJSON(data []byte) error {
	var w characterWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.PropertyKeys) != len(w.PropertyValues) {
		return fmt.Errorf("%w: character %d has %d property keys and %d values",
			common.ErrArchiveFormat, w.ID, len(w.PropertyKeys), len(w.PropertyValues))
	}
	if len(w.RelationKeys) != len(w.RelationValues) {
		return fmt.Errorf("%w: character %d has %d relation keys and %d values",
			common.ErrArchiveFormat, w.ID, len(w.RelationKeys), len(w.RelationValues))
	}

	*c = Character{
		ID:        w.ID,
		Name:      w.Name,
		Tags:      w.Tags,
		Note:      w.Note,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	for i := range w.PropertyKeys {
		c.Properties = append(c.Properties, Property{Name: w.PropertyKeys[i], Value: w.PropertyValues[i]})
	}
	for i := range w.RelationKeys {
		c.Relations = append(c.Relations, Relation{Target: int64(w.RelationKeys[i]), Label: w.RelationValues[i]})
	}
	return nil
}

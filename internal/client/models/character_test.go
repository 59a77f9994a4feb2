package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesFromStrings_OK(t *testing.T) {
	in := []string{"a=1", "b=two", "formula=x=y"}
	props, err := PropertiesFromStrings(in)
	require.NoError(t, err)
	require.Equal(t, []Property{
		{Name: "a", Value: "1"},
		{Name: "b", Value: "two"},
		{Name: "formula", Value: "x=y"},
	}, props)
}

func TestPropertiesFromStrings_ErrorOnMalformed(t *testing.T) {
	_, err := PropertiesFromStrings([]string{"x=y", "justname"})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = PropertiesFromStrings([]string{"=value"})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestCharacter_PropertyFirstMatchWins(t *testing.T) {
	c := &Character{Properties: []Property{
		{Name: "age", Value: "10"},
		{Name: "age", Value: "99"},
	}}

	v, ok := c.Property("age")
	assert.True(t, ok)
	assert.Equal(t, "10", v)

	_, ok = c.Property("rank")
	assert.False(t, ok)
}

func TestCharacter_AddTag(t *testing.T) {
	c := &Character{}
	assert.True(t, c.AddTag("hero"))
	assert.True(t, c.AddTag("mage"))
	assert.False(t, c.AddTag("hero"), "duplicates are suppressed")
	assert.False(t, c.AddTag("  "), "blank tags are ignored")
	assert.Equal(t, []string{"hero", "mage"}, c.Tags)
	assert.True(t, c.HasTag("mage"))
	assert.False(t, c.HasTag("rogue"))
}

func TestCharacter_Validate(t *testing.T) {
	require.NoError(t, (&Character{Name: "A"}).Validate())
	require.ErrorIs(t, (&Character{Name: " "}).Validate(), common.ErrValidation)
	require.ErrorIs(t, (&Character{Name: "A", Properties: []Property{{Name: "", Value: "x"}}}).Validate(), common.ErrValidation)
}

func TestCharacter_CloneIsDeep(t *testing.T) {
	c := &Character{Name: "A", Avatar: []byte{1}, Tags: []string{"t"}, Properties: []Property{{Name: "k", Value: "v"}}}
	cp := c.Clone()
	cp.Avatar[0] = 9
	cp.Tags[0] = "x"
	cp.Properties[0].Value = "z"

	assert.Equal(t, byte(1), c.Avatar[0])
	assert.Equal(t, "t", c.Tags[0])
	assert.Equal(t, "v", c.Properties[0].Value)
}

func TestCharacter_JSONUsesParallelArrays(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := Character{
		ID:         7,
		Name:       "Alice",
		Avatar:     []byte("blob"),
		Properties: []Property{{Name: "age", Value: "10"}, {Name: "age", Value: "11"}},
		Tags:       []string{"hero"},
		Note:       "<p>hi</p>",
		Relations:  []Relation{{Target: 3, Label: "Sister"}},
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}

	b, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, []any{"age", "age"}, raw["propertyKeys"])
	assert.Equal(t, []any{"10", "11"}, raw["propertyValues"])
	assert.Equal(t, []any{float64(3)}, raw["relationKeys"])
	assert.Equal(t, []any{"Sister"}, raw["relationValues"])
	assert.NotContains(t, raw, "avatar")

	var back Character
	require.NoError(t, json.Unmarshal(b, &back))
	c.Avatar = nil
	assert.Empty(t, cmp.Diff(c, back))
}

func TestCharacter_UnmarshalRelationKeys(t *testing.T) {
	var c Character
	doc := `{"id":1,"uuid":"x","name":"A","avatar":{},"relationKeys":["2"," 3 ",4],"relationValues":["a","b","c"]}`
	require.NoError(t, json.Unmarshal([]byte(doc), &c))
	assert.Equal(t, []Relation{{Target: 2, Label: "a"}, {Target: 3, Label: "b"}, {Target: 4, Label: "c"}}, c.Relations)

	for _, bad := range []string{`["two"]`, `[1.5]`, `[""]`} {
		doc := `{"id":1,"name":"A","relationKeys":` + bad + `,"relationValues":["a"]}`
		err := json.Unmarshal([]byte(doc), &c)
		require.ErrorIs(t, err, common.ErrArchiveFormat, bad)
	}
}

func TestCharacter_UnmarshalRejectsUnequalArrays(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "properties", doc: `{"id":1,"name":"A","propertyKeys":["a","b"],"propertyValues":["1"]}`},
		{name: "relations", doc: `{"id":1,"name":"A","relationKeys":[2],"relationValues":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Character
			err := json.Unmarshal([]byte(tt.doc), &c)
			require.ErrorIs(t, err, common.ErrArchiveFormat)
		})
	}
}

package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/common"
)

// InfoID is the fixed key of the metadata row.
const InfoID = 1

// MissingValue replaces template placeholders that have no matching property.
const MissingValue = "-"

// CollectionInfo is the singleton metadata record of a collection. ID is
// always InfoID once stored.
type CollectionInfo struct {
	ID                   int64     `json:"id"`
	UUID                 string    `json:"uuid"`
	Name                 string    `json:"name"`
	Icon                 []byte    `json:"-"`
	Description          string    `json:"description"`
	CharacterDescription string    `json:"characterDescription"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

var placeholderRe = regexp.MustCompile(`\{\{\s*(.+?)\s*\}\}`)

// DescribeCharacter renders CharacterDescription for c.
func (i *CollectionInfo) DescribeCharacter(c *Character) string {
	return placeholderRe.ReplaceAllStringFunc(i.CharacterDescription, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := c.Property(name); ok {
			return v
		}
		return MissingValue
	})
}

// Label is the display name, falling back to the uuid.
func (i *CollectionInfo) Label() string {
	if i.Name != "" {
		return i.Name
	}
	return i.UUID
}

// InfoPatch carries optional changes to a CollectionInfo. Nil fields are
// left untouched; an empty non-nil Icon removes the icon.
type InfoPatch struct {
	Name                 *string
	Description          *string
	CharacterDescription *string
	Icon                 []byte
}

// Apply copies the set fields of p into info.
func (p InfoPatch) Apply(info *CollectionInfo) {
	if p.Name != nil {
		info.Name = *p.Name
	}
	if p.Description != nil {
		info.Description = *p.Description
	}
	if p.CharacterDescription != nil {
		info.CharacterDescription = *p.CharacterDescription
	}
	if p.Icon != nil {
		if len(p.Icon) == 0 {
			info.Icon = nil
		} else {
			info.Icon = p.Icon
		}
	}
}

// Fold normalises a string for case-insensitive comparisons.
func Fold(s string) string {
	return strings.ToLower(s)
}

const editorPrefix = "/editor/"

// EditorPath is the address of the editor view for a collection.
func EditorPath(uuid string) string {
	return editorPrefix + uuid
}

// ParseEditorPath accepts either a bare uuid or an editor path.
func ParseEditorPath(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, editorPrefix)
	if s == "" || strings.Contains(s, "/") {
		return "", fmt.Errorf("%w: bad collection address %q", common.ErrValidation, s)
	}
	return s, nil
}

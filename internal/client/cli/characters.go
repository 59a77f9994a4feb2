package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/charkeeper/internal/archive"
	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/filex"
	"github.com/dmitrijs2005/charkeeper/internal/query"
)

// List prints the characters of the open collection that match the current
// search, in the current sort order.
func (a *App) List(ctx context.Context) error {
	list, err := a.current.Search(ctx, a.clauses, a.sort)
	if err != nil {
		return a.fail(err)
	}

	a.printf("Showing %s, sorted by %s\n", query.DescribeAll(a.clauses), query.DescribeSort(a.sort))
	if len(list) == 0 {
		a.println("No characters found.")
		return nil
	}
	for _, c := range list {
		a.println(summary(&c))
	}
	return nil
}

func summary(c *models.Character) string {
	s := fmt.Sprintf("#%-4d %s", c.ID, c.Name)
	if len(c.Tags) > 0 {
		s += "  [" + strings.Join(c.Tags, ", ") + "]"
	}
	return s
}

// Show prints one character with its resolved relations and description.
func (a *App) Show(ctx context.Context, args []string) error {
	c, err := a.character(ctx, args)
	if err != nil {
		return a.fail(err)
	}

	a.printf("#%d %s\n", c.ID, c.Name)
	if desc, err := a.current.Describe(ctx, c); err == nil && desc != "" {
		a.println("  " + desc)
	}
	for _, p := range c.Properties {
		a.printf("  %s = %s\n", p.Name, p.Value)
	}
	if len(c.Tags) > 0 {
		a.println("  tags:", strings.Join(c.Tags, ", "))
	}

	rels, err := a.current.Relations(ctx, c)
	if err != nil {
		return a.fail(err)
	}
	for _, r := range rels {
		a.printf("  %s -> #%d %s\n", r.Label, r.Character.ID, r.Character.Name)
	}

	if len(c.Avatar) > 0 {
		a.printf("  avatar: %d bytes\n", len(c.Avatar))
	}
	if c.Note != "" {
		a.println("  note:")
		for _, line := range strings.Split(c.Note, "\n") {
			a.println("    " + line)
		}
	}
	a.printf("  created %s, updated %s\n", formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	return nil
}

// Add prompts for a new character.
func (a *App) Add(ctx context.Context) error {
	c := &models.Character{}
	if err := a.promptCharacter(c); err != nil {
		return a.fail(err)
	}

	id, err := a.current.Add(ctx, c)
	if err != nil {
		return a.fail(err)
	}
	a.printf("Added #%d\n", id)
	return nil
}

// Edit prompts for changes to an existing character. Empty answers keep the
// current value and "-" clears it.
func (a *App) Edit(ctx context.Context, args []string) error {
	c, err := a.character(ctx, args)
	if err != nil {
		return a.fail(err)
	}
	if err := a.promptCharacter(c); err != nil {
		return a.fail(err)
	}
	if err := a.current.Update(ctx, c); err != nil {
		return a.fail(err)
	}
	a.printf("Updated #%d\n", c.ID)
	return nil
}

// promptCharacter fills c from user input. On a new character every answer
// sets the field; on an existing one empty answers leave it unchanged.
func (a *App) promptCharacter(c *models.Character) error {
	editing := c.ID != 0
	hint := ""
	if editing {
		hint = " (empty keeps current, - clears)"
	}

	name, err := GetSimpleText(a.reader, "Name"+keepHint(editing, c.Name), a.out)
	if err != nil {
		return err
	}
	if name != "" {
		c.Name = name
	}

	lines, err := GetProperties(a.reader, a.out)
	if err != nil {
		return err
	}
	switch {
	case len(lines) == 1 && lines[0] == clearInput:
		c.Properties = nil
	case len(lines) > 0:
		props, err := models.PropertiesFromStrings(lines)
		if err != nil {
			return err
		}
		c.Properties = props
	}

	tags, err := GetSimpleText(a.reader, "Tags, comma separated"+hint, a.out)
	if err != nil {
		return err
	}
	switch tags {
	case "":
	case clearInput:
		c.Tags = nil
	default:
		c.Tags = nil
		for _, t := range splitList(tags) {
			c.AddTag(t)
		}
	}

	note, err := GetMultiline(a.reader, "Note"+hint, a.out)
	if err != nil {
		return err
	}
	switch note {
	case "":
	case clearInput:
		c.Note = ""
	default:
		c.Note = note
	}

	avatar, err := GetFile(a.reader, "Avatar file"+hint, a.out)
	if err != nil {
		return err
	}
	if avatar != nil {
		if len(avatar) == 0 {
			c.Avatar = nil
		} else {
			c.Avatar = avatar
		}
	}
	return nil
}

func keepHint(editing bool, current string) string {
	if !editing {
		return ""
	}
	return fmt.Sprintf(" [%s]", current)
}

// Remove deletes a character after confirmation.
func (a *App) Remove(ctx context.Context, args []string) error {
	c, err := a.character(ctx, args)
	if err != nil {
		return a.fail(err)
	}
	if !Confirm(a.reader, fmt.Sprintf("Delete #%d %s?", c.ID, c.Name), a.out) {
		a.println("Cancelled")
		return nil
	}
	if err := a.current.Delete(ctx, c.ID); err != nil {
		return a.fail(err)
	}
	a.printf("Deleted #%d\n", c.ID)
	return nil
}

// Tag adds tags to a character: tag <id> <tag...>.
func (a *App) Tag(ctx context.Context, args []string) error {
	if len(args) < 2 {
		a.println("Usage: tag <id> <tag...>")
		return nil
	}
	c, err := a.character(ctx, args[:1])
	if err != nil {
		return a.fail(err)
	}

	added := 0
	for _, t := range args[1:] {
		if c.AddTag(t) {
			added++
		}
	}
	if added == 0 {
		a.println("Nothing to add")
		return nil
	}
	if err := a.current.Update(ctx, c); err != nil {
		return a.fail(err)
	}
	a.printf("Tagged #%d: %s\n", c.ID, strings.Join(c.Tags, ", "))
	return nil
}

// Relate links two characters: relate <id> <target> <label...>.
func (a *App) Relate(ctx context.Context, args []string) error {
	if len(args) < 3 {
		a.println("Usage: relate <id> <target id> <label>")
		return nil
	}
	c, err := a.character(ctx, args[:1])
	if err != nil {
		return a.fail(err)
	}
	target, err := a.character(ctx, args[1:2])
	if err != nil {
		return a.fail(err)
	}

	label := strings.Join(args[2:], " ")
	c.Relations = append(c.Relations, models.Relation{Target: target.ID, Label: label})
	if err := a.current.Update(ctx, c); err != nil {
		return a.fail(err)
	}
	a.printf("#%d %s -> #%d %s\n", c.ID, label, target.ID, target.Name)
	return nil
}

// Search adds a clause to the current search and lists the result.
func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println("Usage: search text <name> | relation <label> | property <key> <op> <value> | <key><op><value>")
		return nil
	}
	p, err := query.ParseSearchParam(strings.Join(args, " "))
	if err != nil {
		return a.fail(err)
	}
	a.clauses = append(a.clauses, p)
	return a.List(ctx)
}

// ClearSearch drops every search clause.
func (a *App) ClearSearch(ctx context.Context) error {
	a.clauses = nil
	return a.List(ctx)
}

// Sort changes the list order: sort <name|createdAt|updatedAt|property key> [asc|desc].
func (a *App) Sort(ctx context.Context, args []string) error {
	p, err := query.ParseSortParam(strings.Join(args, " "))
	if err != nil {
		return a.fail(err)
	}
	a.sort = p
	return a.List(ctx)
}

// character loads the character whose id is args[0].
func (a *App) character(ctx context.Context, args []string) (*models.Character, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: character id is required", common.ErrValidation)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: bad character id %q", common.ErrValidation, args[0])
	}
	return a.current.Get(ctx, id)
}

// export writes the archive of collection id to path, or to the archive's
// own file name in the working directory when path is empty.
func (a *App) export(ctx context.Context, id, path string) (string, error) {
	f, err := func() (*archive.File, error) {
		defer a.busy()()
		return a.collections.Export(ctx, id)
	}()
	if err != nil {
		return "", err
	}

	if path == "" {
		path = f.Name
	}
	path = filepath.Clean(path)
	if err := filex.WriteFileAtomic(path, f.Data); err != nil {
		return "", err
	}
	return path, nil
}

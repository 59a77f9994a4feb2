package cli

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/query"
)

const timeLayout = "2006-01-02 15:04"

// Collections prints the known collections, most recently updated first.
func (a *App) Collections(ctx context.Context) error {
	infos, err := a.collections.Recent(ctx)
	if err != nil {
		return a.fail(err)
	}
	if len(infos) == 0 {
		a.println("No collections yet. Use 'create <name>' or 'import <file>'.")
		return nil
	}
	for _, info := range infos {
		a.printf("%s  %-24s  updated %s\n", info.UUID, info.Label(), formatTime(info.UpdatedAt))
	}
	return nil
}

// Create makes a new collection and opens it.
func (a *App) Create(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")
	if name == "" {
		var err error
		if name, err = GetSimpleText(a.reader, "Collection name", a.out); err != nil {
			return a.fail(err)
		}
	}

	id, err := a.collections.Create(ctx, name)
	if err != nil {
		return a.fail(err)
	}
	a.println("Created", id)
	return a.open(ctx, id)
}

// Open switches to the editor view of a collection given by uuid or editor path.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: open <uuid|/editor/uuid>")
		return nil
	}
	id, err := models.ParseEditorPath(args[0])
	if err != nil {
		return a.fail(err)
	}
	return a.open(ctx, id)
}

func (a *App) open(ctx context.Context, id string) error {
	info, err := a.switchTo(ctx, id)
	if err != nil {
		return a.fail(err)
	}
	a.printf("Opened %q at %s\n", info.Label(), models.EditorPath(id))
	return nil
}

// switchTo makes id the current collection, closing the previous one. The
// current collection is kept when id cannot be opened.
func (a *App) switchTo(ctx context.Context, id string) (*models.CollectionInfo, error) {
	cs, err := a.collections.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := cs.Info(ctx)
	if err != nil {
		_ = cs.Close()
		return nil, err
	}

	if a.current != nil {
		_ = a.current.Close()
	}
	a.current = cs
	a.clauses = nil
	a.sort = query.DefaultSort
	return info, nil
}

// CloseCollection returns to the home view.
func (a *App) CloseCollection(ctx context.Context) error {
	if a.current == nil {
		return nil
	}
	err := a.current.Close()
	a.current = nil
	a.clauses = nil
	a.sort = query.DefaultSort
	if err != nil {
		return a.fail(err)
	}
	return nil
}

// Import reads an archive file, imports it as a new collection and opens it.
func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: import <file>")
		return nil
	}
	data, err := readFile(args[0])
	if err != nil {
		return a.failf("import failed", err)
	}

	id, err := a.importArchive(ctx, data)
	if err != nil {
		return a.failf("import failed", err)
	}
	a.println("Imported", id)
	return a.open(ctx, id)
}

func (a *App) importArchive(ctx context.Context, data []byte) (string, error) {
	defer a.busy()()
	return a.collections.Import(ctx, data)
}

// Restore imports a backup by key and opens it.
func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: restore <key>")
		return nil
	}

	id, err := func() (string, error) {
		defer a.busy()()
		return a.collections.Restore(ctx, args[0])
	}()
	if err != nil {
		return a.failf("restore failed", err)
	}
	a.println("Restored", id)
	return a.open(ctx, id)
}

// URL prints a temporary download link for a backup key.
func (a *App) URL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: url <key>")
		return nil
	}
	u, err := a.collections.BackupURL(ctx, args[0])
	if err != nil {
		return a.fail(err)
	}
	a.println(u)
	return nil
}

// Delete removes a collection after confirmation. Deleting the open
// collection closes it first.
func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: delete <uuid>")
		return nil
	}
	id, err := models.ParseEditorPath(args[0])
	if err != nil {
		return a.fail(err)
	}
	if !Confirm(a.reader, "Delete collection "+id+"?", a.out) {
		a.println("Cancelled")
		return nil
	}
	return a.delete(ctx, id)
}

func (a *App) delete(ctx context.Context, id string) error {
	if a.current != nil && a.current.UUID() == id {
		if err := a.CloseCollection(ctx); err != nil {
			return err
		}
	}
	if err := a.collections.Delete(ctx, id); err != nil {
		return a.fail(err)
	}
	a.println("Deleted", id)
	return nil
}

// Info prints the metadata of the open collection.
func (a *App) Info(ctx context.Context) error {
	info, err := a.current.Info(ctx)
	if err != nil {
		return a.fail(err)
	}
	a.println("Name:       ", info.Label())
	a.println("UUID:       ", info.UUID)
	a.println("Created:    ", formatTime(info.CreatedAt))
	a.println("Updated:    ", formatTime(info.UpdatedAt))
	if len(info.Icon) > 0 {
		a.printf("Icon:        %d bytes\n", len(info.Icon))
	}
	if info.Description != "" {
		a.println("Description:", info.Description)
	}
	if info.CharacterDescription != "" {
		a.println("Template:   ", info.CharacterDescription)
	}
	return nil
}

// EditInfo prompts for new metadata. Empty answers keep the current value.
func (a *App) EditInfo(ctx context.Context) error {
	var patch models.InfoPatch

	name, err := GetSimpleText(a.reader, "Name (empty keeps current)", a.out)
	if err != nil {
		return a.fail(err)
	}
	if name != "" {
		patch.Name = &name
	}

	desc, err := GetMultiline(a.reader, "Description (empty keeps current, - clears)", a.out)
	if err != nil {
		return a.fail(err)
	}
	patch.Description = optional(desc)

	tmpl, err := GetSimpleText(a.reader, "Character description, e.g. {{age}} years old (empty keeps current, - clears)", a.out)
	if err != nil {
		return a.fail(err)
	}
	patch.CharacterDescription = optional(tmpl)

	icon, err := GetFile(a.reader, "Icon file (empty keeps current, - removes)", a.out)
	if err != nil {
		return a.fail(err)
	}
	patch.Icon = icon

	info, err := a.collections.UpdateInfo(ctx, a.current.UUID(), patch)
	if err != nil {
		return a.fail(err)
	}
	a.printf("Updated %q\n", info.Label())
	return nil
}

// optional maps an edit answer to a patch field.
func optional(s string) *string {
	switch s {
	case "":
		return nil
	case clearInput:
		empty := ""
		return &empty
	}
	return &s
}

// Export writes the open collection to an archive file. The default file
// name is derived from the collection name.
func (a *App) Export(ctx context.Context, args []string) error {
	path, err := a.export(ctx, a.current.UUID(), strings.Join(args, " "))
	if err != nil {
		return a.failf("export failed", err)
	}
	a.println("Exported to", path)
	return nil
}

// Backup uploads an archive of the open collection and prints its key.
func (a *App) Backup(ctx context.Context) error {
	key, err := func() (string, error) {
		defer a.busy()()
		return a.collections.Backup(ctx, a.current.UUID())
	}()
	if err != nil {
		return a.failf("backup failed", err)
	}
	a.println("Backed up as", key)
	return nil
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

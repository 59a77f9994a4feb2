// Package archive converts a collection to and from a zip archive.
//
// Layout:
//
//	collectionInfo.json   metadata record, icon omitted
//	characters.json       all characters ordered by id, avatars omitted
//	icon.webp             optional collection icon
//	avatars/<id>.webp     optional avatar of character <id>
package archive

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/store"
)

const (
	InfoEntry       = "collectionInfo.json"
	CharactersEntry = "characters.json"
	IconEntry       = "icon.webp"
	AvatarDir       = "avatars/"
	Ext             = ".zip"

	imageExt = ".webp"
)

// AvatarEntry is the archive path of a character avatar.
func AvatarEntry(id int64) string {
	return AvatarDir + strconv.FormatInt(id, 10) + imageExt
}

// File is a finished archive together with its suggested file name.
type File struct {
	Name string
	Data []byte
}

// Source is the read side of a collection namespace.
type Source interface {
	Info(ctx context.Context) (*models.CollectionInfo, error)
	Characters(ctx context.Context) ([]models.Character, error)
}

// Store is the namespace registry an import writes into and an export job
// reads from. *store.Manager satisfies it.
type Store interface {
	NamespaceName(uuid string) string
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string) (*store.Namespace, error)
	Open(ctx context.Context, name string) (*store.Namespace, error)
}

var fileNameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "\x00", "")

// FileName suggests "<name>.zip", falling back to the uuid when the
// collection has no name.
func FileName(info *models.CollectionInfo) string {
	base := strings.TrimSpace(fileNameReplacer.Replace(info.Name))
	if base == "" || base == "." || base == ".." {
		base = info.UUID
	}
	return base + Ext
}

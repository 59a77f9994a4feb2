package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
)

// Import recreates the collection stored in data and returns its uuid.
//
// The embedded uuid is kept, so importing the same archive twice fails with
// common.ErrCollectionExists. Malformed archives fail with
// common.ErrArchiveFormat before any namespace is created. Characters are
// inserted one by one; a failure part way leaves the earlier ones in place.
func Import(ctx context.Context, st Store, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrArchiveFormat, err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	var info models.CollectionInfo
	if err := readJSON(entries, InfoEntry, &info); err != nil {
		return "", err
	}
	var chars []models.Character
	if err := readJSON(entries, CharactersEntry, &chars); err != nil {
		return "", err
	}

	if _, err := uuid.Parse(info.UUID); err != nil {
		return "", fmt.Errorf("%w: bad collection uuid %q", common.ErrArchiveFormat, info.UUID)
	}

	icon, err := readOptional(entries, IconEntry)
	if err != nil {
		return "", err
	}
	info.Icon = icon

	name := st.NamespaceName(info.UUID)
	exists, err := st.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if exists {
		return "", fmt.Errorf("%w: %s", common.ErrCollectionExists, info.UUID)
	}

	ns, err := st.Create(ctx, name)
	if err != nil {
		return "", err
	}
	defer ns.Close()

	if err := ns.InfoRepo().Add(ctx, &info); err != nil {
		return "", err
	}

	for i := range chars {
		c := &chars[i]
		avatar, err := readOptional(entries, AvatarEntry(c.ID))
		if err != nil {
			return "", err
		}
		c.Avatar = avatar
		if _, err := ns.CharacterRepo().Add(ctx, c); err != nil {
			return "", fmt.Errorf("import character %d: %w", c.ID, err)
		}
	}

	return info.UUID, nil
}

func readJSON(entries map[string]*zip.File, name string, v any) error {
	f, ok := entries[name]
	if !ok {
		return fmt.Errorf("%w: missing %s", common.ErrArchiveFormat, name)
	}
	b, err := readEntry(f)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: parse %s: %v", common.ErrArchiveFormat, name, err)
	}
	return nil
}

func readOptional(entries map[string]*zip.File, name string) ([]byte, error) {
	f, ok := entries[name]
	if !ok {
		return nil, nil
	}
	return readEntry(f)
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", common.ErrArchiveFormat, f.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrArchiveFormat, f.Name, err)
	}
	return b, nil
}

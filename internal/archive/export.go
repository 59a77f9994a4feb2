package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/klauspost/compress/zip"
)

// Export serializes the collection behind src into a zip archive.
func Export(ctx context.Context, src Source) (*File, error) {
	info, err := src.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("read collection info: %w", err)
	}
	if info == nil {
		return nil, fmt.Errorf("%w: collection has no metadata", common.ErrCollectionNotFound)
	}

	chars, err := src.Characters(ctx)
	if err != nil {
		return nil, fmt.Errorf("read characters: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	if err := writeJSON(zw, InfoEntry, info); err != nil {
		return nil, err
	}
	if chars == nil {
		chars = make([]models.Character, 0)
	}
	if err := writeJSON(zw, CharactersEntry, chars); err != nil {
		return nil, err
	}

	if len(info.Icon) > 0 {
		if err := writeEntry(zw, IconEntry, info.Icon); err != nil {
			return nil, err
		}
	}

	if _, err := zw.Create(AvatarDir); err != nil {
		return nil, fmt.Errorf("create %s: %w", AvatarDir, err)
	}
	for i := range chars {
		if len(chars[i].Avatar) == 0 {
			continue
		}
		if err := writeEntry(zw, AvatarEntry(chars[i].ID), chars[i].Avatar); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	return &File{Name: FileName(info), Data: buf.Bytes()}, nil
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeEntry(zw, name, b)
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/client/services"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs one command line against a fresh command tree and returns
// what it printed.
func execute(t *testing.T, cs services.CollectionService, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(cs, strings.NewReader(""), &out)
	defer a.Close(context.Background())

	cmd := NewRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedCollection(t *testing.T, cs services.CollectionService) string {
	t.Helper()
	ctx := context.Background()
	id, err := cs.Create(ctx, "Heroes")
	require.NoError(t, err)

	chars, err := cs.Open(ctx, id)
	require.NoError(t, err)
	defer chars.Close()

	for _, c := range []models.Character{
		{Name: "Alice", Properties: []models.Property{{Name: "age", Value: "16"}}},
		{Name: "Bob", Properties: []models.Property{{Name: "age", Value: "12"}}},
		{Name: "Carol", Properties: []models.Property{{Name: "age", Value: "30"}}},
	} {
		_, err := chars.Add(ctx, &c)
		require.NoError(t, err)
	}
	return id
}

func TestRoot_CreateAndList(t *testing.T) {
	cs := newTestService(t, nil)

	out, err := execute(t, cs, "create", "Big", "Heroes")
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = execute(t, cs, "list")
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Big Heroes")
}

func TestRoot_Search(t *testing.T) {
	cs := newTestService(t, nil)
	id := seedCollection(t, cs)

	out, err := execute(t, cs, "search", id, "age > 15", "--sort", "name desc")
	require.NoError(t, err)
	assert.NotContains(t, out, "Bob")
	assert.Less(t, strings.Index(out, "Carol"), strings.Index(out, "Alice"))

	out, err = execute(t, cs, "search", models.EditorPath(id))
	require.NoError(t, err)
	assert.Contains(t, out, "Showing everything, sorted by createdAt asc")
	assert.Contains(t, out, "Bob")

	_, err = execute(t, cs, "search", id, "nonsense")
	require.ErrorIs(t, err, common.ErrValidation)
	assert.True(t, Shown(err))
}

func TestRoot_ExportImportDelete(t *testing.T) {
	cs := newTestService(t, nil)
	id := seedCollection(t, cs)
	path := filepath.Join(t.TempDir(), "out.zip")

	out, err := execute(t, cs, "export", id, "-o", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	out, err = execute(t, cs, "import", path)
	require.ErrorIs(t, err, common.ErrCollectionExists)
	assert.True(t, strings.HasPrefix(out, "import failed: "))

	_, err = execute(t, cs, "delete", id)
	require.NoError(t, err)

	other := newTestService(t, nil)
	out, err = execute(t, other, "import", path)
	require.NoError(t, err)
	assert.Equal(t, id+"\n", out)
}

func TestRoot_ExportDefaultsToArchiveName(t *testing.T) {
	cs := newTestService(t, nil)
	id := seedCollection(t, cs)

	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })

	out, err := execute(t, cs, "export", id)
	require.NoError(t, err)
	assert.Equal(t, "Heroes.zip\n", out)

	_, err = os.Stat(filepath.Join(dir, "Heroes.zip"))
	require.NoError(t, err)
}

func TestRoot_ConfigFlagsAreIgnored(t *testing.T) {
	cs := newTestService(t, nil)

	_, err := execute(t, cs, "-d", "somewhere", "--log-format=json", "list")
	require.NoError(t, err)
}

func TestRoot_Errors(t *testing.T) {
	cs := newTestService(t, nil)

	_, err := execute(t, cs, "frobnicate")
	require.Error(t, err)
	assert.False(t, Shown(err))

	out, err := execute(t, cs, "backup", "0b6f3b0e-0000-4000-8000-000000000000")
	require.ErrorIs(t, err, common.ErrBackupDisabled)
	assert.Equal(t, "backup failed: backup storage is not configured\n", out)

	_, err = execute(t, cs, "delete", "a/b")
	require.ErrorIs(t, err, common.ErrValidation)
}

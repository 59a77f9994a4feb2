package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/logging"
	"github.com/dmitrijs2005/charkeeper/internal/store"
	"github.com/dmitrijs2005/charkeeper/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/text/language"
)

type fakeBackups struct {
	objects map[string][]byte
	err     error
}

func (f *fakeBackups) Put(_ context.Context, uuid, file string, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := "collections/" + uuid + "/" + file
	f.objects[key] = append([]byte(nil), data...)
	return key, nil
}

func (f *fakeBackups) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, common.ErrCollectionNotFound
	}
	return b, nil
}

func (f *fakeBackups) PresignGet(_ context.Context, key string) (string, error) {
	return "https://backup.example/" + key, nil
}

// clock hands out strictly increasing instants.
type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

type fixture struct {
	svc     *collectionService
	store   *store.Manager
	backups *fakeBackups
	spans   *tracetest.SpanRecorder
	logs    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	m, err := store.NewManager(t.TempDir(), "test-", nil)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger, err := logging.New(logging.FormatText, "debug", &logs)
	require.NoError(t, err)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	backups := &fakeBackups{objects: map[string][]byte{}}
	svc := NewCollectionService(m, backups, language.Und, logger, telemetry.NewReporter(tp)).(*collectionService)
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc.now = c.now

	return &fixture{svc: svc, store: m, backups: backups, spans: sr, logs: &logs}
}

func TestCreate_ValidationAndDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "   ")
	require.ErrorIs(t, err, common.ErrValidation)

	id, err := f.svc.Create(ctx, " Heroes ")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = f.svc.Create(ctx, "Heroes")
	require.ErrorIs(t, err, common.ErrDuplicateName)

	assert.Empty(t, f.spans.Ended(), "domain errors are not reported")
}

func TestOpen_Missing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Open(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, common.ErrCollectionNotFound)
}

func TestRecent_OrderedByLastTouch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, "A")
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, "B")
	require.NoError(t, err)

	// A namespace without metadata is skipped.
	ns, err := f.store.Create(ctx, f.store.NamespaceName("empty"))
	require.NoError(t, err)
	require.NoError(t, ns.Close())

	infos, err := f.svc.Recent(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, b, infos[0].UUID)

	chars, err := f.svc.Open(ctx, a)
	require.NoError(t, err)
	_, err = chars.Add(ctx, &models.Character{Name: "x"})
	require.NoError(t, err)
	require.NoError(t, chars.Close())

	infos, err = f.svc.Recent(ctx)
	require.NoError(t, err)
	assert.Equal(t, a, infos[0].UUID, "adding a character touches the collection")
}

func TestUpdateInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.Create(ctx, "A")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "B")
	require.NoError(t, err)

	before, err := f.svc.Recent(ctx)
	require.NoError(t, err)

	tmpl := "{{ age }}"
	desc := "party"
	info, err := f.svc.UpdateInfo(ctx, a, models.InfoPatch{Description: &desc, CharacterDescription: &tmpl, Icon: []byte{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "party", info.Description)
	assert.Equal(t, []byte{1, 2}, info.Icon)
	assert.True(t, info.UpdatedAt.After(before[0].UpdatedAt))

	dup := "B"
	_, err = f.svc.UpdateInfo(ctx, a, models.InfoPatch{Name: &dup})
	require.ErrorIs(t, err, common.ErrDuplicateName)

	same := "A"
	_, err = f.svc.UpdateInfo(ctx, a, models.InfoPatch{Name: &same})
	require.NoError(t, err, "keeping its own name is not a duplicate")

	blank := ""
	_, err = f.svc.UpdateInfo(ctx, a, models.InfoPatch{Name: &blank})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestExportImport_IntoAnotherDataDir(t *testing.T) {
	src := newFixture(t)
	ctx := context.Background()

	id, err := src.svc.Create(ctx, "Heroes")
	require.NoError(t, err)
	chars, err := src.svc.Open(ctx, id)
	require.NoError(t, err)
	_, err = chars.Add(ctx, &models.Character{Name: "A", Avatar: []byte{9, 9}})
	require.NoError(t, err)
	require.NoError(t, chars.Close())

	file, err := src.svc.Export(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Heroes.zip", file.Name)

	dst := newFixture(t)
	got, err := dst.svc.Import(ctx, file.Data)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = dst.svc.Import(ctx, file.Data)
	require.ErrorIs(t, err, common.ErrCollectionExists)

	_, err = dst.svc.Import(ctx, []byte("junk"))
	require.ErrorIs(t, err, common.ErrArchiveFormat)
	assert.Empty(t, dst.spans.Ended())
}

func TestBackupRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Create(ctx, "Heroes")
	require.NoError(t, err)

	key, err := f.svc.Backup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "collections/"+id+"/Heroes.zip", key)

	u, err := f.svc.BackupURL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, u, key)

	_, err = f.svc.Restore(ctx, key)
	require.ErrorIs(t, err, common.ErrCollectionExists)

	require.NoError(t, f.svc.Delete(ctx, id))
	got, err := f.svc.Restore(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = f.svc.Restore(ctx, "missing")
	require.ErrorIs(t, err, common.ErrCollectionNotFound)
}

func TestBackup_Disabled(t *testing.T) {
	f := newFixture(t)
	f.svc.backups = nil
	ctx := context.Background()

	_, err := f.svc.Backup(ctx, "x")
	require.ErrorIs(t, err, common.ErrBackupDisabled)
	_, err = f.svc.Restore(ctx, "x")
	require.ErrorIs(t, err, common.ErrBackupDisabled)
	_, err = f.svc.BackupURL(ctx, "x")
	require.ErrorIs(t, err, common.ErrBackupDisabled)
}

func TestBackup_UnexpectedErrorIsReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Create(ctx, "Heroes")
	require.NoError(t, err)

	boom := errors.New("bucket unreachable")
	f.backups.err = boom

	_, err = f.svc.Backup(ctx, id)
	require.ErrorIs(t, err, boom)

	spans := f.spans.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "collection.backup", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, f.logs.String(), "bucket unreachable")
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.svc.Create(ctx, "Heroes")
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, id))

	_, err = f.svc.Open(ctx, id)
	require.ErrorIs(t, err, common.ErrCollectionNotFound)
	require.ErrorIs(t, f.svc.Delete(ctx, id), common.ErrCollectionNotFound)
}

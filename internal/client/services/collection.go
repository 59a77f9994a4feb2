package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/archive"
	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/logging"
	"github.com/dmitrijs2005/charkeeper/internal/telemetry"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// NamespaceStore is the part of *store.Manager the services need.
type NamespaceStore interface {
	archive.Store
	UUID(name string) string
	List(ctx context.Context) ([]string, error)
	Remove(ctx context.Context, name string) error
}

// BackupStore keeps archives off the machine. *backup.S3Store satisfies it.
type BackupStore interface {
	Put(ctx context.Context, uuid, file string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

type CollectionService interface {
	// Create allocates a uuid, creates the namespace and writes the initial
	// metadata. Names must be unique among local collections.
	Create(ctx context.Context, name string) (string, error)

	// Open returns a character service bound to the collection. The caller
	// must Close it.
	Open(ctx context.Context, uuid string) (CharacterService, error)

	// Recent lists collection metadata, most recently updated first.
	Recent(ctx context.Context) ([]models.CollectionInfo, error)

	UpdateInfo(ctx context.Context, uuid string, patch models.InfoPatch) (*models.CollectionInfo, error)
	Export(ctx context.Context, uuid string) (*archive.File, error)
	Import(ctx context.Context, data []byte) (string, error)

	// Backup uploads an archive of the collection and returns its key.
	Backup(ctx context.Context, uuid string) (string, error)
	// Restore imports the archive stored under key.
	Restore(ctx context.Context, key string) (string, error)
	// BackupURL returns a temporary download link for key.
	BackupURL(ctx context.Context, key string) (string, error)

	Delete(ctx context.Context, uuid string) error
}

type collectionService struct {
	store   NamespaceStore
	backups BackupStore
	runner  *archive.Runner
	lang    language.Tag
	obs     observer
	now     func() time.Time
}

// NewCollectionService wires the collection use cases. backups may be nil,
// in which case Backup, Restore and BackupURL fail with
// common.ErrBackupDisabled.
func NewCollectionService(st NamespaceStore, backups BackupStore, lang language.Tag,
	logger logging.Logger, reporter telemetry.Reporter) CollectionService {
	return &collectionService{
		store:   st,
		backups: backups,
		runner:  archive.NewRunner(st),
		lang:    lang,
		obs:     newObserver(logger, reporter),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *collectionService) Create(ctx context.Context, name string) (string, error) {
	id, err := s.create(ctx, name)
	return id, s.obs.done(ctx, "collection.create", id, err)
}

func (s *collectionService) create(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: collection name is required", common.ErrValidation)
	}
	if err := s.ensureUniqueName(ctx, name, ""); err != nil {
		return "", err
	}

	id := uuid.NewString()
	ns, err := s.store.Create(ctx, s.store.NamespaceName(id))
	if err != nil {
		return "", err
	}
	defer ns.Close()

	now := s.now()
	info := &models.CollectionInfo{UUID: id, Name: name, CreatedAt: now, UpdatedAt: now}
	if err := ns.InfoRepo().Add(ctx, info); err != nil {
		return "", err
	}

	s.obs.logger.Info(ctx, "collection created", "collection", id, "name", name)
	return id, nil
}

// ensureUniqueName fails with common.ErrDuplicateName when another
// collection (other than self) already uses name.
func (s *collectionService) ensureUniqueName(ctx context.Context, name, self string) error {
	infos, err := s.recent(ctx)
	if err != nil {
		return err
	}
	for _, info := range infos {
		if info.Name == name && info.UUID != self {
			return fmt.Errorf("%w: %q", common.ErrDuplicateName, name)
		}
	}
	return nil
}

func (s *collectionService) Open(ctx context.Context, id string) (CharacterService, error) {
	ns, err := s.store.Open(ctx, s.store.NamespaceName(id))
	if err != nil {
		return nil, s.obs.done(ctx, "collection.open", id, err)
	}
	return newCharacterService(id, ns, s.lang, s.obs, s.now), nil
}

func (s *collectionService) Recent(ctx context.Context) ([]models.CollectionInfo, error) {
	infos, err := s.recent(ctx)
	return infos, s.obs.done(ctx, "collection.recent", "", err)
}

func (s *collectionService) recent(ctx context.Context) ([]models.CollectionInfo, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]models.CollectionInfo, 0, len(names))
	for _, name := range names {
		info, err := s.readInfo(ctx, name)
		if err != nil {
			s.obs.logger.Warn(ctx, "skipping unreadable namespace", "namespace", name, "error", err)
			continue
		}
		if info != nil {
			infos = append(infos, *info)
		}
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

func (s *collectionService) readInfo(ctx context.Context, name string) (*models.CollectionInfo, error) {
	ns, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer ns.Close()
	return ns.Info(ctx)
}

func (s *collectionService) UpdateInfo(ctx context.Context, id string, patch models.InfoPatch) (*models.CollectionInfo, error) {
	info, err := s.updateInfo(ctx, id, patch)
	return info, s.obs.done(ctx, "collection.update", id, err)
}

func (s *collectionService) updateInfo(ctx context.Context, id string, patch models.InfoPatch) (*models.CollectionInfo, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: collection name is required", common.ErrValidation)
		}
		if err := s.ensureUniqueName(ctx, name, id); err != nil {
			return nil, err
		}
		patch.Name = &name
	}

	ns, err := s.store.Open(ctx, s.store.NamespaceName(id))
	if err != nil {
		return nil, err
	}
	defer ns.Close()

	info, err := ns.Info(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, fmt.Errorf("%w: %s has no metadata", common.ErrCollectionNotFound, id)
	}

	patch.Apply(info)
	info.UpdatedAt = s.now()
	if err := ns.InfoRepo().Update(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (s *collectionService) Export(ctx context.Context, id string) (*archive.File, error) {
	res := s.runner.Export(ctx, archive.ExportJob{Namespace: s.store.NamespaceName(id)})
	if res.Err != nil {
		return nil, s.obs.done(ctx, "collection.export", id, res.Err)
	}
	s.obs.logger.Info(ctx, "collection exported", "collection", id, "file", res.Name, "bytes", len(res.File))
	return &archive.File{Name: res.Name, Data: res.File}, nil
}

func (s *collectionService) Import(ctx context.Context, data []byte) (string, error) {
	res := s.runner.Import(ctx, archive.ImportJob{Data: data})
	if !res.Success {
		return "", s.obs.done(ctx, "collection.import", "", res.Err)
	}
	s.obs.logger.Info(ctx, "collection imported", "collection", res.UUID)
	return res.UUID, nil
}

func (s *collectionService) Backup(ctx context.Context, id string) (string, error) {
	if s.backups == nil {
		return "", common.ErrBackupDisabled
	}
	f, err := s.Export(ctx, id)
	if err != nil {
		return "", err
	}
	key, err := s.backups.Put(ctx, id, f.Name, f.Data)
	return key, s.obs.done(ctx, "collection.backup", id, err)
}

func (s *collectionService) Restore(ctx context.Context, key string) (string, error) {
	if s.backups == nil {
		return "", common.ErrBackupDisabled
	}
	data, err := s.backups.Get(ctx, key)
	if err != nil {
		return "", s.obs.done(ctx, "collection.restore", "", err)
	}
	return s.Import(ctx, data)
}

func (s *collectionService) BackupURL(ctx context.Context, key string) (string, error) {
	if s.backups == nil {
		return "", common.ErrBackupDisabled
	}
	u, err := s.backups.PresignGet(ctx, key)
	return u, s.obs.done(ctx, "collection.backup_url", "", err)
}

func (s *collectionService) Delete(ctx context.Context, id string) error {
	err := s.store.Remove(ctx, s.store.NamespaceName(id))
	if err == nil {
		s.obs.logger.Info(ctx, "collection deleted", "collection", id)
	}
	return s.obs.done(ctx, "collection.delete", id, err)
}

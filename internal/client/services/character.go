package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/query"
	"github.com/dmitrijs2005/charkeeper/internal/store"
	"golang.org/x/text/language"
)

// ResolvedRelation is a relation whose target still exists.
type ResolvedRelation struct {
	Label     string
	Character models.Character
}

type CharacterService interface {
	// UUID is the collection the service is bound to.
	UUID() string
	Info(ctx context.Context) (*models.CollectionInfo, error)

	Add(ctx context.Context, c *models.Character) (int64, error)
	Update(ctx context.Context, c *models.Character) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.Character, error)
	List(ctx context.Context) ([]models.Character, error)

	// Search filters and sorts the collection. No clauses means no filter.
	Search(ctx context.Context, clauses []query.SearchParam, sort query.SortParam) ([]models.Character, error)

	// Relations resolves the relation targets of c in relation order.
	// Targets that no longer exist are skipped.
	Relations(ctx context.Context, c *models.Character) ([]ResolvedRelation, error)

	// Describe renders the collection's character description template for c.
	Describe(ctx context.Context, c *models.Character) (string, error)

	Close() error
}

type characterService struct {
	uuid      string
	ns        *store.Namespace
	evaluator *query.Evaluator
	obs       observer
	now       func() time.Time
}

func newCharacterService(uuid string, ns *store.Namespace, lang language.Tag, obs observer, now func() time.Time) *characterService {
	return &characterService{
		uuid:      uuid,
		ns:        ns,
		evaluator: query.NewEvaluator(ns.CharacterRepo(), query.WithLanguage(lang)),
		obs:       obs,
		now:       now,
	}
}

func (s *characterService) UUID() string { return s.uuid }

func (s *characterService) Info(ctx context.Context) (*models.CollectionInfo, error) {
	info, err := s.ns.Info(ctx)
	if err == nil && info == nil {
		err = fmt.Errorf("%w: %s has no metadata", common.ErrCollectionNotFound, s.uuid)
	}
	return info, s.obs.done(ctx, "character.info", s.uuid, err)
}

func (s *characterService) Add(ctx context.Context, c *models.Character) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	now := s.now()
	c.ID = 0
	c.CreatedAt = now
	c.UpdatedAt = now

	id, err := s.ns.CharacterRepo().Add(ctx, c)
	if err == nil {
		err = s.touch(ctx, now)
	}
	return id, s.obs.done(ctx, "character.add", s.uuid, err)
}

func (s *characterService) Update(ctx context.Context, c *models.Character) error {
	if err := c.Validate(); err != nil {
		return err
	}

	err := func() error {
		existing, err := s.ns.CharacterRepo().Get(ctx, c.ID)
		if err != nil {
			return err
		}
		now := s.now()
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = now
		if err := s.ns.CharacterRepo().Update(ctx, c); err != nil {
			return err
		}
		return s.touch(ctx, now)
	}()
	return s.obs.done(ctx, "character.update", s.uuid, err)
}

func (s *characterService) Delete(ctx context.Context, id int64) error {
	err := s.ns.CharacterRepo().Delete(ctx, id)
	if err == nil {
		err = s.touch(ctx, s.now())
	}
	return s.obs.done(ctx, "character.delete", s.uuid, err)
}

func (s *characterService) Get(ctx context.Context, id int64) (*models.Character, error) {
	c, err := s.ns.CharacterRepo().Get(ctx, id)
	return c, s.obs.done(ctx, "character.get", s.uuid, err)
}

func (s *characterService) List(ctx context.Context) ([]models.Character, error) {
	list, err := s.ns.Characters(ctx)
	return list, s.obs.done(ctx, "character.list", s.uuid, err)
}

func (s *characterService) Search(ctx context.Context, clauses []query.SearchParam, sort query.SortParam) ([]models.Character, error) {
	base, err := s.ns.Characters(ctx)
	if err != nil {
		return nil, s.obs.done(ctx, "character.search", s.uuid, err)
	}
	out, err := s.evaluator.Evaluate(ctx, base, clauses, sort)
	return out, s.obs.done(ctx, "character.search", s.uuid, err)
}

func (s *characterService) Relations(ctx context.Context, c *models.Character) ([]ResolvedRelation, error) {
	if len(c.Relations) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(c.Relations))
	for i, r := range c.Relations {
		ids[i] = r.Target
	}
	targets, err := s.ns.CharacterRepo().AnyOf(ctx, ids)
	if err != nil {
		return nil, s.obs.done(ctx, "character.relations", s.uuid, err)
	}

	byID := make(map[int64]models.Character, len(targets))
	for _, t := range targets {
		byID[t.ID] = t
	}

	out := make([]ResolvedRelation, 0, len(c.Relations))
	for _, r := range c.Relations {
		if t, ok := byID[r.Target]; ok {
			out = append(out, ResolvedRelation{Label: r.Label, Character: t})
		}
	}
	return out, nil
}

func (s *characterService) Describe(ctx context.Context, c *models.Character) (string, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.DescribeCharacter(c), nil
}

func (s *characterService) Close() error {
	return s.ns.Close()
}

func (s *characterService) touch(ctx context.Context, at time.Time) error {
	return s.ns.InfoRepo().Touch(ctx, at)
}

package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openCollection(t *testing.T, f *fixture) CharacterService {
	t.Helper()
	id, err := f.svc.Create(context.Background(), "Heroes")
	require.NoError(t, err)
	cs, err := f.svc.Open(context.Background(), id)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestCharacter_AddUpdateDeleteTouchCollection(t *testing.T) {
	f := newFixture(t)
	cs := openCollection(t, f)
	ctx := context.Background()

	info0, err := cs.Info(ctx)
	require.NoError(t, err)

	_, err = cs.Add(ctx, &models.Character{Name: ""})
	require.ErrorIs(t, err, common.ErrValidation)

	c := &models.Character{Name: "Alice", Properties: []models.Property{{Name: "age", Value: "10"}}}
	id, err := cs.Add(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)

	info1, err := cs.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info1.UpdatedAt.After(info0.UpdatedAt))

	got, err := cs.Get(ctx, id)
	require.NoError(t, err)
	got.Note = "<i>hi</i>"
	got.CreatedAt = got.CreatedAt.AddDate(-1, 0, 0)
	require.NoError(t, cs.Update(ctx, got))

	again, err := cs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "<i>hi</i>", again.Note)
	assert.True(t, again.CreatedAt.Equal(c.CreatedAt), "creation time cannot be rewritten")
	assert.True(t, again.UpdatedAt.After(again.CreatedAt))

	info2, err := cs.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info2.UpdatedAt.After(info1.UpdatedAt))

	require.NoError(t, cs.Delete(ctx, id))
	info3, err := cs.Info(ctx)
	require.NoError(t, err)
	assert.True(t, info3.UpdatedAt.After(info2.UpdatedAt))

	_, err = cs.Get(ctx, id)
	require.ErrorIs(t, err, common.ErrCharacterNotFound)
	require.ErrorIs(t, cs.Update(ctx, got), common.ErrCharacterNotFound)
	assert.Empty(t, f.spans.Ended())
}

func TestCharacter_SearchUsesIndexes(t *testing.T) {
	f := newFixture(t)
	cs := openCollection(t, f)
	ctx := context.Background()

	for _, c := range []*models.Character{
		{Name: "A", Properties: []models.Property{{Name: "age", Value: "10"}}},
		{Name: "B", Properties: []models.Property{{Name: "age", Value: "20"}}},
		{Name: "C", Properties: []models.Property{{Name: "rank", Value: "1"}}},
	} {
		_, err := cs.Add(ctx, c)
		require.NoError(t, err)
	}

	out, err := cs.Search(ctx, []query.SearchParam{
		{Type: query.SearchProperty, Operation: query.OpGreater, Key: "age", Value: "15"},
	}, query.DefaultSort)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].Name)

	out, err = cs.Search(ctx, nil, query.SortParam{Type: query.SortProperty, Order: query.Desc, Value: "age"})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, []string{out[0].Name, out[1].Name, out[2].Name})
}

func TestCharacter_RelationsSkipDangling(t *testing.T) {
	f := newFixture(t)
	cs := openCollection(t, f)
	ctx := context.Background()

	aliceID, err := cs.Add(ctx, &models.Character{Name: "Alice"})
	require.NoError(t, err)
	bobID, err := cs.Add(ctx, &models.Character{Name: "Bob"})
	require.NoError(t, err)

	carol := &models.Character{Name: "Carol", Relations: []models.Relation{
		{Target: bobID, Label: "friend"},
		{Target: aliceID, Label: "sister"},
	}}
	_, err = cs.Add(ctx, carol)
	require.NoError(t, err)

	require.NoError(t, cs.Delete(ctx, aliceID))

	rels, err := cs.Relations(ctx, carol)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "friend", rels[0].Label)
	assert.Equal(t, "Bob", rels[0].Character.Name)

	stored, err := cs.Get(ctx, carol.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Relations, 2, "dangling relations are kept")
}

func TestCharacter_Describe(t *testing.T) {
	f := newFixture(t)
	cs := openCollection(t, f)
	ctx := context.Background()

	tmpl := "{{ age }} years, {{ class }}"
	_, err := f.svc.UpdateInfo(ctx, cs.UUID(), models.InfoPatch{CharacterDescription: &tmpl})
	require.NoError(t, err)

	got, err := cs.Describe(ctx, &models.Character{Properties: []models.Property{{Name: "age", Value: "30"}}})
	require.NoError(t, err)
	assert.Equal(t, "30 years, -", got)
}

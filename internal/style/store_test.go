package style_test

import (
	"context"
	"testing"

	"echomemo/internal/db/dbtest"
	"echomemo/internal/style"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(name string) style.Draft {
	return style.Draft{Name: name, Description: "gentle words", Prompt: "be gentle"}
}

func TestStore_CreateRejectsBuiltinAndDuplicateNames(t *testing.T) {
	ctx := context.Background()
	s := &style.Store{DB: dbtest.Open(t)}

	_, err := s.Create(ctx, 1, draft("喵喵"))
	assert.ErrorIs(t, err, style.ErrNameTaken)

	row, err := s.Create(ctx, 1, draft(" 温柔 "))
	require.NoError(t, err)
	assert.Equal(t, "温柔", row.Name)
	assert.Equal(t, style.NeutralColor, row.Color)

	_, err = s.Create(ctx, 1, draft("温柔"))
	assert.ErrorIs(t, err, style.ErrNameTaken)

	// names are unique per user only
	_, err = s.Create(ctx, 2, draft("温柔"))
	assert.NoError(t, err)
}

func TestStore_UpdateScopingAndConflicts(t *testing.T) {
	ctx := context.Background()
	s := &style.Store{DB: dbtest.Open(t)}

	a, err := s.Create(ctx, 1, draft("calm"))
	require.NoError(t, err)
	_, err = s.Create(ctx, 1, draft("bright"))
	require.NoError(t, err)

	_, err = s.Update(ctx, 2, a.ID, draft("stolen"))
	assert.ErrorIs(t, err, style.ErrNotFound)

	_, err = s.Update(ctx, 1, a.ID, draft("哲学"))
	assert.ErrorIs(t, err, style.ErrNameTaken)

	_, err = s.Update(ctx, 1, a.ID, draft("bright"))
	assert.ErrorIs(t, err, style.ErrNameTaken)

	got, err := s.Update(ctx, 1, a.ID, style.Draft{Name: "serene", Description: "soft", Prompt: "whisper", Color: "badge-info"})
	require.NoError(t, err)
	assert.Equal(t, "serene", got.Name)
	assert.Equal(t, "whisper", got.Prompt)
	assert.Equal(t, "badge-info", got.Color)

	rows, err := s.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "serene", rows[0].Name)
}

func TestStore_DeleteScoped(t *testing.T) {
	ctx := context.Background()
	s := &style.Store{DB: dbtest.Open(t)}

	row, err := s.Create(ctx, 1, draft("calm"))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Delete(ctx, 2, row.ID), style.ErrNotFound)
	require.NoError(t, s.Delete(ctx, 1, row.ID))
	assert.ErrorIs(t, s.Delete(ctx, 1, row.ID), style.ErrNotFound)

	rows, err := s.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

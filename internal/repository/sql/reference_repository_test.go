package sql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBrandRepository(db)
	ctx := context.Background()

	t.Run("successful find", func(t *testing.T) {
		mock.ExpectPrepare("SELECT id, name, country_code FROM brands WHERE id = \\$1").
			ExpectQuery().
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "country_code"}).AddRow(int64(1), "Farm", "SI"))

		brand, err := repo.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, &model.Brand{ID: 1, Name: "Farm", CountryCode: "SI"}, brand)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("brand not found", func(t *testing.T) {
		mock.ExpectPrepare("SELECT id, name, country_code FROM brands").
			ExpectQuery().
			WithArgs(int64(2)).
			WillReturnError(sql.ErrNoRows)

		brand, err := repo.FindByID(ctx, 2)
		assert.Nil(t, brand)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock.ExpectPrepare("SELECT id, name, country_code FROM brands").
			ExpectQuery().
			WillReturnError(errors.New("timeout"))

		_, err := repo.FindByID(ctx, 3)
		require.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCategoryRepository_FindByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCategoryRepository(db)
	ctx := context.Background()

	t.Run("returns the categories that exist", func(t *testing.T) {
		mock.ExpectPrepare("SELECT id, name FROM categories WHERE id = ANY\\(\\$1\\)").
			ExpectQuery().
			WithArgs(pq.Array([]int64{1, 2, 3})).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(int64(1), "Dairy").
				AddRow(int64(3), "Fresh"))

		categories, err := repo.FindByIDs(ctx, []int64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, []model.Category{{ID: 1, Name: "Dairy"}, {ID: 3, Name: "Fresh"}}, categories)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no ids skips the query", func(t *testing.T) {
		categories, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, categories)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTranslateError(t *testing.T) {
	t.Run("pgx foreign key violation", func(t *testing.T) {
		err := TranslateError(&pgconn.PgError{Code: "23503", ConstraintName: "products_brand_id_fkey", Detail: "missing"})

		var fkErr *repository.ForeignKeyError
		require.ErrorAs(t, err, &fkErr)
		assert.Equal(t, "products_brand_id_fkey", fkErr.Constraint)
	})

	t.Run("pq unique violation", func(t *testing.T) {
		err := TranslateError(&pq.Error{Code: "23505", Detail: "duplicate"})

		var uniqueErr *repository.UniqueConstraintError
		require.ErrorAs(t, err, &uniqueErr)
		assert.Equal(t, "resource must be unique: duplicate", uniqueErr.Error())
	})

	t.Run("other errors pass through", func(t *testing.T) {
		original := errors.New("boom")
		assert.Same(t, original, TranslateError(original))
	})
}

package repo

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productCols = []string{"id", "name", "description", "price", "stock", "category", "image_url", "created_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestCreateProduct(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	id := uuid.New()
	now := time.Now()
	category := "Audio"
	p := &models.Product{
		Name: "Galaxy Buds", Description: "Wireless earbuds",
		Price: decimal.RequireFromString("2999.00"), Stock: 20, Category: &category,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products (name, description, price, stock, category, image_url)")).
		WithArgs("Galaxy Buds", "Wireless earbuds", p.Price, 20, &category, p.ImageURL).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))

	require.NoError(t, repo.CreateProduct(context.Background(), p))
	assert.Equal(t, id, p.ID)
	assert.Equal(t, now, p.CreatedAt)
}

func TestProductByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ProductByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductsByIDsScansRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	p1, p2 := uuid.New(), uuid.New()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = ANY($1::uuid[])")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(p1.String(), "A", "first", "100.00", 5, nil, nil, now, now).
			AddRow(p2.String(), "B", "second", "200.50", 1, "Audio", "https://img/b.png", now, now))

	products, err := repo.ProductsByIDs(context.Background(), []uuid.UUID{p1, p2, uuid.New()})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, p1, products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(100)))
	assert.Nil(t, products[0].Category)
	assert.Equal(t, "Audio", *products[1].Category)
	assert.Equal(t, "https://img/b.png", *products[1].ImageURL)
	assert.Equal(t, "200.5", products[1].Price.String())
}

func TestUpdateProductMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	p := &models.Product{ID: uuid.New(), Name: "A", Description: "d", Price: decimal.NewFromInt(1)}
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products")).
		WillReturnError(sql.ErrNoRows)

	assert.ErrorIs(t, repo.UpdateProduct(context.Background(), p), ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		db, mock := newMock(t)
		id := uuid.New()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, NewProductRepo(db).DeleteProduct(context.Background(), id))
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, NewProductRepo(db).DeleteProduct(context.Background(), uuid.New()), ErrNotFound)
	})

	t.Run("referenced by orders", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).
			WillReturnError(&pq.Error{Code: "23503"})
		assert.ErrorIs(t, NewProductRepo(db).DeleteProduct(context.Background(), uuid.New()), ErrInUse)
	})

	t.Run("driver failure", func(t *testing.T) {
		db, mock := newMock(t)
		boom := errors.New("boom")
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).WillReturnError(boom)
		assert.ErrorIs(t, NewProductRepo(db).DeleteProduct(context.Background(), uuid.New()), boom)
	})
}

func TestPaginateProductEscapesSearch(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $2 OFFSET $3")).
		WithArgs(`50\%\_off`, 10, 20).
		WillReturnRows(sqlmock.NewRows(productCols))

	products, err := repo.PaginateProduct(context.Background(), "50%_off", 10, 20)
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NotNil(t, products)
}

func TestCountProducts(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products")).
		WithArgs("galaxy").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountProducts(context.Background(), "galaxy")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCategories(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY category")).
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).
			AddRow("Audio", 2).
			AddRow("Mobile", 1))

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.CategoryCount{{Name: "Audio", Products: 2}, {Name: "Mobile", Products: 1}}, categories)
}

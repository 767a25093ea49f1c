package db

import (
	"context"
	"testing"
	"time"

	"magacin_backend/models"
	"magacin_backend/stock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedArticleAndUser(t *testing.T, r *Repo) (*models.Article, *models.User) {
	t.Helper()
	ctx := context.Background()

	a := newArticle("A1", 20, 0)
	require.NoError(t, r.CreateArticle(ctx, a))

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         "Nikolina",
		Role:         "REZERVACIJA",
		PersonalCode: "NIKOLIN",
		Email:        "nikolina@magacin.com",
	}
	require.NoError(t, r.CreateUser(ctx, u))
	return a, u
}

func TestCreateReservationReturnsJoinedRow(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	a, u := seedArticleAndUser(t, r)

	row, err := r.CreateReservation(ctx, &models.Reservation{
		ID:              uuid.NewString(),
		ArticleID:       a.ID,
		Quantity:        15,
		UserID:          u.ID,
		ReservationCode: "REZ0001",
	})
	require.NoError(t, err)
	assert.Equal(t, "A1", row.ArticleCode)
	assert.Equal(t, "Vijak M8", row.ArticleName)
	assert.Equal(t, "Nikolina", row.UserName)
	assert.Equal(t, 15, row.Quantity)
}

func TestReservationDoesNotTouchStockByDefault(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	a, u := seedArticleAndUser(t, r)

	_, err := r.CreateReservation(ctx, &models.Reservation{
		ID:              uuid.NewString(),
		ArticleID:       a.ID,
		Quantity:        15,
		UserID:          u.ID,
		ReservationCode: "REZ0001",
	})
	require.NoError(t, err)

	// 默认手工对账：预订记录存在，但 article 的计数原样
	got, err := r.FindArticleByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Reserved)
	assert.Equal(t, 20, got.Available)
}

func TestReservationAutoAdjust(t *testing.T) {
	r := setupTestRepo(t)
	r.AutoAdjust = true
	ctx := context.Background()
	a, u := seedArticleAndUser(t, r)

	_, err := r.CreateReservation(ctx, &models.Reservation{
		ID:              uuid.NewString(),
		ArticleID:       a.ID,
		Quantity:        15,
		UserID:          u.ID,
		ReservationCode: "REZ0001",
	})
	require.NoError(t, err)

	got, err := r.FindArticleByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Quantity)
	assert.Equal(t, 15, got.Reserved)
	assert.Equal(t, 5, got.Available)
}

func TestReservationAutoAdjustRollsBackWhenOverAvailable(t *testing.T) {
	r := setupTestRepo(t)
	r.AutoAdjust = true
	ctx := context.Background()
	a, u := seedArticleAndUser(t, r)

	_, err := r.CreateReservation(ctx, &models.Reservation{
		ID:              uuid.NewString(),
		ArticleID:       a.ID,
		Quantity:        25, // 超出 available=20
		UserID:          u.ID,
		ReservationCode: "REZ0001",
	})
	assert.ErrorIs(t, err, stock.ErrNegativeAvailable)

	// 预订本身也要跟着回滚
	rows, err := r.ListReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPickupAutoAdjustClampsReservedAtZero(t *testing.T) {
	r := setupTestRepo(t)
	r.AutoAdjust = true
	ctx := context.Background()
	a, u := seedArticleAndUser(t, r)

	// 先预订 5，再直接提 8：quantity 20→12，reserved 5→0（不许负）
	_, err := r.CreateReservation(ctx, &models.Reservation{
		ID:              uuid.NewString(),
		ArticleID:       a.ID,
		Quantity:        5,
		UserID:          u.ID,
		ReservationCode: "REZ0001",
	})
	require.NoError(t, err)

	_, err = r.CreatePickup(ctx, &models.Pickup{
		ID:         uuid.NewString(),
		ArticleID:  a.ID,
		Quantity:   8,
		UserID:     u.ID,
		PickupCode: "PRE0001",
	})
	require.NoError(t, err)

	got, err := r.FindArticleByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Quantity)
	assert.Equal(t, 0, got.Reserved)
	assert.Equal(t, 12, got.Available)
}

func TestEntryAutoAdjustAddsQuantity(t *testing.T) {
	r := setupTestRepo(t)
	r.AutoAdjust = true
	ctx := context.Background()
	a, _ := seedArticleAndUser(t, r)

	row, err := r.CreateEntry(ctx, &models.Entry{
		ID:        uuid.NewString(),
		ArticleID: a.ID,
		Quantity:  30,
		Price:     decimal.NewFromFloat(11.20),
		Supplier:  "Metalac",
		EntryDate: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, "A1", row.ArticleCode)

	got, err := r.FindArticleByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.Quantity)
	assert.Equal(t, 50, got.Available)
}

func TestListEntriesByEntryDateDesc(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	a, _ := seedArticleAndUser(t, r)

	older := &models.Entry{
		ID:        uuid.NewString(),
		ArticleID: a.ID,
		Quantity:  1,
		EntryDate: time.Now().Add(-48 * time.Hour),
	}
	newer := &models.Entry{
		ID:        uuid.NewString(),
		ArticleID: a.ID,
		Quantity:  2,
		EntryDate: time.Now(),
	}
	_, err := r.CreateEntry(ctx, older)
	require.NoError(t, err)
	_, err = r.CreateEntry(ctx, newer)
	require.NoError(t, err)

	rows, err := r.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestDeleteReservationMissing(t *testing.T) {
	r := setupTestRepo(t)
	err := r.DeleteReservation(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeletePickup(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	a, u := seedArticleAndUser(t, r)

	p := &models.Pickup{
		ID:         uuid.NewString(),
		ArticleID:  a.ID,
		Quantity:   1,
		UserID:     u.ID,
		PickupCode: "PRE0001",
	}
	_, err := r.CreatePickup(ctx, p)
	require.NoError(t, err)

	require.NoError(t, r.DeletePickup(ctx, p.ID))
	assert.ErrorIs(t, r.DeletePickup(ctx, p.ID), gorm.ErrRecordNotFound)
}

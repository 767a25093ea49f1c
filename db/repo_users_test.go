package db

import (
	"context"
	"testing"

	"magacin_backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, r *Repo, name, role, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Role:         role,
		PersonalCode: "AAA0000",
		Email:        email,
	}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func TestListUsersOrderedByName(t *testing.T) {
	r := setupTestRepo(t)
	seedUser(t, r, "Zoran", "PREUZIMANJE", "zoran@magacin.com")
	seedUser(t, r, "Ana", "REZERVACIJA", "ana@magacin.com")
	seedUser(t, r, "Marko", "MAGACIN_ADMIN", "marko@magacin.com")

	users, err := r.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Ana", users[0].Name)
	assert.Equal(t, "Marko", users[1].Name)
	assert.Equal(t, "Zoran", users[2].Name)
}

func TestListUsersByRole(t *testing.T) {
	r := setupTestRepo(t)
	seedUser(t, r, "Zoran", "PREUZIMANJE", "zoran@magacin.com")
	seedUser(t, r, "Ana", "REZERVACIJA", "ana@magacin.com")

	users, err := r.ListUsersByRole(context.Background(), "REZERVACIJA")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)
}

func TestFindUserByEmailExactMatch(t *testing.T) {
	r := setupTestRepo(t)
	seedUser(t, r, "Ana", "REZERVACIJA", "ana@magacin.com")

	got, err := r.FindUserByEmail(context.Background(), "ana@magacin.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	// email 在写入前就已统一成小写，查询不做大小写折叠
	_, err = r.FindUserByEmail(context.Background(), "ANA@magacin.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDuplicateUserEmail(t *testing.T) {
	r := setupTestRepo(t)
	seedUser(t, r, "Ana", "REZERVACIJA", "ana@magacin.com")

	err := r.CreateUser(context.Background(), &models.User{
		ID:           uuid.NewString(),
		Name:         "Ana Druga",
		Role:         "PREUZIMANJE",
		PersonalCode: "ANADRUG",
		Email:        "ana@magacin.com",
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUpdateUserRole(t *testing.T) {
	r := setupTestRepo(t)
	u := seedUser(t, r, "Ana", "REZERVACIJA", "ana@magacin.com")

	got, err := r.UpdateUserRole(context.Background(), u.ID, "MAGACIN_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "MAGACIN_ADMIN", got.Role)

	_, err = r.UpdateUserRole(context.Background(), uuid.NewString(), "MAGACIN_ADMIN")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteUser(t *testing.T) {
	r := setupTestRepo(t)
	u := seedUser(t, r, "Ana", "REZERVACIJA", "ana@magacin.com")

	require.NoError(t, r.DeleteUser(context.Background(), u.ID))
	assert.ErrorIs(t, r.DeleteUser(context.Background(), u.ID), gorm.ErrRecordNotFound)
}

func TestCountAdmins(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()

	n, err := r.CountAdmins(ctx, "MAGACIN_ADMIN")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	seedUser(t, r, "Marko", "MAGACIN_ADMIN", "marko@magacin.com")
	seedUser(t, r, "Ana", "REZERVACIJA", "ana@magacin.com")

	n, err = r.CountAdmins(ctx, "MAGACIN_ADMIN")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestAccountLoginSnapshot(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()

	acc := &models.Account{
		ID:           uuid.NewString(),
		Email:        "ana@magacin.com",
		PasswordHash: []byte("$2a$10$fake"),
	}
	require.NoError(t, r.CreateAccount(ctx, acc))

	require.NoError(t, r.TouchAccountLogin(ctx, acc.ID, "10.0.0.1", "test-agent"))
	require.NoError(t, r.TouchAccountLogin(ctx, acc.ID, "10.0.0.2", "test-agent"))

	got, err := r.FindAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.LoginCount)
	assert.Equal(t, "10.0.0.2", got.LastLoginIP)
	require.NotNil(t, got.LastLoginAt)
	require.NotNil(t, got.LastSeenAt)
}

func TestFindAccountByEmailMissing(t *testing.T) {
	r := setupTestRepo(t)
	_, err := r.FindAccountByEmail(context.Background(), "none@magacin.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

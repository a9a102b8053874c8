package repository

import (
	"testing"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/db"
	apperrors "github.com/smousavi/bazaarche-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserRepoTest(t *testing.T) UserRepository {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return NewUserRepository(testDB)
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	userRepo := setupUserRepoTest(t)

	user := &model.User{
		Name:         "علی رضایی",
		Phone:        "09121112233",
		Username:     "09121112233",
		PasswordHash: "hashed",
	}
	require.NoError(t, userRepo.Create(user))
	assert.NotZero(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)

	byPhone, err := userRepo.FindByPhone("09121112233")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)

	byUsername, err := userRepo.FindByUsername("09121112233")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	_, err = userRepo.FindByPhone("09120000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_DuplicatePhone(t *testing.T) {
	userRepo := setupUserRepoTest(t)

	require.NoError(t, userRepo.Create(&model.User{
		Name: "اول", Phone: "09121112233", Username: "user-a", PasswordHash: "x",
	}))

	err := userRepo.Create(&model.User{
		Name: "دوم", Phone: "09121112233", Username: "user-b", PasswordHash: "x",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsUniqueViolation(err))

	info := apperrors.ParseError(err, "register user")
	assert.Equal(t, apperrors.AuthPhoneExists, info.Code)
}

func TestUserRepository_DeleteAndCount(t *testing.T) {
	userRepo := setupUserRepoTest(t)

	user := &model.User{Name: "علی", Phone: "09121112233", Username: "09121112233", PasswordHash: "x"}
	require.NoError(t, userRepo.Create(user))

	count, err := userRepo.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, userRepo.Delete(user.ID))

	count, err = userRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

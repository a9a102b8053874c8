package service

import (
	"testing"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAdServiceTest(t *testing.T) (AdService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	adRepo := repository.NewAdRepository(testDB)
	shopRepo := repository.NewShopRepository(testDB)
	return NewAdService(adRepo, shopRepo), testDB
}

func createTestUser(t *testing.T, database *gorm.DB, phone string) *model.User {
	user := &model.User{
		Name:         "کاربر آزمایشی",
		Phone:        phone,
		Username:     phone,
		PasswordHash: "hashed",
	}
	require.NoError(t, database.Create(user).Error)
	return user
}

func floatPtr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64     { return &v }
func uintPtr(v uint) *uint        { return &v }

func TestAdService_CreateAd(t *testing.T) {
	adService, testDB := setupAdServiceTest(t)
	user := createTestUser(t, testDB, "09121112233")

	ad, err := adService.CreateAd(user.ID, AdInput{
		Title:     "دوچرخه دست دوم",
		Price:     int64Ptr(2500000),
		Latitude:  floatPtr(35.70),
		Longitude: floatPtr(51.40),
		Images:    []string{"data:image/jpeg;base64,AAA", "data:image/jpeg;base64,BBB"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.AdStatusActive, ad.Status)
	assert.Equal(t, model.ConditionGood, ad.Condition)
	assert.False(t, ad.ExpiresAt.IsZero())
	require.Len(t, ad.Images, 2)
	assert.True(t, ad.Images[0].IsPrimary)
	assert.False(t, ad.Images[1].IsPrimary)
}

func TestAdService_CreateAd_MissingLocation(t *testing.T) {
	adService, testDB := setupAdServiceTest(t)
	user := createTestUser(t, testDB, "09121112233")

	_, err := adService.CreateAd(user.ID, AdInput{
		Title:    "بدون مختصات",
		Latitude: floatPtr(35.70),
	})
	assert.ErrorIs(t, err, ErrMissingLocation)
}

func TestAdService_CreateAd_ShopOwnership(t *testing.T) {
	adService, testDB := setupAdServiceTest(t)
	owner := createTestUser(t, testDB, "09121112233")
	other := createTestUser(t, testDB, "09124445566")

	shop := &model.Shop{UserID: owner.ID, ShopName: "فروشگاه علی"}
	require.NoError(t, testDB.Create(shop).Error)

	tests := []struct {
		name       string
		userID     uint
		shopID     *uint
		wantShopID bool
	}{
		{
			name:       "Owner keeps shop attribution",
			userID:     owner.ID,
			shopID:     uintPtr(shop.ID),
			wantShopID: true,
		},
		{
			name:       "Foreign shop silently dropped",
			userID:     other.ID,
			shopID:     uintPtr(shop.ID),
			wantShopID: false,
		},
		{
			name:       "Unknown shop silently dropped",
			userID:     owner.ID,
			shopID:     uintPtr(9999),
			wantShopID: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ad, err := adService.CreateAd(tt.userID, AdInput{
				Title:     "آگهی فروشگاهی",
				Latitude:  floatPtr(35.70),
				Longitude: floatPtr(51.40),
				ShopID:    tt.shopID,
			})
			require.NoError(t, err)
			if tt.wantShopID {
				require.NotNil(t, ad.ShopID)
				assert.Equal(t, shop.ID, *ad.ShopID)
			} else {
				assert.Nil(t, ad.ShopID)
			}
		})
	}
}

func TestAdService_GetAd_CountsViews(t *testing.T) {
	adService, testDB := setupAdServiceTest(t)
	user := createTestUser(t, testDB, "09121112233")

	created, err := adService.CreateAd(user.ID, AdInput{
		Title:     "آگهی",
		Latitude:  floatPtr(35.70),
		Longitude: floatPtr(51.40),
	})
	require.NoError(t, err)

	ad, err := adService.GetAd(created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, ad.Views)

	ad, err = adService.GetAd(created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, ad.Views)

	// list reads do not count
	ad, err = adService.GetAd(created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, ad.Views)
}

func TestAdService_UpdateAd(t *testing.T) {
	adService, testDB := setupAdServiceTest(t)
	owner := createTestUser(t, testDB, "09121112233")
	other := createTestUser(t, testDB, "09124445566")

	created, err := adService.CreateAd(owner.ID, AdInput{
		Title:     "عنوان قدیمی",
		Latitude:  floatPtr(35.70),
		Longitude: floatPtr(51.40),
	})
	require.NoError(t, err)

	_, err = adService.UpdateAd(created.ID, other.ID, AdInput{Title: "دزدی"})
	assert.ErrorIs(t, err, ErrAdNotOwned)

	updated, err := adService.UpdateAd(created.ID, owner.ID, AdInput{
		Title:  "عنوان جدید",
		Status: model.AdStatusSold,
	})
	require.NoError(t, err)
	assert.Equal(t, "عنوان جدید", updated.Title)
	assert.Equal(t, model.AdStatusSold, updated.Status)
	// untouched fields survive
	assert.Equal(t, 35.70, updated.Latitude)
}

func TestAdService_DeleteAd(t *testing.T) {
	adService, testDB := setupAdServiceTest(t)
	owner := createTestUser(t, testDB, "09121112233")
	other := createTestUser(t, testDB, "09124445566")

	created, err := adService.CreateAd(owner.ID, AdInput{
		Title:     "آگهی",
		Latitude:  floatPtr(35.70),
		Longitude: floatPtr(51.40),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, adService.DeleteAd(created.ID, other.ID), ErrAdNotOwned)
	require.NoError(t, adService.DeleteAd(created.ID, owner.ID))

	_, err = adService.GetAd(created.ID, false)
	assert.ErrorIs(t, err, ErrAdNotFound)
}

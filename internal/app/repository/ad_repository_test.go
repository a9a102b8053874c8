package repository

import (
	"testing"
	"time"

	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAdRepoTest(t *testing.T) (AdRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return NewAdRepository(testDB), testDB
}

func seedUser(t *testing.T, database *gorm.DB, phone string) *model.User {
	user := &model.User{
		Name:         "کاربر",
		Phone:        phone,
		Username:     phone,
		PasswordHash: "hashed",
	}
	require.NoError(t, database.Create(user).Error)
	return user
}

func seedAd(t *testing.T, database *gorm.DB, userID uint, mutate func(*model.Ad)) *model.Ad {
	ad := &model.Ad{
		UserID:    userID,
		Title:     "آگهی",
		Latitude:  35.70,
		Longitude: 51.40,
	}
	if mutate != nil {
		mutate(ad)
	}
	require.NoError(t, database.Create(ad).Error)
	return ad
}

func TestAdRepository_FindAll_FilterPrecedence(t *testing.T) {
	adRepo, testDB := setupAdRepoTest(t)

	owner := seedUser(t, testDB, "09121112233")
	other := seedUser(t, testDB, "09124445566")

	shop := &model.Shop{UserID: owner.ID, ShopName: "فروشگاه"}
	require.NoError(t, testDB.Create(shop).Error)

	personalAd := seedAd(t, testDB, owner.ID, nil)
	soldAd := seedAd(t, testDB, owner.ID, func(a *model.Ad) { a.Status = model.AdStatusSold })
	shopAd := seedAd(t, testDB, owner.ID, func(a *model.Ad) { a.ShopID = &shop.ID })
	otherAd := seedAd(t, testDB, other.ID, nil)

	t.Run("shop filter wins over user filter", func(t *testing.T) {
		ads, err := adRepo.FindAll(AdFilter{ShopID: &shop.ID, UserID: &other.ID})
		require.NoError(t, err)
		require.Len(t, ads, 1)
		assert.Equal(t, shopAd.ID, ads[0].ID)
	})

	t.Run("user filter returns personal ads only", func(t *testing.T) {
		ads, err := adRepo.FindAll(AdFilter{UserID: &owner.ID})
		require.NoError(t, err)
		require.Len(t, ads, 2)
		ids := []uint{ads[0].ID, ads[1].ID}
		assert.Contains(t, ids, personalAd.ID)
		assert.Contains(t, ids, soldAd.ID)
		assert.NotContains(t, ids, shopAd.ID)
	})

	t.Run("user filter with status", func(t *testing.T) {
		ads, err := adRepo.FindAll(AdFilter{UserID: &owner.ID, Status: model.AdStatusSold})
		require.NoError(t, err)
		require.Len(t, ads, 1)
		assert.Equal(t, soldAd.ID, ads[0].ID)
	})

	t.Run("general feed is active personal ads", func(t *testing.T) {
		ads, err := adRepo.FindAll(AdFilter{})
		require.NoError(t, err)
		require.Len(t, ads, 2)
		ids := []uint{ads[0].ID, ads[1].ID}
		assert.Contains(t, ids, personalAd.ID)
		assert.Contains(t, ids, otherAd.ID)
	})
}

func TestAdRepository_FindAll_Bounds(t *testing.T) {
	adRepo, testDB := setupAdRepoTest(t)
	user := seedUser(t, testDB, "09121112233")

	shop := &model.Shop{UserID: user.ID, ShopName: "فروشگاه"}
	require.NoError(t, testDB.Create(shop).Error)

	inside := seedAd(t, testDB, user.ID, nil)
	// just outside the northeast corner
	seedAd(t, testDB, user.ID, func(a *model.Ad) { a.Latitude = 36.00 })
	// inside but inactive
	seedAd(t, testDB, user.ID, func(a *model.Ad) { a.Status = model.AdStatusExpired })
	// inside but belongs to a storefront
	seedAd(t, testDB, user.ID, func(a *model.Ad) { a.ShopID = &shop.ID })

	bounds := &Bounds{SWLat: 35.60, SWLng: 51.30, NELat: 35.80, NELng: 51.50}
	ads, err := adRepo.FindAll(AdFilter{Bounds: bounds})
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.Equal(t, inside.ID, ads[0].ID)
}

func TestAdRepository_FindAll_LimitAndOrder(t *testing.T) {
	adRepo, testDB := setupAdRepoTest(t)
	user := seedUser(t, testDB, "09121112233")

	old := seedAd(t, testDB, user.ID, nil)
	require.NoError(t, testDB.Model(old).UpdateColumn("created_at", time.Now().Add(-48*time.Hour)).Error)
	mid := seedAd(t, testDB, user.ID, nil)
	require.NoError(t, testDB.Model(mid).UpdateColumn("created_at", time.Now().Add(-24*time.Hour)).Error)
	newest := seedAd(t, testDB, user.ID, nil)

	ads, err := adRepo.FindAll(AdFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, ads, 2)
	assert.Equal(t, newest.ID, ads[0].ID)
	assert.Equal(t, mid.ID, ads[1].ID)
}

func TestAdRepository_ImageOrdering(t *testing.T) {
	adRepo, testDB := setupAdRepoTest(t)
	user := seedUser(t, testDB, "09121112233")
	ad := seedAd(t, testDB, user.ID, nil)

	// two rows flagged primary: sort order breaks the tie
	require.NoError(t, adRepo.ReplaceImages(ad.ID, []model.AdImage{
		{AdID: ad.ID, ImageURL: "gallery", SortOrder: 0, IsPrimary: false},
		{AdID: ad.ID, ImageURL: "primary-a", SortOrder: 5, IsPrimary: true},
		{AdID: ad.ID, ImageURL: "primary-b", SortOrder: 1, IsPrimary: true},
	}))

	loaded, err := adRepo.FindByID(ad.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Images, 3)
	assert.Equal(t, "primary-b", loaded.Images[0].ImageURL)
	assert.Equal(t, "primary-a", loaded.Images[1].ImageURL)
	assert.Equal(t, "gallery", loaded.Images[2].ImageURL)
}

func TestAdRepository_ImagesNeverNil(t *testing.T) {
	adRepo, testDB := setupAdRepoTest(t)
	user := seedUser(t, testDB, "09121112233")
	ad := seedAd(t, testDB, user.ID, nil)

	ads, err := adRepo.FindAll(AdFilter{})
	require.NoError(t, err)
	require.Len(t, ads, 1)
	assert.NotNil(t, ads[0].Images)
	assert.NotNil(t, ads[0].ImageURLs())
	assert.Empty(t, ads[0].ImageURLs())

	loaded, err := adRepo.FindByID(ad.ID)
	require.NoError(t, err)
	assert.NotNil(t, loaded.ImageURLs())
}

func TestAdRepository_ExpireOverdue(t *testing.T) {
	adRepo, testDB := setupAdRepoTest(t)
	user := seedUser(t, testDB, "09121112233")

	overdue := seedAd(t, testDB, user.ID, nil)
	require.NoError(t, testDB.Model(overdue).UpdateColumn("expires_at", time.Now().Add(-time.Hour)).Error)
	fresh := seedAd(t, testDB, user.ID, nil)

	count, err := adRepo.ExpireOverdue(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var reloaded model.Ad
	require.NoError(t, testDB.First(&reloaded, overdue.ID).Error)
	assert.Equal(t, model.AdStatusExpired, reloaded.Status)

	reloaded = model.Ad{}
	require.NoError(t, testDB.First(&reloaded, fresh.ID).Error)
	assert.Equal(t, model.AdStatusActive, reloaded.Status)

	// idempotent
	count, err = adRepo.ExpireOverdue(time.Now())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAdRepository_IncrementViews(t *testing.T) {
	adRepo, testDB := setupAdRepoTest(t)
	user := seedUser(t, testDB, "09121112233")
	ad := seedAd(t, testDB, user.ID, nil)

	require.NoError(t, adRepo.IncrementViews(ad.ID))
	require.NoError(t, adRepo.IncrementViews(ad.ID))

	loaded, err := adRepo.FindByID(ad.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Views)
}

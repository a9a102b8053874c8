package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/smousavi/bazaarche-backend/config"
	"github.com/smousavi/bazaarche-backend/internal/app/model"
	"github.com/smousavi/bazaarche-backend/internal/db"
	"github.com/smousavi/bazaarche-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds shops from an XLSX export. Expected columns:
// shop_name | category | phone | address | latitude | longitude | description
const expectedColumns = 7

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.Connect(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	shops, err := readShopsFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total shops to import: %d\n", len(shops))

	// تایید کاربر قبل از درج
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	owner, err := ensureSeedOwner(database)
	if err != nil {
		log.Fatal("Failed to prepare seed owner:", err)
	}
	for i := range shops {
		shops[i].UserID = owner.ID
	}

	if err := database.CreateInBatches(shops, 500).Error; err != nil {
		log.Fatal("Failed to bulk create shops:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total shops imported: %d\n", len(shops))
}

// ensureSeedOwner finds or creates the account that owns imported shops
func ensureSeedOwner(database *gorm.DB) (*model.User, error) {
	const seedPhone = "09120000000"

	var user model.User
	err := database.Where("phone = ?", seedPhone).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := util.HashPassword("seed-import")
	if err != nil {
		return nil, err
	}
	user = model.User{
		Name:         "واردات اولیه",
		Phone:        seedPhone,
		Username:     seedPhone,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
	}
	if err := database.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func readShopsFromXLSX(filePath string) ([]model.Shop, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var shops []model.Shop
	seen := make(map[string]bool) // حذف ردیف‌های تکراری
	skippedCount := 0
	invalidCoordCount := 0

	for i, row := range rows {
		// ردیف اول سرستون است
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < expectedColumns {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		category := strings.TrimSpace(row[1])
		phone := strings.TrimSpace(row[2])
		address := strings.TrimSpace(row[3])
		latStr := strings.TrimSpace(row[4])
		lngStr := strings.TrimSpace(row[5])
		description := strings.TrimSpace(row[6])

		if name == "" {
			skippedCount++
			continue
		}
		if seen[name+"|"+address] {
			skippedCount++
			continue
		}
		seen[name+"|"+address] = true

		shop := model.Shop{
			ShopName:    name,
			Category:    category,
			Phone:       phone,
			Address:     address,
			Description: description,
			Status:      model.ShopStatusActive,
		}

		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr == nil && lngErr == nil && validIranCoordinates(lat, lng) {
			shop.Latitude = &lat
			shop.Longitude = &lng
		} else {
			invalidCoordCount++
		}

		shops = append(shops, shop)
	}

	fmt.Printf("Skipped rows: %d, rows without valid coordinates: %d\n", skippedCount, invalidCoordCount)
	return shops, nil
}

// validIranCoordinates keeps obviously wrong points off the map
func validIranCoordinates(lat, lng float64) bool {
	return lat >= 24.0 && lat <= 40.5 && lng >= 43.5 && lng <= 64.0
}

package config

import (
	"log"
	"strings"

	"trustlist_backend/models"
	"trustlist_backend/utils"

	"gorm.io/gorm"
)

func SeedCategories(db *gorm.DB) {
	categories := []string{
		"ELECTRONICS",
		"FURNITURE",
		"APPLIANCES",
		"FASHION",
		"BOOKS",
		"SPORTS",
		"AUTOMOTIVE",
		"HOME & GARDEN",
	}

	for _, name := range categories {
		slug := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(name, " & ", "-"), " ", "-"))
		var existing models.Category
		if err := db.Where("slug = ?", slug).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&models.Category{Name: name, Slug: slug}).Error; err != nil {
				log.Printf("Failed to seed category %s: %v", name, err)
			}
		}
	}
}

func SeedUsers(db *gorm.DB) {
	log.Println("🌱 Seeding users...")

	password, _ := utils.HashPassword("password123")

	users := []models.User{
		{
			Username:             "priya_sharma",
			Email:                "priya@example.com",
			Password:             password,
			FullName:             "Priya Sharma",
			Role:                 "user",
			GovernmentIDVerified: true,
			Location:             "MUMBAI",
			Latitude:             19.0760,
			Longitude:            72.8777,
		},
		{
			Username:  "rahul_verma",
			Email:     "rahul@example.com",
			Password:  password,
			FullName:  "Rahul Verma",
			Role:      "user",
			Location:  "PUNE",
			Latitude:  18.5204,
			Longitude: 73.8567,
		},
		{
			Username: "admin",
			Email:    "admin@example.com",
			Password: password,
			FullName: "Platform Admin",
			Role:     "admin",
			Location: "DELHI",
		},
	}

	for _, user := range users {
		var existingUser models.User
		if err := db.Where("email = ?", user.Email).First(&existingUser).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := db.Create(&user).Error; err != nil {
					log.Printf("Failed to seed user %s: %v", user.Username, err)
				} else {
					log.Printf("User seeded: %s (ID: %d)", user.Username, user.ID)
				}
			}
		} else {
			log.Printf("User already exists: %s", user.Username)
		}
	}

	log.Println("✅ Seeding complete.")
}

func SeedProducts(db *gorm.DB) {
	log.Println("🌱 Seeding products...")

	var seller models.User
	if err := db.Where("username = ?", "priya_sharma").First(&seller).Error; err != nil {
		log.Printf("Seed seller missing, skipping products: %v", err)
		return
	}

	products := []models.Product{
		{
			SellerID:      seller.ID,
			Title:         "IPHONE 14 PRO MAX - MINT CONDITION",
			Description:   "Barely used iPhone 14 Pro Max, 256GB, deep purple. Comes with the original box, charger and an unused case. Battery health 98%, no scratches, always used with a screen protector.",
			Price:         85000,
			OriginalPrice: 139900,
			Category:      "ELECTRONICS",
			Condition:     models.ConditionLikeNew,
			Location:      "MUMBAI",
			CarbonSaved:   8500,
			Stock:         1,
			Status:        models.ProductStatusAvailable,
			Verified:      false,
		},
		{
			SellerID:      seller.ID,
			Title:         "WOODEN BOOKSHELF - SOLID SHEESHAM",
			Description:   "Five-shelf solid sheesham bookshelf, two years old, sturdy and recently polished. Selling because of a move. Pickup from Bandra preferred.",
			Price:         4500,
			OriginalPrice: 12000,
			Category:      "FURNITURE",
			Condition:     models.ConditionGood,
			Location:      "MUMBAI",
			CarbonSaved:   450,
			Stock:         1,
			Status:        models.ProductStatusAvailable,
			Verified:      true,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := db.Where("title = ? AND seller_id = ?", product.Title, product.SellerID).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&product).Error; err != nil {
				log.Printf("Failed to seed product %s: %v", product.Title, err)
			}
		}
	}

	log.Println("✅ Product seeding complete.")
}

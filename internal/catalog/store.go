package catalog

import (
	"context"
	"errors"
	"log"
	"strings"

	"trustlist_backend/models"
	"trustlist_backend/pkg/apierror"

	"gorm.io/gorm"
)

// Filters narrows a catalog listing query. Category and location are exact
// matches (case-insensitive), the price range is inclusive, and Search is a
// free-text substring match applied in-process after the range predicates —
// the backing query engine cannot combine inequality ranges with substring
// search in one pass.
type Filters struct {
	Category        string
	Location        string
	MinPrice        float64
	MaxPrice        float64
	Search          string
	ExcludeSellerID uint
	Limit           int
}

// Store reads and writes catalog listings.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// List returns available listings, newest first. Read-path persistence
// failures degrade to an empty result instead of propagating; availability
// wins over consistency for browsing.
func (s *Store) List(ctx context.Context, f Filters) []models.Product {
	query := s.DB.WithContext(ctx).
		Preload("Seller", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, full_name, image_url, location")
		}).
		Where("status = ?", models.ProductStatusAvailable)

	if f.Category != "" && !strings.EqualFold(f.Category, "all") {
		query = query.Where("LOWER(category) = ?", strings.ToLower(f.Category))
	}
	if f.Location != "" && !strings.EqualFold(f.Location, "all") {
		query = query.Where("LOWER(location) = ?", strings.ToLower(f.Location))
	}
	if f.MinPrice > 0 {
		query = query.Where("price >= ?", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		query = query.Where("price <= ?", f.MaxPrice)
	}
	if f.ExcludeSellerID != 0 {
		query = query.Where("seller_id != ?", f.ExcludeSellerID)
	}
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}

	var products []models.Product
	if err := query.Order("created_at desc").Find(&products).Error; err != nil {
		log.Printf("Catalog read degraded to empty result: %v", err)
		return []models.Product{}
	}

	if f.Search != "" {
		return filterBySearch(products, f.Search)
	}
	return products
}

// Get returns one listing by id.
func (s *Store) Get(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.DB.WithContext(ctx).
		Preload("Seller", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, full_name, image_url, email, location, rating, total_sales, is_verified")
		}).
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Product not found")
		}
		return nil, apierror.Upstream("Could not fetch product", err)
	}
	return &product, nil
}

// Create persists a new listing. Write failures propagate; no silent loss.
func (s *Store) Create(ctx context.Context, product *models.Product) error {
	if err := s.DB.WithContext(ctx).Create(product).Error; err != nil {
		return apierror.Upstream("Could not create product", err)
	}
	return nil
}

// Update saves listing edits.
func (s *Store) Update(ctx context.Context, product *models.Product) error {
	if err := s.DB.WithContext(ctx).Save(product).Error; err != nil {
		return apierror.Upstream("Could not update product", err)
	}
	return nil
}

// ListByOwner returns every listing of one seller regardless of status,
// newest first. Degrades to empty on read failure like List.
func (s *Store) ListByOwner(ctx context.Context, sellerID uint) []models.Product {
	var products []models.Product
	err := s.DB.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at desc").
		Find(&products).Error
	if err != nil {
		log.Printf("Catalog read degraded to empty result: %v", err)
		return []models.Product{}
	}
	return products
}

// filterBySearch is the in-process second phase: case-insensitive substring
// match over title, category and seller name.
func filterBySearch(products []models.Product, search string) []models.Product {
	needle := strings.ToLower(search)
	matched := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Category), needle) ||
			strings.Contains(strings.ToLower(p.Seller.FullName), needle) ||
			strings.Contains(strings.ToLower(p.Seller.Username), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

package catalog

import (
	"testing"

	"trustlist_backend/models"

	"github.com/stretchr/testify/assert"
)

func sampleProducts() []models.Product {
	return []models.Product{
		{Title: "iPhone 13 Pro", Category: "ELECTRONICS", Seller: models.User{Username: "priya_sharma", FullName: "Priya Sharma"}},
		{Title: "Wooden Bookshelf", Category: "FURNITURE", Seller: models.User{Username: "rahul_verma", FullName: "Rahul Verma"}},
		{Title: "Phone Stand", Category: "ACCESSORIES", Seller: models.User{Username: "priya_sharma", FullName: "Priya Sharma"}},
	}
}

func TestFilterBySearchMatchesTitle(t *testing.T) {
	matched := filterBySearch(sampleProducts(), "iphone")

	assert.Len(t, matched, 1)
	assert.Equal(t, "iPhone 13 Pro", matched[0].Title)
}

func TestFilterBySearchMatchesCategory(t *testing.T) {
	matched := filterBySearch(sampleProducts(), "furniture")

	assert.Len(t, matched, 1)
	assert.Equal(t, "Wooden Bookshelf", matched[0].Title)
}

func TestFilterBySearchMatchesSeller(t *testing.T) {
	// Both username and full name count
	assert.Len(t, filterBySearch(sampleProducts(), "priya"), 2)
	assert.Len(t, filterBySearch(sampleProducts(), "Rahul Verma"), 1)
}

func TestFilterBySearchSubstringAcrossFields(t *testing.T) {
	// "phone" hits both the iPhone title and the stand
	assert.Len(t, filterBySearch(sampleProducts(), "PHONE"), 2)
}

func TestFilterBySearchNoMatch(t *testing.T) {
	matched := filterBySearch(sampleProducts(), "bicycle")

	assert.NotNil(t, matched)
	assert.Empty(t, matched)
}

package chatguard

import (
	"testing"

	"trustlist_backend/config"
	"trustlist_backend/models"

	"github.com/stretchr/testify/assert"
)

func testResolver() *Resolver {
	policy := config.DefaultPolicy()
	return NewResolver(policy.Proximity, policy.Cities)
}

func TestIsRestricted(t *testing.T) {
	cases := []struct {
		content    string
		restricted bool
	}{
		{"call me at 9876543210", true},
		{"my number is 987-654-3210", true},
		{"ping me on WhatsApp", true},
		{"add me on telegram", true},
		{"let's meet at the coffee shop", true},
		{"what is your address?", true},
		{"cash payment works for me", true},
		{"pay outside trustlist and save the fee", true},
		{"is the phone still available?", false},
		{"can you do 4000?", false},
		{"item was made in 2023, serial 12345", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.restricted, IsRestricted(tc.content), "content: %q", tc.content)
	}
}

func TestGuardTruthTable(t *testing.T) {
	const threshold = 40.0

	cases := []struct {
		name       string
		content    string
		distanceKm float64
		want       Decision
	}{
		{"far and restricted", "call me at 9876543210", 120, Block},
		{"far and clean", "is the phone still available?", 120, Allow},
		// Proximity overrides content filtering entirely
		{"near and restricted", "call me at 9876543210", 10, Allow},
		{"near and clean", "can you do 4000?", 10, Allow},
		{"exactly at threshold", "call me at 9876543210", threshold, Allow},
		{"just past threshold", "call me at 9876543210", threshold + 0.1, Block},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Guard(tc.content, tc.distanceKm, threshold))
		})
	}
}

func TestResolverDistancePrefersCoordinates(t *testing.T) {
	r := testResolver()

	a := &models.User{Latitude: 19.0760, Longitude: 72.8777, Location: "DELHI"}
	b := &models.User{Latitude: 18.5204, Longitude: 73.8567, Location: "CHENNAI"}

	// Mumbai-Pune by coordinates, roughly 120km, ignoring the city fields
	distance := r.Distance(a, b)
	assert.InDelta(t, 120, distance, 15)
}

func TestResolverDistanceCityFallback(t *testing.T) {
	r := testResolver()

	a := &models.User{Location: "MUMBAI"}
	b := &models.User{Location: "PUNE"}

	distance := r.Distance(a, b)
	assert.InDelta(t, 120, distance, 15)
	assert.False(t, r.ContactAllowed(distance))
}

func TestResolverSameCityAllowsContact(t *testing.T) {
	r := testResolver()

	a := &models.User{Location: "MUMBAI"}
	b := &models.User{Location: "mumbai"}

	distance := r.Distance(a, b)
	assert.Equal(t, 0.0, distance)
	assert.True(t, r.ContactAllowed(distance))
}

func TestResolverUnknownLocationStaysGated(t *testing.T) {
	r := testResolver()

	a := &models.User{Location: "MUMBAI"}
	b := &models.User{Location: "ATLANTIS"}

	// Unknown pairs resolve to the pessimistic distance, above the threshold
	distance := r.Distance(a, b)
	assert.Greater(t, distance, r.ThresholdKm())
	assert.False(t, r.ContactAllowed(distance))
}

func TestCheckUsesConfiguredThreshold(t *testing.T) {
	r := testResolver()

	assert.Equal(t, Block, r.Check("call me at 9876543210", 120))
	assert.Equal(t, Allow, r.Check("call me at 9876543210", 5))
}

func TestHaversine(t *testing.T) {
	// Same point
	assert.Equal(t, 0.0, Haversine(19.0760, 72.8777, 19.0760, 72.8777))

	// Mumbai to Delhi, roughly 1150km
	assert.InDelta(t, 1150, Haversine(19.0760, 72.8777, 28.6139, 77.2090), 50)

	// Symmetric
	ab := Haversine(19.0760, 72.8777, 18.5204, 73.8567)
	ba := Haversine(18.5204, 73.8567, 19.0760, 72.8777)
	assert.InDelta(t, ab, ba, 1e-9)
}

func TestNotices(t *testing.T) {
	r := testResolver()

	assert.Contains(t, r.SafetyNotice(120), "restricted")
	assert.Contains(t, r.SafetyNotice(5), "within")
	assert.Contains(t, r.BlockedNotice(), "MESSAGE BLOCKED")
}

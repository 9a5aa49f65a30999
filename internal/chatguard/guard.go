package chatguard

import (
	"fmt"
	"regexp"
	"strings"

	"trustlist_backend/config"
	"trustlist_backend/models"
)

// Decision is the outcome of guarding a single outgoing message.
type Decision string

const (
	Allow Decision = "ALLOW"
	Block Decision = "BLOCK"
)

// Restricted-content patterns. Any single match is sufficient: contiguous
// 10-digit numbers, grouped phone patterns, external chat apps, meetup
// phrasing, address probing and off-platform payment talk.
var restrictedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{10}\b`),
	regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
	regexp.MustCompile(`(?i)whatsapp|telegram|instagram|facebook`),
	regexp.MustCompile(`(?i)meet\s+me|let's\s+meet|coffee\s+shop|my\s+place`),
	regexp.MustCompile(`(?i)address|location|where\s+do\s+you\s+live`),
	regexp.MustCompile(`(?i)cash\s+payment|direct\s+payment|outside\s+trustlist`),
}

// IsRestricted reports whether content matches any restricted pattern.
func IsRestricted(content string) bool {
	for _, pattern := range restrictedPatterns {
		if pattern.MatchString(content) {
			return true
		}
	}
	return false
}

// Guard blocks a message only when both conditions hold: the parties are
// beyond the proximity threshold AND the content is restricted. Proximity
// overrides content filtering; nearby parties may exchange contact details.
func Guard(content string, distanceKm, thresholdKm float64) Decision {
	if distanceKm > thresholdKm && IsRestricted(content) {
		return Block
	}
	return Allow
}

// Resolver computes buyer-seller distance from user records. Precise
// coordinates win; a known-city table is the fallback; fully unknown pairs
// resolve to a configured pessimistic distance so they stay gated.
type Resolver struct {
	thresholdKm float64
	unknownKm   float64
	cities      map[string]config.CityCoord
}

func NewResolver(policy config.ProximityPolicy, cities []config.CityCoord) *Resolver {
	byName := make(map[string]config.CityCoord, len(cities))
	for _, city := range cities {
		byName[strings.ToUpper(city.Name)] = city
	}
	return &Resolver{
		thresholdKm: policy.ThresholdKm,
		unknownKm:   policy.UnknownDistanceKm,
		cities:      byName,
	}
}

// ThresholdKm returns the proximity threshold in kilometres.
func (r *Resolver) ThresholdKm() float64 {
	return r.thresholdKm
}

// Distance returns the distance between two users in kilometres.
func (r *Resolver) Distance(a, b *models.User) float64 {
	latA, lngA, okA := r.coordinates(a)
	latB, lngB, okB := r.coordinates(b)
	if !okA || !okB {
		return r.unknownKm
	}
	return Haversine(latA, lngA, latB, lngB)
}

// Check applies the guard with the resolver's configured threshold.
func (r *Resolver) Check(content string, distanceKm float64) Decision {
	return Guard(content, distanceKm, r.thresholdKm)
}

// ContactAllowed reports whether direct contact affordances (calls, meetup
// planning) are permitted at the given distance.
func (r *Resolver) ContactAllowed(distanceKm float64) bool {
	return distanceKm <= r.thresholdKm
}

func (r *Resolver) coordinates(u *models.User) (lat, lng float64, ok bool) {
	if u == nil {
		return 0, 0, false
	}
	if u.Latitude != 0 || u.Longitude != 0 {
		return u.Latitude, u.Longitude, true
	}
	if city, found := r.cities[strings.ToUpper(strings.TrimSpace(u.Location))]; found {
		return city.Lat, city.Lng, true
	}
	return 0, 0, false
}

// BlockedNotice is the warning appended alongside a blocked message.
func (r *Resolver) BlockedNotice() string {
	return fmt.Sprintf(
		"🚫 MESSAGE BLOCKED: Your message appears to contain contact information or meetup requests. This is not allowed when you're more than %.0fkm from the seller. Please use TrustList's secure escrow system for all transactions.",
		r.thresholdKm,
	)
}

// SafetyNotice is the system message posted when a conversation opens,
// explaining which contact rules apply at the computed distance.
func (r *Resolver) SafetyNotice(distanceKm float64) string {
	if distanceKm > r.thresholdKm {
		return fmt.Sprintf(
			"⚠️ SAFETY NOTICE: You are more than %.0fkm away from this seller. For your safety, sharing contact details or arranging meetups is restricted. All transactions must go through TrustList's secure escrow system.",
			r.thresholdKm,
		)
	}
	return fmt.Sprintf(
		"✅ You are within %.0fkm of this seller. You may discuss contact details and meetups, but all payments must still go through TrustList's secure system.",
		r.thresholdKm,
	)
}

package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Policy is the trust-policy file: fee schedules, admission thresholds, the
// proximity gate and the simulated review knobs. These are business
// configuration points, deliberately kept out of the environment so the two
// checkout fee schedules stay side by side and reviewable.
type Policy struct {
	Fees      FeesPolicy      `yaml:"fees"`
	Admission AdmissionPolicy `yaml:"admission"`
	Review    ReviewPolicy    `yaml:"review"`
	Escrow    EscrowPolicy    `yaml:"escrow"`
	Proximity ProximityPolicy `yaml:"proximity"`
	Cities    []CityCoord     `yaml:"cities"`
}

// FeesPolicy carries both checkout fee schedules. The standard surface
// charges a flat platform fee; the escrow surface splits a lower platform
// fee from the escrow holding fee. They are distinct on purpose.
type FeesPolicy struct {
	Standard FeeSchedule `yaml:"standard"`
	Escrow   FeeSchedule `yaml:"escrow"`
}

type FeeSchedule struct {
	PlatformRate float64 `yaml:"platform_rate"`
	EscrowRate   float64 `yaml:"escrow_rate"`
}

// AdmissionPolicy holds the listing health-check thresholds.
type AdmissionPolicy struct {
	HighValuePrice      float64 `yaml:"high_value_price"`
	MinImages           int     `yaml:"min_images"`
	MinDescriptionChars int     `yaml:"min_description_chars"`
	AuthenticityPoorMax int     `yaml:"authenticity_poor_max"`
}

// ReviewPolicy configures the simulated human reviewer.
type ReviewPolicy struct {
	ApprovalRate float64       `yaml:"approval_rate"`
	Delay        time.Duration `yaml:"delay"`
}

// EscrowPolicy configures the transaction engine timings.
type EscrowPolicy struct {
	ProtectionDays  int           `yaml:"protection_days"`
	ProcessingDelay time.Duration `yaml:"processing_delay"`
}

// ProximityPolicy configures the messaging guard.
type ProximityPolicy struct {
	ThresholdKm float64 `yaml:"threshold_km"`
	// Distance assumed when neither party resolves to known coordinates;
	// deliberately above the threshold so unknown pairs stay gated.
	UnknownDistanceKm float64 `yaml:"unknown_distance_km"`
}

// CityCoord pins a known city to coordinates for distance fallback when a
// user has no precise location set.
type CityCoord struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// DefaultPolicy returns the built-in policy used when no file is present.
func DefaultPolicy() *Policy {
	return &Policy{
		Fees: FeesPolicy{
			Standard: FeeSchedule{PlatformRate: 0.03, EscrowRate: 0},
			Escrow:   FeeSchedule{PlatformRate: 0.01, EscrowRate: 0.02},
		},
		Admission: AdmissionPolicy{
			HighValuePrice:      10000,
			MinImages:           3,
			MinDescriptionChars: 100,
			AuthenticityPoorMax: 80,
		},
		Review: ReviewPolicy{
			ApprovalRate: 0.8,
			Delay:        3 * time.Second,
		},
		Escrow: EscrowPolicy{
			ProtectionDays:  7,
			ProcessingDelay: 2 * time.Second,
		},
		Proximity: ProximityPolicy{
			ThresholdKm:       40,
			UnknownDistanceKm: 500,
		},
		Cities: []CityCoord{
			{Name: "MUMBAI", Lat: 19.0760, Lng: 72.8777},
			{Name: "DELHI", Lat: 28.7041, Lng: 77.1025},
			{Name: "BANGALORE", Lat: 12.9716, Lng: 77.5946},
			{Name: "PUNE", Lat: 18.5204, Lng: 73.8567},
			{Name: "CHENNAI", Lat: 13.0827, Lng: 80.2707},
			{Name: "HYDERABAD", Lat: 17.3850, Lng: 78.4867},
			{Name: "KOLKATA", Lat: 22.5726, Lng: 88.3639},
			{Name: "AHMEDABAD", Lat: 23.0225, Lng: 72.5714},
		},
	}
}

// LoadPolicy reads the policy YAML, falling back to defaults when the file
// does not exist. Malformed files are an error, not a silent fallback.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPolicy(), nil
		}
		return nil, err
	}

	policy := DefaultPolicy()
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

package config

import "time"

const (
	MapsProviderGoogle = "google"
	MapsProviderMapbox = "mapbox"
)

type MapsConfig struct {
	Provider   string            `yaml:"provider"`
	GoogleMaps *GoogleMapsConfig `yaml:"google_maps"`
	Mapbox     *MapboxConfig     `yaml:"mapbox"`
	Timeout    time.Duration     `yaml:"timeout"`
}

type GoogleMapsConfig struct {
	APIKey   string `yaml:"api_key"`
	Region   string `yaml:"region"`
	Language string `yaml:"language"`
}

type MapboxConfig struct {
	AccessToken string `yaml:"access_token"`
	Country     string `yaml:"country"`
	Language    string `yaml:"language"`
}

// Enabled reports whether the selected geocoding backend has credentials.
func (m *MapsConfig) Enabled() bool {
	switch m.Provider {
	case MapsProviderGoogle:
		return m.GoogleMaps.APIKey != ""
	case MapsProviderMapbox:
		return m.Mapbox.AccessToken != ""
	default:
		return false
	}
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		Provider: getEnv("MAPS_PROVIDER", MapsProviderGoogle),
		GoogleMaps: &GoogleMapsConfig{
			APIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
			Region:   getEnv("GOOGLE_MAPS_REGION", "pk"),
			Language: getEnv("GOOGLE_MAPS_LANGUAGE", "en"),
		},
		Mapbox: &MapboxConfig{
			AccessToken: getEnv("MAPBOX_ACCESS_TOKEN", ""),
			Country:     getEnv("MAPBOX_COUNTRY", "pk"),
			Language:    getEnv("MAPBOX_LANGUAGE", "en"),
		},
		Timeout: getEnvAsDuration("MAPS_TIMEOUT", 5*time.Second),
	}
}

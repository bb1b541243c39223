package store

import (
	"encoding/json"

	"github.com/cyberarian/rekama-sys/pkg/model"
)

const settingsKey = "settings"

func settingsFrom(img *image) model.AppSettings {
	settings := model.DefaultSettings()
	raw, ok := img.singletons[settingsKey]
	if !ok {
		return settings
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return model.DefaultSettings()
	}
	return settings
}

// GetSingleton returns the committed raw value stored under key.
func (s *Store) GetSingleton(key string) (json.RawMessage, bool) {
	v, ok := s.current.Load().singletons[key]
	return append(json.RawMessage(nil), v...), ok
}

// Settings returns the committed settings or the defaults.
func (s *Store) Settings() model.AppSettings {
	return settingsFrom(s.current.Load())
}

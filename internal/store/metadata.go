package store

import (
	"time"

	"github.com/vitaminmoo/gattx/internal/explore"
)

// Metadata describes a stored layout and every walk that produced it.
type Metadata struct {
	ContentHash     string    `json:"content_hash"`
	Address         string    `json:"address"`
	Name            string    `json:"name,omitempty"`
	Services        int       `json:"services"`
	Characteristics int       `json:"characteristics"`
	Descriptors     int       `json:"descriptors"`
	Sources         []Source  `json:"sources"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Source records one walk that was saved.
type Source struct {
	Session   string    `json:"session"`
	Address   string    `json:"address"`
	Timestamp time.Time `json:"timestamp"`
}

// ExtractMetadata summarizes a topology.
func ExtractMetadata(t *explore.Topology, hash string, now time.Time) *Metadata {
	meta := &Metadata{
		ContentHash: hash,
		Address:     t.Peripheral.Address,
		Name:        t.Peripheral.Advertisement.LocalName,
		Services:    len(t.Services),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, s := range t.Services {
		meta.Characteristics += len(s.Characteristics)
		for _, c := range s.Characteristics {
			meta.Descriptors += len(c.Descriptors)
		}
	}
	return meta
}

package gatt

import "time"

// ServiceData is one service-data entry of an advertisement.
type ServiceData struct {
	UUID UUID   `json:"uuid"`
	Data []byte `json:"data"`
}

// Advertisement is the last advertisement payload seen from a peripheral.
type Advertisement struct {
	LocalName        string        `json:"local_name,omitempty"`
	TxPower          *int          `json:"tx_power,omitempty"`
	ServiceUUIDs     []UUID        `json:"service_uuids,omitempty"`
	ManufacturerData []byte        `json:"manufacturer_data,omitempty"`
	ServiceData      []ServiceData `json:"service_data,omitempty"`
	Connectable      bool          `json:"connectable"`
}

// Peripheral is a device seen while scanning. Address is its identity; the
// other fields follow the latest sighting.
type Peripheral struct {
	Index         int           `json:"index"`
	Address       string        `json:"address"`
	RSSI          int           `json:"rssi"`
	Advertisement Advertisement `json:"advertisement"`
	FirstSeen     time.Time     `json:"first_seen"`
	LastSeen      time.Time     `json:"last_seen"`
	Sightings     int           `json:"sightings"`
}

// Name returns the advertised local name, or the address.
func (p Peripheral) Name() string {
	if p.Advertisement.LocalName != "" {
		return p.Advertisement.LocalName
	}
	return p.Address
}

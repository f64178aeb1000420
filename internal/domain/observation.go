package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Pressure is a central pressure reading in millibars. Valid is false for
// cells the source left empty or marked as missing.
type Pressure struct {
	Value float64
	Valid bool
}

// ValidPressure returns a present pressure reading.
func ValidPressure(v float64) Pressure {
	return Pressure{Value: v, Valid: true}
}

// MissingPressure is the placeholder for an absent reading.
var MissingPressure = Pressure{}

// MarshalJSON encodes a missing reading as null.
func (p Pressure) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// UnmarshalJSON accepts a number or null.
func (p *Pressure) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = MissingPressure
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode pressure: %w", err)
	}
	*p = ValidPressure(v)
	return nil
}

// StormObservation is one storm position fix at one timestamp.
type StormObservation struct {
	Name     string    `json:"storm_name"`
	Time     time.Time `json:"datetime"`
	Lat      float64   `json:"latitude"`
	Lon      float64   `json:"longitude"`
	Type     string    `json:"storm_type"`
	Pressure Pressure  `json:"pressure"`
}

// ID returns a deterministic identifier built from the observation's name,
// time and position, so republishing the same CSV yields the same keys.
func (o StormObservation) ID() string {
	input := fmt.Sprintf("%s|%s|%.4f|%.4f", o.Name, o.Time.UTC().Format(time.RFC3339), o.Lat, o.Lon)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}

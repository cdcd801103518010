package domain

import "maps"

const (
	TemperatureField = "temperature"

	// UnavailableTemperature is reported while no reading has been received.
	UnavailableTemperature = "Not Available"
)

// Reading is the last sensor payload accepted by the server. The payload is
// stored as sent; only the temperature field has a meaning for the server.
type Reading map[string]any

func (r Reading) Temperature() (any, bool) {
	value, ok := r[TemperatureField]
	return value, ok
}

// Clone returns a shallow copy so the stored slot is not aliased by callers.
func (r Reading) Clone() Reading {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

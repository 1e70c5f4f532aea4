package models

// Station status values as reported by the backend.
const (
	StationStatusActive      = "Active"
	StationStatusOffline     = "Offline"
	StationStatusMaintenance = "Maintenance"
)

// Station is the read-only view of a charging station used by the booking
// flow. The backend is authoritative.
type Station struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
}

// Charger belongs to exactly one station.
type Charger struct {
	ID        int64   `json:"id"`
	StationID int64   `json:"stationId"`
	Code      string  `json:"code"`
	Type      string  `json:"type"` // AC or DC
	PowerKW   float64 `json:"powerKw"`
	Status    string  `json:"status"`
}

// Port is the unit of booking and charging. Belongs to exactly one charger.
type Port struct {
	ID            int64   `json:"id"`
	ChargerID     int64   `json:"chargerId"`
	Code          string  `json:"code"`
	ConnectorType string  `json:"connectorType"`
	MaxPowerKW    float64 `json:"maxPowerKw"`
	Status        string  `json:"status"`
}

// NormalizeStation maps a loosely-typed backend payload to a Station.
func NormalizeStation(m map[string]any) Station {
	return Station{
		ID:        intField(m, "id", "stationId"),
		Name:      stringField(m, "name", "stationName", "title"),
		Address:   stringField(m, "address", "street"),
		City:      stringField(m, "city", "province"),
		Latitude:  floatField(m, "latitude", "lat"),
		Longitude: floatField(m, "longitude", "lng", "lon"),
		Status:    stringField(m, "status", "stationStatus"),
	}
}

// NormalizeCharger maps a loosely-typed backend payload to a Charger.
func NormalizeCharger(m map[string]any) Charger {
	return Charger{
		ID:        intField(m, "id", "chargerId"),
		StationID: intField(m, "stationId"),
		Code:      stringField(m, "code", "chargerCode", "name"),
		Type:      stringField(m, "type", "chargerType", "currentType"),
		PowerKW:   floatField(m, "powerKw", "power", "powerRating"),
		Status:    stringField(m, "status", "chargerStatus"),
	}
}

// NormalizePort maps a loosely-typed backend payload to a Port.
func NormalizePort(m map[string]any) Port {
	return Port{
		ID:            intField(m, "id", "portId"),
		ChargerID:     intField(m, "chargerId"),
		Code:          stringField(m, "code", "portCode", "name"),
		ConnectorType: stringField(m, "connectorType", "connector"),
		MaxPowerKW:    floatField(m, "maxPowerKw", "maxPower"),
		Status:        stringField(m, "status", "portStatus"),
	}
}

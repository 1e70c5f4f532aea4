package backend

import (
	"context"
	"fmt"

	"chargeflow/internal/api"
	"chargeflow/internal/models"
)

// Catalog wraps the station/charger/port read endpoints used by the booking
// and session-start flows.
type Catalog struct {
	api *api.Client
}

// NewCatalog builds the catalog client.
func NewCatalog(client *api.Client) *Catalog {
	return &Catalog{api: client}
}

// Stations lists all stations.
func (c *Catalog) Stations(ctx context.Context) ([]models.Station, error) {
	var raw []map[string]any
	if err := c.api.Get(ctx, "/Stations", &raw); err != nil {
		return nil, err
	}
	stations := make([]models.Station, 0, len(raw))
	for _, entry := range raw {
		stations = append(stations, models.NormalizeStation(entry))
	}
	return stations, nil
}

// Station fetches one station.
func (c *Catalog) Station(ctx context.Context, id int64) (*models.Station, error) {
	var raw map[string]any
	if err := c.api.Get(ctx, fmt.Sprintf("/Stations/%d", id), &raw); err != nil {
		return nil, err
	}
	station := models.NormalizeStation(raw)
	return &station, nil
}

// ChargersByStation lists the chargers of a station.
func (c *Catalog) ChargersByStation(ctx context.Context, stationID int64) ([]models.Charger, error) {
	var raw []map[string]any
	if err := c.api.Get(ctx, fmt.Sprintf("/Stations/%d/chargers", stationID), &raw); err != nil {
		return nil, err
	}
	chargers := make([]models.Charger, 0, len(raw))
	for _, entry := range raw {
		chargers = append(chargers, models.NormalizeCharger(entry))
	}
	return chargers, nil
}

// Charger fetches one charger.
func (c *Catalog) Charger(ctx context.Context, id int64) (*models.Charger, error) {
	var raw map[string]any
	if err := c.api.Get(ctx, fmt.Sprintf("/Chargers/%d", id), &raw); err != nil {
		return nil, err
	}
	charger := models.NormalizeCharger(raw)
	return &charger, nil
}

// PortsByCharger lists the ports of a charger.
func (c *Catalog) PortsByCharger(ctx context.Context, chargerID int64) ([]models.Port, error) {
	var raw []map[string]any
	if err := c.api.Get(ctx, fmt.Sprintf("/Chargers/%d/ports", chargerID), &raw); err != nil {
		return nil, err
	}
	ports := make([]models.Port, 0, len(raw))
	for _, entry := range raw {
		ports = append(ports, models.NormalizePort(entry))
	}
	return ports, nil
}

// Port fetches one port.
func (c *Catalog) Port(ctx context.Context, id int64) (*models.Port, error) {
	var raw map[string]any
	if err := c.api.Get(ctx, fmt.Sprintf("/Ports/%d", id), &raw); err != nil {
		return nil, err
	}
	port := models.NormalizePort(raw)
	return &port, nil
}

// Package fixtures generates the deterministic reference dataset used
// whenever no remote backend is reachable: six cities, three planes, and
// three daily flights per directed city pair across one calendar month.
// The derivation is fixed; ids, flight numbers, times, and prices must come
// out identical on every run because callers and tests key off them.
package fixtures

import (
	"fmt"
	"sync"
	"time"

	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

const (
	daysInMonth    = 31
	flightsPerDay  = 3
	departureYear  = 2025
	departureMonth = time.December
)

var baseCities = []model.City{
	{ID: "city-nyc", Name: "New York", Code: "NYC", Country: "USA"},
	{ID: "city-lax", Name: "Los Angeles", Code: "LAX", Country: "USA"},
	{ID: "city-chi", Name: "Chicago", Code: "CHI", Country: "USA"},
	{ID: "city-mia", Name: "Miami", Code: "MIA", Country: "USA"},
	{ID: "city-dal", Name: "Dallas", Code: "DAL", Country: "USA"},
	{ID: "city-den", Name: "Denver", Code: "DEN", Country: "USA"},
}

var basePlanes = []model.Plane{
	{ID: "plane-a320", Name: "Airbus A320", Manufacturer: "Airbus"},
	{ID: "plane-b737", Name: "Boeing 737", Manufacturer: "Boeing"},
	{ID: "plane-e195", Name: "Embraer 195", Manufacturer: "Embraer"},
}

var (
	once       sync.Once
	allFlights []model.Flight
	byID       map[string]*model.Flight
)

// Cities returns the fixture city list. Callers must not mutate it.
func Cities() []model.City { return baseCities }

// Planes returns the fixture plane list. Callers must not mutate it.
func Planes() []model.Plane { return basePlanes }

// Flights returns the full generated flight list, building it on first use.
func Flights() []model.Flight {
	once.Do(generate)
	return allFlights
}

// FlightByID looks up one generated flight. Returns model.ErrNotFound when
// the id is not part of the dataset.
func FlightByID(id string) (*model.Flight, error) {
	once.Do(generate)
	if f, ok := byID[id]; ok {
		return f, nil
	}
	return nil, model.ErrNotFound
}

// Search filters the dataset by directed route and travel date.
func Search(q model.FlightQuery) []model.Flight {
	once.Do(generate)
	var matches []model.Flight
	for _, f := range allFlights {
		if f.FromCityID == q.FromCityID && f.ToCityID == q.ToCityID && f.TravelDate == q.TravelDate {
			matches = append(matches, f)
		}
	}
	return matches
}

func generate() {
	flightCounter := 1
	for fromIndex, fromCity := range baseCities {
		for toIndex, toCity := range baseCities {
			if fromCity.ID == toCity.ID {
				continue
			}

			for day := 0; day < daysInMonth; day++ {
				for slot := 0; slot < flightsPerDay; slot++ {
					baseHour := 8 + slot*4 + (fromIndex+toIndex)%3
					departure := time.Date(departureYear, departureMonth, 1+day, baseHour, 0, 0, 0, time.UTC)
					durationHours := 2 + (fromIndex+toIndex+slot)%3
					arrival := departure.Add(time.Duration(durationHours) * time.Hour)

					travelDate := departure.Format("2006-01-02")
					price := float64(120 + fromIndex*15 + toIndex*10 + slot*5 + ((day+flightCounter)%7)*4)
					plane := basePlanes[(flightCounter+slot)%len(basePlanes)]

					allFlights = append(allFlights, model.Flight{
						ID:            fmt.Sprintf("flight-%s-%s-%s-%d", fromCity.Code, toCity.Code, travelDate, slot),
						FlightNumber:  fmt.Sprintf("AB%03d", flightCounter%900+100),
						FromCityID:    fromCity.ID,
						ToCityID:      toCity.ID,
						DepartureTime: departure.Format(time.RFC3339),
						ArrivalTime:   arrival.Format(time.RFC3339),
						Price:         price,
						TravelDate:    travelDate,
						PlaneID:       plane.ID,
					})

					flightCounter++
				}
			}
		}
	}

	byID = make(map[string]*model.Flight, len(allFlights))
	for i := range allFlights {
		byID[allFlights[i].ID] = &allFlights[i]
	}
}

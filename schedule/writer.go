package schedule

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

const scheduleDoctype = `<!DOCTYPE transitSchedule SYSTEM "http://www.matsim.org/files/dtd/transitSchedule_v2.dtd">` + "\n"

type xmlSchedule struct {
	XMLName xml.Name          `xml:"transitSchedule"`
	Stops   []xmlStopFacility `xml:"transitStops>stopFacility"`
	Lines   []xmlLine         `xml:"transitLine"`
}

type xmlStopFacility struct {
	ID         string  `xml:"id,attr"`
	X          float64 `xml:"x,attr"`
	Y          float64 `xml:"y,attr"`
	LinkRefID  string  `xml:"linkRefId,attr,omitempty"`
	Name       string  `xml:"name,attr,omitempty"`
	IsBlocking string  `xml:"isBlocking,attr"`
}

type xmlLine struct {
	ID     string     `xml:"id,attr"`
	Name   string     `xml:"name,attr,omitempty"`
	Routes []xmlRoute `xml:"transitRoute"`
}

type xmlRoute struct {
	ID            string         `xml:"id,attr"`
	Description   string         `xml:"description,omitempty"`
	TransportMode string         `xml:"transportMode"`
	Profile       []xmlRouteStop `xml:"routeProfile>stop"`
	Links         []xmlRouteLink `xml:"route>link,omitempty"`
	Departures    []xmlDeparture `xml:"departures>departure"`
}

type xmlRouteStop struct {
	RefID           string `xml:"refId,attr"`
	ArrivalOffset   string `xml:"arrivalOffset,attr,omitempty"`
	DepartureOffset string `xml:"departureOffset,attr,omitempty"`
	AwaitDeparture  string `xml:"awaitDeparture,attr,omitempty"`
}

type xmlRouteLink struct {
	RefID string `xml:"refId,attr"`
}

type xmlDeparture struct {
	ID            string `xml:"id,attr"`
	DepartureTime string `xml:"departureTime,attr"`
	VehicleRefID  string `xml:"vehicleRefId,attr,omitempty"`
}

// WriteFile writes the schedule as MATSim-format XML.
func WriteFile(s *Schedule, path string) error {
	f, err := os.Create(path) //nolint:gosec // caller-supplied output path
	if err != nil {
		return fmt.Errorf("failed to create schedule file: %w", err)
	}
	defer f.Close()
	if err := Write(s, f); err != nil {
		return fmt.Errorf("failed to write schedule file %s: %w", path, err)
	}
	return nil
}

// Write writes the schedule as MATSim-format XML. Facilities, lines,
// routes and departures are emitted in sorted id order so identical
// schedules serialize identically.
func Write(s *Schedule, w io.Writer) error {
	doc := xmlSchedule{}
	for _, id := range s.FacilityIDs() {
		f := s.Facility(id)
		doc.Stops = append(doc.Stops, xmlStopFacility{
			ID:         f.ID,
			X:          f.Coord.X,
			Y:          f.Coord.Y,
			LinkRefID:  f.RefLinkID,
			Name:       f.Name,
			IsBlocking: boolAttr(f.IsBlocking),
		})
	}
	for _, line := range s.Lines() {
		xl := xmlLine{ID: line.ID, Name: line.Name}
		for _, route := range line.Routes() {
			xr := xmlRoute{
				ID:            route.ID,
				Description:   route.Description,
				TransportMode: route.Mode,
			}
			for _, stop := range route.Stops {
				xr.Profile = append(xr.Profile, xmlRouteStop{
					RefID:           stop.Facility.ID,
					ArrivalOffset:   FormatTime(stop.ArrivalOffset),
					DepartureOffset: FormatTime(stop.DepartureOffset),
					AwaitDeparture:  boolAttr(stop.AwaitDeparture),
				})
			}
			for _, linkID := range route.Links {
				xr.Links = append(xr.Links, xmlRouteLink{RefID: linkID})
			}
			for _, dep := range route.Departures() {
				xr.Departures = append(xr.Departures, xmlDeparture{
					ID:            dep.ID,
					DepartureTime: FormatTime(dep.Time),
					VehicleRefID:  dep.VehicleID,
				})
			}
			xl.Routes = append(xl.Routes, xr)
		}
		doc.Lines = append(doc.Lines, xl)
	}

	if _, err := io.WriteString(w, xml.Header+scheduleDoctype); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func boolAttr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

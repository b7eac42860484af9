package cityjson

import (
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"
)

// Metadata is the optional dataset metadata of a CityJSON document.
type Metadata struct {
	GeographicalExtent *[6]float64      `json:"geographicalExtent,omitempty"`
	Identifier         string           `json:"identifier,omitempty"`
	PointOfContact     *PointOfContact  `json:"pointOfContact,omitempty"`
	ReferenceDate      string           `json:"referenceDate,omitempty"`
	ReferenceSystem    *ReferenceSystem `json:"referenceSystem,omitempty"`
	Title              string           `json:"title,omitempty"`
}

// Clone returns a deep copy of m.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	out := *m
	if m.GeographicalExtent != nil {
		e := *m.GeographicalExtent
		out.GeographicalExtent = &e
	}
	if m.PointOfContact != nil {
		p := *m.PointOfContact
		if m.PointOfContact.Address != nil {
			a := *m.PointOfContact.Address
			p.Address = &a
		}
		out.PointOfContact = &p
	}
	if m.ReferenceSystem != nil {
		r := *m.ReferenceSystem
		out.ReferenceSystem = &r
	}
	return &out
}

// PointOfContact identifies who is responsible for the dataset.
type PointOfContact struct {
	ContactName  string   `json:"contactName"`
	ContactType  string   `json:"contactType,omitempty"`
	Role         string   `json:"role,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	EmailAddress string   `json:"emailAddress"`
	Website      string   `json:"website,omitempty"`
	Address      *Address `json:"address,omitempty"`
}

// Address is the postal address of a point of contact.
type Address struct {
	ThoroughfareNumber int64  `json:"thoroughfareNumber"`
	ThoroughfareName   string `json:"thoroughfareName"`
	Locality           string `json:"locality"`
	PostalCode         string `json:"postalCode"`
	Country            string `json:"country"`
}

const crsURLPrefix = "https://www.opengis.net/def/crs/"

// ReferenceSystem identifies the coordinate reference system. On the wire it
// is an OGC CRS URL, https://www.opengis.net/def/crs/{authority}/{version}/{code}.
type ReferenceSystem struct {
	Authority string
	Version   string
	Code      string
}

// ParseReferenceSystem splits an OGC CRS URL into its parts.
func ParseReferenceSystem(s string) (ReferenceSystem, error) {
	rest, ok := strings.CutPrefix(s, crsURLPrefix)
	if !ok {
		return ReferenceSystem{}, fmt.Errorf("%w: referenceSystem %q is not an OGC CRS URL", ErrSchemaViolation, s)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ReferenceSystem{}, fmt.Errorf("%w: referenceSystem %q, want %s{authority}/{version}/{code}", ErrSchemaViolation, s, crsURLPrefix)
	}
	return ReferenceSystem{Authority: parts[0], Version: parts[1], Code: parts[2]}, nil
}

// URL renders r back into its OGC CRS URL form.
func (r ReferenceSystem) URL() string {
	return crsURLPrefix + r.Authority + "/" + r.Version + "/" + r.Code
}

func (r ReferenceSystem) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(r.URL())
}

func (r *ReferenceSystem) UnmarshalJSON(data []byte) error {
	var s string
	if err := gojson.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseReferenceSystem(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

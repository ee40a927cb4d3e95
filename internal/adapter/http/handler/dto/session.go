package dto

import (
	"strings"

	"github.com/Temutjin2k/govv-tracker/internal/domain/models"
	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/validator"
)

type CreateSessionRequest struct {
	Source  types.SourceKind `json:"source"`
	Name    string           `json:"name,omitempty"`
	Notes   string           `json:"notes,omitempty"`
	Private bool             `json:"private,omitempty"`
}

func (r *CreateSessionRequest) Validate(v *validator.Validator) {
	if r.Source == "" {
		r.Source = types.SourceSimulated
	}
	v.Check(r.Source.Valid(), "source", "must be one of simulated, live")
	if r.Name != "" {
		r.Name = strings.TrimSpace(r.Name)
		v.Check(r.Name != "", "name", "must not be blank")
	}
	v.Check(len(r.Name) <= 200, "name", "must not be more than 200 bytes long")
	v.Check(len(r.Notes) <= 4000, "notes", "must not be more than 4000 bytes long")
}

func (r *CreateSessionRequest) Options() models.SessionOptions {
	return models.SessionOptions{Name: r.Name, Notes: r.Notes, Private: r.Private}
}

// SampleRequest is a device position; t is unix seconds and defaults to the receive time.
type SampleRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
	T   *float64 `json:"t,omitempty"`
}

func (r *SampleRequest) Validate(v *validator.Validator) {
	v.Check(r.Lat != nil, "lat", "must be provided")
	v.Check(r.Lng != nil, "lng", "must be provided")
	if r.Lat != nil {
		v.Check(validator.Between(*r.Lat, -90, 90), "lat", "must be between -90 and 90")
	}
	if r.Lng != nil {
		v.Check(validator.Between(*r.Lng, -180, 180), "lng", "must be between -180 and 180")
	}
	if r.T != nil {
		v.Check(validator.Finite(*r.T) && *r.T > 0, "t", "must be a positive unix timestamp")
	}
}

func (r *SampleRequest) ToModel(now float64) models.Position {
	t := now
	if r.T != nil {
		t = *r.T
	}
	return models.Position{Lat: *r.Lat, Lng: *r.Lng, T: t}
}

package dto

import (
	"math"
	"testing"

	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	"github.com/Temutjin2k/govv-tracker/pkg/validator"
)

func ptr(f float64) *float64 { return &f }

func TestSampleRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		req    SampleRequest
		fields []string
	}{
		{"ok", SampleRequest{Lat: ptr(12.97), Lng: ptr(77.59)}, nil},
		{"missing", SampleRequest{}, []string{"lat", "lng"}},
		{"out of range", SampleRequest{Lat: ptr(91), Lng: ptr(-181)}, []string{"lat", "lng"}},
		{"nan", SampleRequest{Lat: ptr(math.NaN()), Lng: ptr(1)}, []string{"lat"}},
		{"bad time", SampleRequest{Lat: ptr(1), Lng: ptr(1), T: ptr(-5)}, []string{"t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			tt.req.Validate(v)
			if len(v.Errors) != len(tt.fields) {
				t.Fatalf("errors = %v, want fields %v", v.Errors, tt.fields)
			}
			for _, f := range tt.fields {
				if _, ok := v.Errors[f]; !ok {
					t.Errorf("missing error for %s", f)
				}
			}
		})
	}
}

func TestSampleRequestDefaultsTime(t *testing.T) {
	r := SampleRequest{Lat: ptr(1), Lng: ptr(2)}
	if p := r.ToModel(100); p.T != 100 {
		t.Fatalf("T = %v, want 100", p.T)
	}
	r.T = ptr(50)
	if p := r.ToModel(100); p.T != 50 {
		t.Fatalf("T = %v, want 50", p.T)
	}
}

func TestCreateSessionRequestDefaultsSource(t *testing.T) {
	r := CreateSessionRequest{}
	v := validator.New()
	r.Validate(v)
	if !v.Valid() || r.Source != types.SourceSimulated {
		t.Fatalf("source = %q errors = %v", r.Source, v.Errors)
	}

	r = CreateSessionRequest{Source: "gps"}
	v = validator.New()
	r.Validate(v)
	if v.Valid() {
		t.Fatal("expected invalid source")
	}
}

func TestCreateSessionRequestName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		invalid bool
	}{
		{"empty uses default", "", "", false},
		{"trimmed", "  Morning loop ", "Morning loop", false},
		{"blank", "   ", "", true},
		{"tabs and newlines", "\t\n", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CreateSessionRequest{Name: tt.in}
			v := validator.New()
			r.Validate(v)
			if _, bad := v.Errors["name"]; bad != tt.invalid {
				t.Fatalf("errors = %v, want name invalid = %v", v.Errors, tt.invalid)
			}
			if !tt.invalid && r.Options().Name != tt.want {
				t.Fatalf("name = %q, want %q", r.Options().Name, tt.want)
			}
		})
	}
}

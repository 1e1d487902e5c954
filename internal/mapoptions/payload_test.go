package mapoptions

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPayloadEncodeValidatesAgainstSchema(t *testing.T) {
	opts, err := NewBuilder(nil).Build(context.Background(), testDefaults(), Request{})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	payload := Payload{
		Options: opts,
		Markers: []Marker{
			{ID: 1, Title: "Pike Place", Latitude: 47.6, Longitude: -122.3, Icon: "default-marker.png"},
		},
	}

	encoded, err := payload.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !strings.Contains(string(encoded), `"categories":[]`) {
		t.Fatalf("expected empty categories array, got %s", encoded)
	}
	if payload.Markers[0].Categories != nil {
		t.Fatal("expected Encode to leave the caller's markers untouched")
	}
	if err := ValidatePayload(encoded); err != nil {
		t.Fatalf("expected payload to validate, got %v", err)
	}
}

func TestValidatePayloadRejectsOutOfRangeZoom(t *testing.T) {
	opts, _ := NewBuilder(nil).Build(context.Background(), testDefaults(), Request{Zoom: ptr(30)})
	encoded, err := Payload{Options: opts}.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if err := ValidatePayload(encoded); !errors.Is(err, ErrPayloadInvalid) {
		t.Fatalf("expected ErrPayloadInvalid, got %v", err)
	}
}

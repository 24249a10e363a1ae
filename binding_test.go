package keyglow

import (
	"strings"
	"testing"
)

func TestNewBoolBinding(t *testing.T) {
	loc := ParamLocation{Strip: 0, Param: "B1"}
	b, err := NewBoolBinding(97, loc, 116)
	if err != nil {
		t.Fatalf("NewBoolBinding returned error: %v", err)
	}

	if b.Trigger() != 97 {
		t.Errorf("Trigger = %d, want 97", b.Trigger())
	}
	if b.Location() != loc {
		t.Errorf("Location = %v, want %v", b.Location(), loc)
	}
	if b.Indicator() != 116 {
		t.Errorf("Indicator = %d, want 116", b.Indicator())
	}
	if b.Kind() != KindBoolean {
		t.Errorf("Kind = %v, want %v", b.Kind(), KindBoolean)
	}
	if b.Name() != "strip[0].B1" {
		t.Errorf("Name = %q, want location default", b.Name())
	}
	if _, _, ok := b.GainRange(); ok {
		t.Error("boolean binding reports a gain range")
	}
}

func TestNewGainBinding(t *testing.T) {
	b, err := NewGainBinding(104, ParamLocation{Strip: 5, Param: "gain"}, 110, 0.0, -30.0)
	if err != nil {
		t.Fatalf("NewGainBinding returned error: %v", err)
	}

	if b.Kind() != KindGain {
		t.Errorf("Kind = %v, want %v", b.Kind(), KindGain)
	}
	origin, end, ok := b.GainRange()
	if !ok {
		t.Fatal("gain binding reports no gain range")
	}
	if origin != 0.0 || end != -30.0 {
		t.Errorf("GainRange = (%v, %v), want (0, -30)", origin, end)
	}
}

func TestNewBinding_WithName(t *testing.T) {
	b, err := NewBoolBinding(97, ParamLocation{Strip: 0, Param: "B1"}, 116,
		WithName("Mic to Headphones"),
	)
	if err != nil {
		t.Fatalf("NewBoolBinding returned error: %v", err)
	}
	if b.Name() != "Mic to Headphones" {
		t.Errorf("Name = %q, want custom name", b.Name())
	}
}

func TestNewBinding_ValidationErrors(t *testing.T) {
	loc := ParamLocation{Strip: 0, Param: "B1"}

	tests := []struct {
		name    string
		build   func() (Binding, error)
		wantErr string
	}{
		{
			name:    "negative trigger",
			build:   func() (Binding, error) { return NewBoolBinding(-1, loc, 116) },
			wantErr: "trigger must be non-negative",
		},
		{
			name: "negative strip",
			build: func() (Binding, error) {
				return NewBoolBinding(97, ParamLocation{Strip: -1, Param: "B1"}, 116)
			},
			wantErr: "strip index must be non-negative",
		},
		{
			name: "empty param",
			build: func() (Binding, error) {
				return NewBoolBinding(97, ParamLocation{Strip: 0}, 116)
			},
			wantErr: "parameter name cannot be empty",
		},
		{
			name:    "negative indicator",
			build:   func() (Binding, error) { return NewBoolBinding(97, loc, -1) },
			wantErr: "indicator must be non-negative",
		},
		{
			name: "empty name option",
			build: func() (Binding, error) {
				return NewBoolBinding(97, loc, 116, WithName(""))
			},
			wantErr: "name cannot be empty",
		},
		{
			name: "gain binding validates too",
			build: func() (Binding, error) {
				return NewGainBinding(-1, loc, 110, 0.0, -30.0)
			},
			wantErr: "trigger must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParamLocation_String(t *testing.T) {
	loc := ParamLocation{Strip: 5, Param: "gain"}
	if got := loc.String(); got != "strip[5].gain" {
		t.Errorf("String() = %q, want strip[5].gain", got)
	}
}

package keyglow

import (
	"strings"
	"testing"
)

func TestNewBindingBank(t *testing.T) {
	bindings, err := NewBindingBank("Send A1", "A1", []int{5, 6, 7}, 100, 113)
	if err != nil {
		t.Fatalf("NewBindingBank returned error: %v", err)
	}
	if len(bindings) != 3 {
		t.Fatalf("got %d bindings, want 3", len(bindings))
	}

	for i, b := range bindings {
		if b.Trigger() != 100+i {
			t.Errorf("binding %d trigger = %d, want %d", i, b.Trigger(), 100+i)
		}
		if b.Indicator() != 113+i {
			t.Errorf("binding %d indicator = %d, want %d", i, b.Indicator(), 113+i)
		}
		if b.Location().Strip != 5+i || b.Location().Param != "A1" {
			t.Errorf("binding %d location = %v", i, b.Location())
		}
		if b.Kind() != KindBoolean {
			t.Errorf("binding %d kind = %v, want boolean", i, b.Kind())
		}
	}

	if bindings[0].Name() != "Send A1 (strip 5)" {
		t.Errorf("first binding name = %q", bindings[0].Name())
	}
	if bindings[2].Name() != "Send A1 (strip 7)" {
		t.Errorf("last binding name = %q", bindings[2].Name())
	}
}

func TestNewBindingBank_GainRange(t *testing.T) {
	bindings, err := NewBindingBank("Fader", "gain", []int{0, 1}, 50, 60,
		WithBankGainRange(0.0, -30.0),
	)
	if err != nil {
		t.Fatalf("NewBindingBank returned error: %v", err)
	}

	for i, b := range bindings {
		if b.Kind() != KindGain {
			t.Errorf("binding %d kind = %v, want gain", i, b.Kind())
		}
		origin, end, ok := b.GainRange()
		if !ok || origin != 0.0 || end != -30.0 {
			t.Errorf("binding %d range = (%v, %v, %v)", i, origin, end, ok)
		}
	}
}

func TestNewBindingBank_SparseStrips(t *testing.T) {
	// strips need not be contiguous; offsets follow list position
	bindings, err := NewBindingBank("Mute", "mute", []int{2, 9}, 40, 70)
	if err != nil {
		t.Fatalf("NewBindingBank returned error: %v", err)
	}

	if bindings[1].Location().Strip != 9 {
		t.Errorf("second binding strip = %d, want 9", bindings[1].Location().Strip)
	}
	if bindings[1].Trigger() != 41 {
		t.Errorf("second binding trigger = %d, want 41", bindings[1].Trigger())
	}
}

func TestNewBindingBank_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		build   func() ([]Binding, error)
		wantErr string
	}{
		{
			name:    "empty base name",
			build:   func() ([]Binding, error) { return NewBindingBank("  ", "A1", []int{5}, 100, 113) },
			wantErr: "base name cannot be empty",
		},
		{
			name:    "empty param",
			build:   func() ([]Binding, error) { return NewBindingBank("Send A1", "", []int{5}, 100, 113) },
			wantErr: "parameter name cannot be empty",
		},
		{
			name:    "no strips",
			build:   func() ([]Binding, error) { return NewBindingBank("Send A1", "A1", nil, 100, 113) },
			wantErr: "at least one strip",
		},
		{
			name:    "negative base",
			build:   func() ([]Binding, error) { return NewBindingBank("Send A1", "A1", []int{5}, -1, 113) },
			wantErr: "must be non-negative",
		},
		{
			name:    "negative strip",
			build:   func() ([]Binding, error) { return NewBindingBank("Send A1", "A1", []int{-3}, 100, 113) },
			wantErr: "strip index must be non-negative",
		},
		{
			name:    "duplicate strip",
			build:   func() ([]Binding, error) { return NewBindingBank("Send A1", "A1", []int{5, 5}, 100, 113) },
			wantErr: "duplicate strip index",
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

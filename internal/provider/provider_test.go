package provider

import (
	"encoding/json"
	"testing"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     string
	}{
		{"rise", 417.2, 410, "1.76"},
		{"fall", 90, 100, "-10.00"},
		{"flat", 5, 5, "0.00"},
		{"zero previous close", 12.5, 0, "0.00"},
		{"rounds half away from zero", 100.005, 100, "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentChange(tt.current, tt.previous)
			if got.String() != tt.want {
				t.Fatalf("PercentChange(%v, %v) = %s, want %s", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}

func TestPercent_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		P Percent `json:"p"`
	}{PercentChange(417.2, 410)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"p":"1.76"}` {
		t.Fatalf("unexpected encoding: %s", b)
	}

	for _, in := range []string{`"1.76"`, `1.76`} {
		var p Percent
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if p.String() != "1.76" {
			t.Fatalf("unmarshal %s = %s", in, p)
		}
	}

	var p Percent
	if err := json.Unmarshal([]byte(`"abc"`), &p); err == nil {
		t.Fatalf("expected error for non-numeric percent")
	}
}

package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"dot separator", "12.34", "12.34", false},
		{"comma separator", "12,34", "12.34", false},
		{"negative", "-15.99", "-15.99", false},
		{"explicit positive", "+15.99", "15.99", false},
		{"integer", "1200", "1200", false},
		{"rounds half-up", "12.345", "12.35", false},
		{"rounds down", "12.344", "12.34", false},
		{"whitespace", "  7.50 ", "7.5", false},
		{"empty", "", "", true},
		{"zero", "0", "", true},
		{"zero after rounding", "0.001", "", true},
		{"garbage", "abc", "", true},
		{"double separator", "1.2.3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, want)
			}
		})
	}
}

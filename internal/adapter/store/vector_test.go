package store

import "testing"

func TestVectorToString(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want string
	}{
		{"empty", nil, "[]"},
		{"single", []float32{0.5}, "[0.5]"},
		{"multiple", []float32{1, -0.25, 0.125}, "[1,-0.25,0.125]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vectorToString(tt.in); got != tt.want {
				t.Errorf("vectorToString(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

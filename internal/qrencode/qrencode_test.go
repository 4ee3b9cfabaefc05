package qrencode

import (
	"bytes"
	"image/png"
	"testing"
)

func decodeWidth(t *testing.T, data []byte) int {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return cfg.Width
}

func TestPNGSizeBounds(t *testing.T) {
	cases := []struct {
		name string
		size int
		want int
	}{
		{"default", 0, DefaultSize},
		{"negative", -5, DefaultSize},
		{"explicit", 512, 512},
		{"clamped", 100000, MaxSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := PNG("4f9d1c2b8a7e6f5d4c3b2a1908f7e6d5", tc.size)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if got := decodeWidth(t, data); got != tc.want {
				t.Errorf("width = %d, want %d", got, tc.want)
			}
		})
	}
}

package logging

import "testing"

func TestMaskIMSI(t *testing.T) {
	tests := []struct {
		name    string
		imsi    string
		enabled bool
		want    string
	}{
		{"masking enabled", "001010000000001", true, "00101*********1"},
		{"masking disabled", "001010000000001", false, "001010000000001"},
		{"too short", "00101", true, "00101"},
		{"empty", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskIMSI(tt.imsi, tt.enabled)
			if got != tt.want {
				t.Errorf("MaskIMSI(%q, %v) = %q, want %q", tt.imsi, tt.enabled, got, tt.want)
			}
		})
	}
}

func TestMaskGUTI(t *testing.T) {
	tests := []struct {
		name    string
		guti    string
		enabled bool
		want    string
	}{
		{"M-TMSI masked", "00101-8001-01-c0000001", true, "00101-8001-01-******01"},
		{"masking disabled", "00101-8001-01-c0000001", false, "00101-8001-01-c0000001"},
		{"no separator", "abcdef", true, "****ef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskGUTI(tt.guti, tt.enabled)
			if got != tt.want {
				t.Errorf("MaskGUTI(%q, %v) = %q, want %q", tt.guti, tt.enabled, got, tt.want)
			}
		})
	}
}

func TestMaskPartial(t *testing.T) {
	tests := []struct {
		name       string
		s          string
		keepPrefix int
		keepSuffix int
		want       string
	}{
		{"standard", "1234567890", 3, 2, "123*****90"},
		{"exact length", "abcd", 2, 2, "abcd"},
		{"one masked", "abcde", 2, 2, "ab*de"},
		{"empty", "", 2, 2, ""},
		{"unicode", "あいうえおか", 1, 1, "あ****か"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskPartial(tt.s, tt.keepPrefix, tt.keepSuffix, '*')
			if got != tt.want {
				t.Errorf("MaskPartial(%q, %d, %d) = %q, want %q",
					tt.s, tt.keepPrefix, tt.keepSuffix, got, tt.want)
			}
		})
	}
}

func TestMasker(t *testing.T) {
	m := NewMasker(true)
	if !m.IsEnabled() {
		t.Error("IsEnabled() = false, want true")
	}
	if got := m.IMSI("001010000000001"); got != "00101*********1" {
		t.Errorf("IMSI() = %q", got)
	}
	if got := NewMasker(false).GUTI("00101-8001-01-c0000001"); got != "00101-8001-01-c0000001" {
		t.Errorf("GUTI() = %q", got)
	}
}

package utils

import (
	"strings"
	"testing"
)

func TestInitialsFromName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ndapewa Amutenya", "NA"},
		{"Maria dos Santos", "MS"},
		{"Cher", "C"},
		{"  ", "G"},
		{"", "G"},
	}
	for _, tt := range tests {
		if got := InitialsFromName(tt.name); got != tt.want {
			t.Errorf("InitialsFromName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGuestAvatarURLStable(t *testing.T) {
	first := GuestAvatarURL("Ndapewa Amutenya")
	second := GuestAvatarURL("Ndapewa Amutenya")
	if first != second {
		t.Errorf("avatar URL should be stable for the same name, got %q and %q", first, second)
	}
	if !strings.Contains(first, "seed=NA") {
		t.Errorf("avatar URL should carry the initials, got %q", first)
	}
	if !strings.HasPrefix(first, "https://") {
		t.Errorf("avatar URL should be https, got %q", first)
	}
}

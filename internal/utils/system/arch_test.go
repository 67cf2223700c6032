package system

import "testing"

func TestDetectHostArchNonEmpty(t *testing.T) {
	if DetectHostArch() == "" {
		t.Fatal("DetectHostArch returned empty string")
	}
}

func TestNormalizeArch(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"amd64", "x86_64"},
		{"ARM64", "aarch64"},
		{" x86_64 ", "x86_64"},
		{"riscv64", "riscv64"},
	}
	for _, tc := range tests {
		if got := NormalizeArch(tc.in); got != tc.want {
			t.Errorf("NormalizeArch(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsKnownArchDir(t *testing.T) {
	if !IsKnownArchDir("aarch64") {
		t.Error("aarch64 should be known")
	}
	if IsKnownArchDir("mips") {
		t.Error("mips should not be known")
	}
}

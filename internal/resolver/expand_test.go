package resolver

import (
	"reflect"
	"testing"
)

func TestExpandGroups(t *testing.T) {
	groups := map[string][]string{
		"core": {"bash", "coreutils"},
	}

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"expansion", []string{"core", "vim"}, []string{"bash", "coreutils", "vim"}},
		{"passthrough", []string{"vim"}, []string{"vim"}},
		{"dedup", []string{"core", "bash"}, []string{"bash", "coreutils"}},
		{"empty", nil, []string{}},
	}
	for _, tc := range tests {
		if got := ExpandGroups(tc.in, groups); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: ExpandGroups(%v) = %v, want %v", tc.name, tc.in, got, tc.want)
		}
	}
}

package rpmmd

import (
	"reflect"
	"testing"
)

const sampleComps = `<?xml version="1.0" encoding="UTF-8"?>
<comps>
  <group>
    <id>core</id>
    <name>Core</name>
    <packagelist>
      <packagereq type="mandatory">bash</packagereq>
      <packagereq type="default">coreutils</packagereq>
      <packagereq type="optional">vim-enhanced</packagereq>
    </packagelist>
  </group>
  <group>
    <id>empty</id>
    <packagelist>
      <packagereq type="optional">only-optional</packagereq>
    </packagelist>
  </group>
</comps>`

func TestParseGroups(t *testing.T) {
	groups, err := parseGroups([]byte(sampleComps))
	if err != nil {
		t.Fatalf("parseGroups: %v", err)
	}
	if want := []string{"bash", "coreutils"}; !reflect.DeepEqual(groups["core"], want) {
		t.Errorf("core = %v, want %v (optional dropped)", groups["core"], want)
	}
	if _, ok := groups["empty"]; ok {
		t.Error("group with no mandatory/default packages should be absent")
	}
}

package kickstart

import "testing"

func TestConditionalStartsActive(t *testing.T) {
	c := newConditionalState()
	if !c.active() {
		t.Fatal("fresh state should be active")
	}
}

func TestConditionalIfArch(t *testing.T) {
	c := newConditionalState()
	c.pushIfArch([]string{"x86_64", "aarch64"}, "aarch64")
	if !c.active() {
		t.Fatal("matching arch should stay active")
	}
	c.endif()

	c.pushIfArch([]string{"x86_64"}, "aarch64")
	if c.active() {
		t.Fatal("non-matching arch should deactivate")
	}
	c.elseBranch()
	if !c.active() {
		t.Fatal("else of a non-taken branch should activate")
	}
	c.endif()
	if !c.active() {
		t.Fatal("endif should restore the outer state")
	}
}

func TestConditionalElseOfTakenBranch(t *testing.T) {
	c := newConditionalState()
	c.pushIf(1)
	if !c.active() {
		t.Fatal("taken branch should be active")
	}
	c.elseBranch()
	if c.active() {
		t.Fatal("else of a taken branch should deactivate")
	}
	c.endif()
}

func TestConditionalNesting(t *testing.T) {
	c := newConditionalState()
	c.pushIf(0)
	c.pushIf(1)
	if c.active() {
		t.Fatal("inner true inside outer false must stay inactive")
	}
	c.endif()
	c.elseBranch()
	if !c.active() {
		t.Fatal("outer else should activate")
	}
	c.endif()
}

func TestConditionalStrayEndif(t *testing.T) {
	c := newConditionalState()
	c.endif()
	c.endif()
	if !c.active() {
		t.Fatal("stray endifs must not corrupt the state")
	}
	c.pushIf(0)
	if c.active() {
		t.Fatal("push after stray endifs should still work")
	}
}

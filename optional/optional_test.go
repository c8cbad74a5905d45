package optional

import "testing"

func TestOptionalZeroValue(t *testing.T) {
	var o Optional[uint32]

	if o.HasValue() {
		t.Errorf("expected zero Optional to be empty")
	}
	if got := o.Get(); got != 0 {
		t.Errorf("expected Get on empty Optional to return 0 but got %d", got)
	}
	if got := o.GetOr(42); got != 42 {
		t.Errorf("expected GetOr to return the default 42 but got %d", got)
	}
}

func TestOptionalSetZero(t *testing.T) {
	var o Optional[uint32]
	o.Set(0)

	if !o.HasValue() {
		t.Fatalf("expected Optional to have a value after Set(0)")
	}
	if got := o.GetOr(7); got != 0 {
		t.Errorf("expected GetOr to return the set 0 but got %d", got)
	}
}

func TestOptionalReset(t *testing.T) {
	o := Of("graphics")
	if !o.HasValue() || o.Get() != "graphics" {
		t.Fatalf("unexpected Optional returned by Of: %+v", o)
	}

	o.Reset()

	if o.HasValue() {
		t.Errorf("expected Optional to be empty after Reset")
	}
	if o.Get() != "" {
		t.Errorf("expected Reset to clear the value, got %q", o.Get())
	}
}

package systolic

import "testing"

func TestScalarBubbleIsNotZero(t *testing.T) {
	if Bubble.IsZero() {
		t.Fatal("Bubble must not be IsZero")
	}
	if !Bubble.IsBubble() {
		t.Fatal("Bubble must be IsBubble")
	}
}

func TestScalarValueZeroIsZeroNotBubble(t *testing.T) {
	z := NewValue(0)
	if z.IsBubble() {
		t.Fatal("NewValue(0) must not be IsBubble")
	}
	if !z.IsZero() {
		t.Fatal("NewValue(0) must be IsZero")
	}
}

func TestScalarString(t *testing.T) {
	cases := []struct {
		s    Scalar
		want string
	}{
		{Bubble, "."},
		{NewValue(0), "0"},
		{NewValue(-7), "-7"},
		{NewValue(42), "42"},
	}
	for _, c := range cases {
		if got := c.s.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

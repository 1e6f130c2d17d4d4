package fixed

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestToFixed(t *testing.T) {
	cases := []struct {
		raw       string
		precision int32
		want      string
	}{
		{"10.5", 2, "10.5"},
		{"2.0", 2, "2"},
		{"0.37", 2, "0.37"},
		{"0.125", 2, "0.13"},
		{"1234", 0, "1234"},
		{"-3.456", 2, "-3.46"},
		{"0.0001", 4, "0.0001"},
	}
	for _, c := range cases {
		got, err := ToFixed(c.raw, c.precision)
		if err != nil {
			t.Fatalf("ToFixed(%q, %d) error: %v", c.raw, c.precision, err)
		}
		if got.String() != c.want {
			t.Fatalf("ToFixed(%q, %d) got=%s want=%s", c.raw, c.precision, got.String(), c.want)
		}
	}
}

func TestToFixed_NoFloatDrift(t *testing.T) {
	// 0.1 is not representable in binary floating point; parsing the string
	// directly must yield exactly one tenth.
	got, err := ToFixed("0.1", 2)
	if err != nil {
		t.Fatalf("ToFixed error: %v", err)
	}
	if got.String() != "0.1" {
		t.Fatalf("got=%s want=0.1", got.String())
	}
}

func TestToFixed_Malformed(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.2.3", "10,5", "0x1f"} {
		_, err := ToFixed(raw, 2)
		if !errors.Is(err, ErrMalformedNumeric) {
			t.Fatalf("ToFixed(%q) err=%v, want ErrMalformedNumeric", raw, err)
		}
	}
}

func TestInt64FromString(t *testing.T) {
	n, err := Int64FromString("1695000000000")
	if err != nil {
		t.Fatalf("Int64FromString error: %v", err)
	}
	if n != 1695000000000 {
		t.Fatalf("got=%d want=1695000000000", n)
	}

	for _, raw := range []string{"", "12.5", "abc"} {
		if _, err := Int64FromString(raw); !errors.Is(err, ErrMalformedNumeric) {
			t.Fatalf("Int64FromString(%q) err=%v, want ErrMalformedNumeric", raw, err)
		}
	}
}

func TestMillisToNanos(t *testing.T) {
	ns, err := MillisToNanos(1695000000123)
	if err != nil {
		t.Fatalf("MillisToNanos error: %v", err)
	}
	if ns != 1695000000123000000 {
		t.Fatalf("got=%d want=1695000000123000000", ns)
	}

	// Zero and negative inputs convert without error.
	ns, err = MillisToNanos(0)
	if err != nil || ns != 0 {
		t.Fatalf("MillisToNanos(0) got=(%d, %v)", ns, err)
	}
	ns, err = MillisToNanos(-1000)
	if err != nil || ns != -1000000000 {
		t.Fatalf("MillisToNanos(-1000) got=(%d, %v)", ns, err)
	}
}

func TestMillisToNanos_Overflow(t *testing.T) {
	limit := int64(math.MaxInt64) / int64(time.Millisecond)

	if _, err := MillisToNanos(limit); err != nil {
		t.Fatalf("MillisToNanos(limit) should fit, got err: %v", err)
	}
	if _, err := MillisToNanos(limit + 1); !errors.Is(err, ErrTimestampOverflow) {
		t.Fatalf("MillisToNanos(limit+1) err=%v, want ErrTimestampOverflow", err)
	}
	if _, err := MillisToNanos(-limit - 1); !errors.Is(err, ErrTimestampOverflow) {
		t.Fatalf("MillisToNanos(-limit-1) err=%v, want ErrTimestampOverflow", err)
	}
}

func TestTimeFromMillis(t *testing.T) {
	ts, err := TimeFromMillis(1695000000123)
	if err != nil {
		t.Fatalf("TimeFromMillis error: %v", err)
	}
	if !ts.Equal(time.UnixMilli(1695000000123)) {
		t.Fatalf("got=%v want=%v", ts, time.UnixMilli(1695000000123))
	}
	if ts.Location() != time.UTC {
		t.Fatalf("timestamp should be UTC, got %v", ts.Location())
	}

	if _, err := TimeFromMillis(math.MaxInt64); !errors.Is(err, ErrTimestampOverflow) {
		t.Fatalf("err=%v, want ErrTimestampOverflow", err)
	}
}

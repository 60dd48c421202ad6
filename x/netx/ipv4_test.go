package netx

import "testing"

func TestParseIPv4_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want Addr
	}{
		{"0.0.0.0", Addr{0, 0, 0, 0}},
		{"127.0.0.1", Addr{127, 0, 0, 1}},
		{"192.168.1.42", Addr{192, 168, 1, 42}},
		{"255.255.255.255", Addr{255, 255, 255, 255}},
		{"010.001.000.099", Addr{10, 1, 0, 99}},
	}
	for _, c := range cases {
		got, ok := ParseIPv4(c.in)
		if !ok {
			t.Errorf("ParseIPv4(%q): unexpected failure", c.in)
			continue
		}
		if got != c.want {
			t.Errorf("ParseIPv4(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseIPv4_Invalid(t *testing.T) {
	cases := []string{
		"",
		"1",
		"1.2.3",
		"1.2.3.4.5",
		"256.0.0.1",
		"1.2.3.999",
		"1..2.3",
		".1.2.3",
		"1.2.3.",
		"a.b.c.d",
		"1.2.3.4 ",
		"1111.2.3.4",
		"255.255.255.2555", // 16 chars, over the cap
	}
	for _, c := range cases {
		if _, ok := ParseIPv4(c); ok {
			t.Errorf("ParseIPv4(%q): expected failure", c)
		}
	}
}

func TestAddrString_RoundTrip(t *testing.T) {
	for _, s := range []string{"0.0.0.0", "127.0.0.1", "10.20.30.40", "255.255.255.255"} {
		a, ok := ParseIPv4(s)
		if !ok {
			t.Fatalf("ParseIPv4(%q) failed", s)
		}
		if got := a.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

package defs

import "testing"

func TestErrString(t *testing.T) {
	cases := map[Err]string{
		OK:         "ok",
		ErrNoVMA:   "ENOVMA",
		ErrBadPerm: "EBADPERM",
		ErrNoMem:   "ENOMEM",
	}
	for err, want := range cases {
		if got := err.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", int(err), got, want)
		}
	}
}

func TestMkdevUnmkdev(t *testing.T) {
	d := Mkdev(3, 7)
	maj, min := Unmkdev(d)
	if maj != 3 || min != 7 {
		t.Fatalf("Unmkdev(Mkdev(3, 7)) = (%d, %d), want (3, 7)", maj, min)
	}
}

func TestDeviceIDString(t *testing.T) {
	if DevUART.String() != "uart0" {
		t.Fatalf("DevUART.String() = %q, want uart0", DevUART.String())
	}
}

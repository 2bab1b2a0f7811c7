package langtable

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		if got := Resolve("fr"); got != "French" {
			t.Fatalf("Resolve(fr) = %q, want French", got)
		}
	})

	t.Run("variant match", func(t *testing.T) {
		if got := Resolve("pt_br"); got != "Portuguese (Brazil)" {
			t.Fatalf("Resolve(pt_br) = %q, want Portuguese (Brazil)", got)
		}
	})

	t.Run("base fallback", func(t *testing.T) {
		if got := Resolve("fr-LU"); got != "French" {
			t.Fatalf("Resolve(fr-LU) = %q, want French", got)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		if got := Resolve("xx"); got != "xx" {
			t.Fatalf("Resolve(xx) = %q, want xx", got)
		}
	})
}

func TestCodesCoversRegistry(t *testing.T) {
	codes := Codes()
	if len(codes) != len(Registry) {
		t.Fatalf("Codes() returned %d entries, registry has %d", len(codes), len(Registry))
	}
	for _, code := range codes {
		if _, ok := Registry[code]; !ok {
			t.Fatalf("Codes() returned %q which is not in the registry", code)
		}
	}
}

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseLandID tests that parsing never panics on arbitrary input
// and always returns either a valid ID or an error.
func FuzzParseLandID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseLandID(input)
		if err == nil {
			roundTrip, err2 := ParseLandID(id.String())
			if err2 != nil {
				t.Errorf("valid ID failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed ID value")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

func FuzzParseNationalID(f *testing.F) {
	f.Add("111")
	f.Add("27-01-74-12345")
	f.Add("")
	f.Add("\x00")

	f.Fuzz(func(t *testing.T, input string) {
		nid, err := ParseNationalID(input)
		if err != nil {
			return
		}
		again, err := ParseNationalID(nid.String())
		if err != nil || again != nid {
			t.Errorf("national ID %q failed round-trip", nid)
		}
	})
}

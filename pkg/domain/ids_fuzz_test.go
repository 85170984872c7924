//go:build go1.18

package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseNationalID checks that parsing never panics and that accepted ids
// round-trip unchanged.
func FuzzParseNationalID(f *testing.F) {
	f.Add("")
	f.Add("123412341234")
	f.Add("'; DROP TABLE users;--")
	f.Add(string([]byte{0x00, 0x01, 0x02}))
	f.Add("1234\x00suffix")

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseNationalID(input)
		if err == nil {
			roundTrip, err2 := ParseNationalID(id.String())
			if err2 != nil {
				t.Errorf("valid id failed round-trip: %v", err2)
			}
			if roundTrip != id {
				t.Error("round-trip changed id value")
			}
		}
		if !utf8.ValidString(input) && err == nil {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

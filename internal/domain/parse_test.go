package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIcaoNotam = `A1234/24 NOTAMN
Q) CZYZ/QMRLC/IV/NBO/A/000/999/4340N07937W005
A) CYYZ B) 2401011200 C) 2402011200
D) MON-FRI 0800-1700
E) RWY 06L/24R CLSD
DUE TO MAINT
F) SFC
G) 500FT AGL`

func TestParseRawNotam(t *testing.T) {
	t.Run("full ICAO notice", func(t *testing.T) {
		got := ParseRawNotam(testIcaoNotam)
		require.NotNil(t, got)

		want := &ParsedNotamBody{
			NotamNumber:  "A1234/24",
			QLine:        "CZYZ/QMRLC/IV/NBO/A/000/999/4340N07937W005",
			Aerodrome:    "CYYZ",
			ValidFromRaw: "2401011200",
			ValidToRaw:   "2402011200",
			Schedule:     "MON-FRI 0800-1700",
			Body:         "RWY 06L/24R CLSD\nDUE TO MAINT\nF) SFC\nG) 500FT AGL",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("parsed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("blank input returns nil", func(t *testing.T) {
		assert.Nil(t, ParseRawNotam(""))
		assert.Nil(t, ParseRawNotam("  \r\n \n\t"))
	})

	t.Run("cancellation", func(t *testing.T) {
		got := ParseRawNotam("A1235/24 NOTAMC A1234/24\nA) CYYZ B) 2401051200\nE) RWY 06L/24R CLSD CANCELLED")
		require.NotNil(t, got)
		assert.True(t, got.IsCancellation)
		assert.Equal(t, "A1234/24", got.CancelsNotam)
		assert.Equal(t, "A1235/24", got.NotamNumber)
		assert.Equal(t, "RWY 06L/24R CLSD CANCELLED", got.Body)
	})

	t.Run("new notice is not a cancellation", func(t *testing.T) {
		got := ParseRawNotam(testIcaoNotam)
		require.NotNil(t, got)
		assert.False(t, got.IsCancellation)
		assert.Empty(t, got.CancelsNotam)
	})

	t.Run("escaped newlines and CRLF", func(t *testing.T) {
		got := ParseRawNotam(`A1234/24 NOTAMN\nA) KJFK` + "\r\n" + `E) TWY B CLSD\nBTN TWY A AND TWY C`)
		require.NotNil(t, got)
		assert.Equal(t, "KJFK", got.Aerodrome)
		assert.Equal(t, "TWY B CLSD\nBTN TWY A AND TWY C", got.Body)
	})

	t.Run("PERM end normalizes", func(t *testing.T) {
		for _, c := range []string{"C) PERM", "C) perm", "C) PERMANENT"} {
			got := ParseRawNotam("A1234/24 NOTAMN\nA) KJFK\n" + c + "\nE) OBST LIGHT U/S")
			require.NotNil(t, got)
			assert.Equal(t, "PERM", got.ValidToRaw, c)
		}
	})

	t.Run("estimated end kept verbatim", func(t *testing.T) {
		got := ParseRawNotam("A1234/24 NOTAMN\nA) KJFK B) 2401011200 C) 2412312359EST\nE) OBST CRANE")
		require.NotNil(t, got)
		assert.Equal(t, "2412312359EST", got.ValidToRaw)
	})

	t.Run("unmarked lines continue the open field", func(t *testing.T) {
		got := ParseRawNotam("Q) CZYZ/QMRLC\n/IV/NBO\nA) CYYZ\nE) RWY CLSD")
		require.NotNil(t, got)
		assert.Equal(t, "CZYZ/QMRLC\n/IV/NBO", got.QLine)
		assert.Empty(t, got.NotamNumber)
	})

	t.Run("body after C when E is missing", func(t *testing.T) {
		got := ParseRawNotam("A1234/24 NOTAMN\nA) KJFK\nB) 2401011200\nC) 2402011200\nRWY 04L CLSD\nFOR MAINT")
		require.NotNil(t, got)
		assert.Equal(t, "2402011200", got.ValidToRaw)
		assert.Equal(t, "RWY 04L CLSD\nFOR MAINT", got.Body)
	})

	t.Run("enumerations inside the body are not split", func(t *testing.T) {
		got := ParseRawNotam("A1234/24 NOTAMN\nA) KJFK\nE) WORK IN PROGRESS A) NORTH APRON B) SOUTH APRON")
		require.NotNil(t, got)
		assert.Equal(t, "KJFK", got.Aerodrome)
		assert.Equal(t, "WORK IN PROGRESS A) NORTH APRON B) SOUTH APRON", got.Body)
	})

	t.Run("inline E on header line opens body", func(t *testing.T) {
		got := ParseRawNotam("A1234/24 NOTAMN\nA) KJFK B) 2401011200 C) PERM E) ILS RWY 22L U/S\nEXPECT DELAYS")
		require.NotNil(t, got)
		assert.Equal(t, "2401011200", got.ValidFromRaw)
		assert.Equal(t, "PERM", got.ValidToRaw)
		assert.Equal(t, "ILS RWY 22L U/S\nEXPECT DELAYS", got.Body)
	})

	t.Run("text without markers becomes body", func(t *testing.T) {
		raw := "!JFK 01/001 JFK RWY 4L/22R CLSD 2401011200-2401021200"
		got := ParseRawNotam(raw)
		require.NotNil(t, got)
		assert.Empty(t, got.NotamNumber)
		assert.Equal(t, raw, got.Body)
	})
}

func TestNotamRecord_Enrich(t *testing.T) {
	rec := NotamRecord{Number: "A1235/24", Text: "A1235/24 NOTAMC A1234/24\nE) CNL"}.Enrich()
	require.NotNil(t, rec.Parsed)
	assert.True(t, rec.Cancellation)

	again := rec.Enrich()
	assert.Same(t, rec.Parsed, again.Parsed)
}

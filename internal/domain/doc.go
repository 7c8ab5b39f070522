// Package domain models NOTAMs (Notices to Air Missions) and the rules that
// turn raw provider data into an operational briefing input.
//
// # Data Sources
//
// The primary source is the FAA NOTAM API. Each item of its "items" array
// wraps a "properties" object carrying text, effectiveStart, effectiveEnd and
// notamNumber (or, in the full GeoJSON layout, a coreNOTAMData.notam object).
// The secondary source is the NAV CANADA alpha API, whose "data" records nest
// the NOTAM as a JSON document inside a string field:
//
//	{"notam_id":"A1234/24","text":"{\"raw\":\"A1234/24 NOTAMN\\nQ) ...\"}"}
//
// Both are normalized into [NotamRecord] by [NormalizePrimary] and
// [NormalizeSecondary].
//
// # ICAO NOTAM Format
//
//	A1234/24 NOTAMN
//	Q) CZYZ/QMRLC/IV/NBO/A/000/999/4340N07937W005
//	A) CYYZ B) 2401011200 C) 2402011200
//	D) MON-FRI 0800-1700
//	E) RWY 06L/24R CLSD
//
// Q is the qualifier line, A the aerodrome, B/C the validity window
// (YYMMDDhhmm, C may be "PERM" or carry an "EST" suffix), D the schedule and
// E the free-text body, optionally followed by F/G vertical limits.
// A NOTAMC header ("A1235/24 NOTAMC A1234/24") cancels an earlier notice.
// [ParseRawNotam] extracts these fields.
//
// # Validity
//
// An absent or permanent end means the notice has no defined expiry. A
// record overlaps a [TimeWindow] when it starts no later than the window end
// and, if it has a usable end, ends no earlier than the window start. See
// [IsActive].
//
// # Prioritization
//
// Records are ranked critical (runway closures, ILS outages), operational
// (taxiway closures, navaid outages, approach restrictions) or advisory by
// configurable [PriorityRules]; [Budgeter] trims the advisory tail first.
package domain

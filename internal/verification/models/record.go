// Package models holds the verification record, the persisted assertion that
// one person vouched for another. Internally these are stored in the
// "authentications" table; the name "verification" avoids overloading with
// user login.
package models

import (
	"fmt"
	"time"

	"vouch/internal/phonetic"
)

// Record represents a one-way verification between two users: the source
// vouches for the destination. A short human-manageable shared secret and a
// short lifetime (ideally around 5-15 minutes) bound each record.
//
// Display names are resolved from the directory once at creation and cached
// on the record; they are never re-resolved.
type Record struct {
	// ID is assigned sequentially by storage and never shown to end users.
	ID int64
	// SourceUID identifies the person who initiated the verification.
	SourceUID string
	// SourceName is the source's display name at creation time.
	SourceName string
	// DestUID identifies the person being vouched for.
	DestUID string
	// DestName is the destination's display name at creation time.
	DestName string
	// SharedSecret is the short string both parties exchange verbally.
	SharedSecret string
	// Expiry is the absolute UTC time the record stops being active.
	Expiry time.Time
	// Reciprocated is set when records exist in both directions at once.
	Reciprocated bool

	// ExpiresIn is a user friendly, timezone independent remaining-time
	// string ("4 minutes", "20 seconds"). Computed at read time, never
	// stored, so it always reflects the current moment.
	ExpiresIn string
	// Phonetic is the shared secret rendered in the spoken alphabet.
	// Computed at read time, never stored.
	Phonetic string
}

// Active reports whether the record has not yet expired at the given moment.
func (r *Record) Active(now time.Time) bool {
	return r.Expiry.After(now)
}

// Expand computes the derived display fields relative to now.
func (r *Record) Expand(now time.Time) *Record {
	r.ExpiresIn = ApproxDuration(r.Expiry.Sub(now))
	r.Phonetic = phonetic.Encode(r.SharedSecret)
	return r
}

// String returns a stable, complete textual representation suitable for
// inclusion in reports.
func (r *Record) String() string {
	return fmt.Sprintf("verification %d: %s (%s) -> %s (%s), expires %s UTC, reciprocated=%t",
		r.ID, r.SourceUID, r.SourceName, r.DestUID, r.DestName,
		r.Expiry.UTC().Format(time.DateTime), r.Reciprocated,
	)
}

// ApproxDuration renders a duration as an approximate count of seconds or
// minutes. Elapsed durations clamp to "0 seconds".
func ApproxDuration(d time.Duration) string {
	count := int(d.Seconds())
	if count < 0 {
		count = 0
	}
	unit := "second"
	if count > 60 {
		unit = "minute"
		count /= 60
	}
	plural := "s"
	if count == 1 {
		plural = ""
	}
	return fmt.Sprintf("%d %s%s", count, unit, plural)
}

package entity

import (
	"fmt"
	"strings"
	"time"
)

// Profile is the user as seen by the account holder.
type Profile struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	AccountCreated time.Time `json:"account_created"`
	AccountUpdated time.Time `json:"account_updated"`
}

// String renders the profile in the plain-text form served by GET /me, e.g.
//
//	id=1, email='a@b.com', first_name='A', last_name='B', account_created='2024-05-01 10:00:00', account_updated='2024-05-01 10:00:00'
func (p *Profile) String() string {
	return fmt.Sprintf("id=%d, email=%s, first_name=%s, last_name=%s, account_created=%s, account_updated=%s",
		p.ID,
		quote(p.Email),
		quote(p.FirstName),
		quote(p.LastName),
		quote(formatTimestamp(p.AccountCreated)),
		quote(formatTimestamp(p.AccountUpdated)),
	)
}

// ProfilePatch is a merge patch over the mutable profile fields.
// A nil field is absent; a non-nil field is present, even when it points at "".
type ProfilePatch struct {
	Password  *string
	FirstName *string
	LastName  *string
}

// IsEmpty reports whether no field is present.
func (p ProfilePatch) IsEmpty() bool {
	return p.Password == nil && p.FirstName == nil && p.LastName == nil
}

func formatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		return t.Format("2006-01-02 15:04:05.000000")
	}

	return t.Format("2006-01-02 15:04:05")
}

// quote wraps s the way a repr of a string does: single quotes by default,
// double quotes when s holds a single quote but no double quote.
func quote(s string) string {
	delim := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		delim = `"`
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteString(delim)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case string(r) == delim:
			b.WriteString(`\` + delim)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(delim)

	return b.String()
}

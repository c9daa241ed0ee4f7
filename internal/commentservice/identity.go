package commentservice

import (
	"encoding/base32"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

const (
	dailyIDLen  = 8
	tripcodeLen = 10
)

var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// dailyID derives the per-day marker for an anonymous commenter. The same
// address gets the same id within one UTC day and a fresh one the next.
func dailyID(remoteAddr string, day time.Time, secret string) string {
	sum := blake2b.Sum256([]byte(remoteAddr + "|" + day.UTC().Format(time.DateOnly) + "|" + secret))
	return strings.ToLower(idEncoding.EncodeToString(sum[:]))[:dailyIDLen]
}

// splitTripcode handles the "name#password" author form. The password never
// leaves this function; only the derived tripcode is stored, displayed
// truncated.
func splitTripcode(author, secret string) (name, tripcode string) {
	name, password, found := strings.Cut(author, "#")
	name = strings.TrimSpace(name)
	if !found || password == "" {
		return name, ""
	}

	sum := blake2b.Sum256([]byte(password + "|" + secret))
	return name, idEncoding.EncodeToString(sum[:])[:tripcodeLen]
}

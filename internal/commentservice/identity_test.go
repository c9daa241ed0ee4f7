package commentservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDailyIDStableWithinDay(t *testing.T) {
	morning := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC)

	a := dailyID("203.0.113.7", morning, "secret")
	b := dailyID("203.0.113.7", evening, "secret")

	assert.Equal(t, a, b)
	assert.Len(t, a, dailyIDLen)
}

func TestDailyIDChangesAcrossDays(t *testing.T) {
	today := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	assert.NotEqual(t,
		dailyID("203.0.113.7", today, "secret"),
		dailyID("203.0.113.7", tomorrow, "secret"),
	)
}

func TestDailyIDDistinctAddresses(t *testing.T) {
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.NotEqual(t,
		dailyID("203.0.113.7", day, "secret"),
		dailyID("203.0.113.8", day, "secret"),
	)
}

func TestSplitTripcode(t *testing.T) {
	name, trip := splitTripcode("alice#hunter2", "secret")

	assert.Equal(t, "alice", name)
	assert.Len(t, trip, tripcodeLen)

	// same password, same tripcode regardless of name
	_, trip2 := splitTripcode("bob#hunter2", "secret")
	assert.Equal(t, trip, trip2)

	// different password, different tripcode
	_, trip3 := splitTripcode("alice#other", "secret")
	assert.NotEqual(t, trip, trip3)
}

func TestSplitTripcodeWithoutPassword(t *testing.T) {
	name, trip := splitTripcode("alice", "secret")
	assert.Equal(t, "alice", name)
	assert.Empty(t, trip)

	name, trip = splitTripcode("alice#", "secret")
	assert.Equal(t, "alice", name)
	assert.Empty(t, trip)
}

package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var streakNow = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return streakNow.AddDate(0, 0, -n)
}

func TestCurrentStreakEmpty(t *testing.T) {
	assert.Equal(t, 0, CurrentStreak(nil, streakNow))
}

func TestCurrentStreakConsecutiveDays(t *testing.T) {
	activity := []time.Time{daysAgo(0), daysAgo(1), daysAgo(2)}
	assert.Equal(t, 3, CurrentStreak(activity, streakNow))
}

func TestCurrentStreakGapBreaksChain(t *testing.T) {
	activity := []time.Time{daysAgo(0), daysAgo(2)}
	assert.Equal(t, 1, CurrentStreak(activity, streakNow))
}

func TestCurrentStreakAnchorsAtYesterday(t *testing.T) {
	activity := []time.Time{daysAgo(1)}
	assert.Equal(t, 1, CurrentStreak(activity, streakNow))

	activity = []time.Time{daysAgo(1), daysAgo(2), daysAgo(3)}
	assert.Equal(t, 3, CurrentStreak(activity, streakNow))
}

func TestCurrentStreakBrokenWhenLastActivityTwoDaysAgo(t *testing.T) {
	activity := []time.Time{daysAgo(2), daysAgo(3)}
	assert.Equal(t, 0, CurrentStreak(activity, streakNow))
}

func TestCurrentStreakSameDayCountsOnce(t *testing.T) {
	activity := []time.Time{
		streakNow,
		streakNow.Add(-2 * time.Hour),
		streakNow.Add(-6 * time.Hour),
		daysAgo(1),
	}
	assert.Equal(t, 2, CurrentStreak(activity, streakNow))
}

func TestCurrentStreakUsesUTCDays(t *testing.T) {
	// 23:30 UTC today and 00:30 UTC today are the same day; the streak
	// must not depend on wall-clock proximity.
	late := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)
	early := time.Date(2025, 6, 15, 0, 30, 0, 0, time.UTC)
	yesterday := time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 2, CurrentStreak([]time.Time{late, early, yesterday}, streakNow))
}

func TestLongestStreak(t *testing.T) {
	assert.Equal(t, 0, LongestStreak(nil))

	// run of 3 in the past beats the current run of 1
	activity := []time.Time{daysAgo(0), daysAgo(5), daysAgo(6), daysAgo(7)}
	assert.Equal(t, 3, LongestStreak(activity))

	activity = []time.Time{daysAgo(0), daysAgo(1), daysAgo(1)}
	assert.Equal(t, 2, LongestStreak(activity))
}

func TestLongestStreakNeverBelowCurrent(t *testing.T) {
	activity := []time.Time{daysAgo(0), daysAgo(1), daysAgo(2), daysAgo(4)}
	assert.GreaterOrEqual(t, LongestStreak(activity), CurrentStreak(activity, streakNow))
}

func TestActivityDays(t *testing.T) {
	activity := []time.Time{daysAgo(3), daysAgo(0), daysAgo(1), daysAgo(0)}
	days := ActivityDays(activity, 7)
	assert.Len(t, days, 3)
	assert.Equal(t, dayOf(daysAgo(0)), days[0])
	assert.Equal(t, dayOf(daysAgo(1)), days[1])
	assert.Equal(t, dayOf(daysAgo(3)), days[2])
}

func TestActivityDaysLimit(t *testing.T) {
	var activity []time.Time
	for i := 0; i < 20; i++ {
		activity = append(activity, daysAgo(i))
	}
	days := ActivityDays(activity, 7)
	assert.Len(t, days, 7)
	assert.Equal(t, dayOf(streakNow), days[0])
}

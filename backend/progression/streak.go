package progression

import (
	"sort"
	"time"
)

// StreakLookbackDays bounds how far back activity is fetched when
// recomputing a streak.
const StreakLookbackDays = 30

// dayOf buckets a timestamp into its UTC calendar day. All streak math is
// done in UTC so the result does not depend on server locale.
func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// CurrentStreak computes the consecutive-day activity streak ending at now.
// Multiple activities on one day count once. The streak anchors at today if
// there was activity today, otherwise at yesterday; no activity on either
// day means the streak is broken.
func CurrentStreak(activity []time.Time, now time.Time) int {
	if len(activity) == 0 {
		return 0
	}

	days := make(map[time.Time]bool, len(activity))
	for _, t := range activity {
		days[dayOf(t)] = true
	}

	today := dayOf(now)
	anchor := today
	if !days[today] {
		yesterday := today.AddDate(0, 0, -1)
		if !days[yesterday] {
			return 0
		}
		anchor = yesterday
	}

	streak := 0
	for d := anchor; days[d]; d = d.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// LongestStreak finds the longest run of consecutive activity days
// anywhere in the set, not just the run ending now.
func LongestStreak(activity []time.Time) int {
	days := make(map[time.Time]bool, len(activity))
	for _, t := range activity {
		days[dayOf(t)] = true
	}

	longest := 0
	for d := range days {
		// only count runs from their first day
		if days[d.AddDate(0, 0, -1)] {
			continue
		}
		run := 0
		for cur := d; days[cur]; cur = cur.AddDate(0, 0, 1) {
			run++
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// ActivityDays returns the distinct UTC activity days, newest first, capped
// at limit. Used for the streak endpoint's recent-activity display.
func ActivityDays(activity []time.Time, limit int) []time.Time {
	seen := make(map[time.Time]bool, len(activity))
	var days []time.Time
	for _, t := range activity {
		d := dayOf(t)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })
	if limit > 0 && len(days) > limit {
		days = days[:limit]
	}
	return days
}

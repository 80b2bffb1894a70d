package services

import "time"

// MaxCommentsPerPostPerDay is the number of comments a user may leave on one post per calendar day.
const MaxCommentsPerPostPerDay = 4

// DayWindow returns the calendar day containing now, [00:00:00.000, 23:59:59.999],
// in now's location.
func DayWindow(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// CheckCommentQuota fails with a rate-limit error once count reaches the daily limit.
func CheckCommentQuota(count int64) error {
	if count >= MaxCommentsPerPostPerDay {
		return RateLimitError("You can only comment %d times per post per 24 hours", MaxCommentsPerPostPerDay)
	}
	return nil
}

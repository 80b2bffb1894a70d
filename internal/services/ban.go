package services

import "time"

const day = 24 * time.Hour

const DefaultBanReason = "Violation of terms of service"

// PermanentBanExpiry is the sentinel expiry stored for permanent bans.
var PermanentBanExpiry = time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)

// BanExpiry maps a duration token to an absolute expiry measured from now.
// Day and week tokens are exact multiples of 24 hours regardless of DST.
func BanExpiry(token string, now time.Time) (time.Time, error) {
	switch token {
	case "30m":
		return now.Add(30 * time.Minute), nil
	case "1h":
		return now.Add(time.Hour), nil
	case "12h":
		return now.Add(12 * time.Hour), nil
	case "1d":
		return now.Add(day), nil
	case "3d":
		return now.Add(3 * day), nil
	case "1w":
		return now.Add(7 * day), nil
	case "2w":
		return now.Add(14 * day), nil
	case "1m":
		return now.AddDate(0, 1, 0), nil
	case "3m":
		return now.AddDate(0, 3, 0), nil
	case "6m":
		return now.AddDate(0, 6, 0), nil
	case "1y":
		return now.AddDate(1, 0, 0), nil
	case "2y":
		return now.AddDate(2, 0, 0), nil
	case "permanent":
		return PermanentBanExpiry, nil
	}
	return time.Time{}, ValidationError("Invalid ban duration")
}

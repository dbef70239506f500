package redis

import "fmt"

const ns = "bookgo:v1"

func KeyActivitySummary(activityID int64) string {
	return fmt.Sprintf("%s:activity:%d:summary", ns, activityID)
}

func KeyActivityAvailability(activityID int64) string {
	return fmt.Sprintf("%s:activity:%d:availability", ns, activityID)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelBookingsChanged() string {
	return ns + ":bookings:changed"
}

func ChannelCommissionsChanged() string {
	return ns + ":commissions:changed"
}

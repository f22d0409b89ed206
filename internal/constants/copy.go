package constants

// Fallback messages returned by the generator instead of an error.
const (
	FallbackEmpty = "The day is just one part of your life. Take it as it comes."
	FallbackError = "Focus on the next small thing. You don't have to carry the whole day at once."
)

// NotificationCopy is the static title and body shown for an alarm.
type NotificationCopy struct {
	Title   string
	Message string
}

// NotificationContent maps alarm names to their notification copy.
var NotificationContent = map[string]NotificationCopy{
	AlarmMorning: {
		Title:   "Good Morning, SoftWorkday.",
		Message: "Start your day with a grounding perspective.",
	},
	AlarmMidday: {
		Title:   "SoftWorkday Pause.",
		Message: "A moment to re-center before the afternoon.",
	},
	AlarmEvening: {
		Title:   "End of Day, SoftWorkday.",
		Message: "Leave the desk behind. Transition home.",
	},
}

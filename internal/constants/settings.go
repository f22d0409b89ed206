package constants

const (
	// Schedule fields
	SettingMorning = "morning"
	SettingMidday  = "midday"
	SettingEvening = "evening"

	// Default Schedule Values
	DefaultMorning = "09:10"
	DefaultMidday  = "11:50"
	DefaultEvening = "17:50"

	// Alarm names, one per slot
	AlarmMorning = "morning_steady"
	AlarmMidday  = "midday_steady"
	AlarmEvening = "evening_steady"
)

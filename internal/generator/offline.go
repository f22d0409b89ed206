package generator

import (
	"context"
	"hash/fnv"

	"github.com/julianstephens/softworkday/internal/models"
)

var offlineMessages = map[models.TimeOfDay][]string{
	models.TimeMorning: {
		"Set a pace you could keep all week, not just this morning.",
		"Pick the one thing that matters most before the inbox picks for you.",
		"You don't need to be fully ready. Starting slowly still counts as starting.",
	},
	models.TimeMidday: {
		"Step away from the screen for two minutes. The work will still be there.",
		"Half the day is done. Notice what actually needed you, and let the noise go.",
		"Eat something real and let your shoulders drop before the afternoon starts.",
	},
	models.TimeEndOfDay: {
		"Whatever is unfinished can wait at the desk. You are allowed to leave it there.",
		"Write down tomorrow's first step, then close the laptop.",
		"The day is over on your side. Let the evening be yours.",
	},
}

// Offline picks a canned message without any network access. The choice is
// stable for the same inputs.
type Offline struct{}

func (Offline) Generate(_ context.Context, mood models.Mood, tod models.TimeOfDay, userContext string) string {
	options, ok := offlineMessages[tod]
	if !ok {
		options = offlineMessages[models.TimeMorning]
	}
	h := fnv.New32a()
	h.Write([]byte(string(mood) + "|" + userContext))
	return options[int(h.Sum32()%uint32(len(options)))]
}

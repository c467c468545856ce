package realtime

import (
	"fmt"
	"strings"
)

// CalendarTopic is where calendar change notices for a group are published.
func CalendarTopic(familyID int64) string {
	return fmt.Sprintf("/topic/family/%d/calendar-updates", familyID)
}

// HabitTopic is where habit-log change notices for a group are published.
func HabitTopic(familyID int64) string {
	return fmt.Sprintf("/topic/family/%d/habit-updates", familyID)
}

// Endpoint converts the broker base URL (e.g. ws://host/ws) into the raw
// WebSocket endpoint of its SockJS handler.
func Endpoint(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	}
	if strings.HasSuffix(base, "/websocket") {
		return base
	}
	return base + "/websocket"
}

func topicKind(topic string) string {
	switch {
	case strings.HasSuffix(topic, "/calendar-updates"):
		return "calendar"
	case strings.HasSuffix(topic, "/habit-updates"):
		return "habit"
	default:
		return "other"
	}
}

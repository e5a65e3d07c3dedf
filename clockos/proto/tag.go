package proto

import (
	"fmt"
	"strconv"

	"dotclock/clockos/calendar"
)

// Tag identifies a pending scroll: a calendar event index or a special.
type Tag uint8

const (
	TagDate   Tag = 0xf0
	TagDebug  Tag = 0xf1
	TagAlarms Tag = 0xf2
	TagDST    Tag = 0xf3
	TagQueue  Tag = 0xf4
	TagTemp   Tag = 0xf5

	// TagVacant marks a free scroll queue slot.
	TagVacant Tag = 0xaa
)

// ScrollQueueSize is the scroll queue capacity; one slot is never used.
const ScrollQueueSize = 75

var specialNames = map[Tag]string{
	TagDate:   "date",
	TagDebug:  "debug",
	TagAlarms: "alarms",
	TagDST:    "dst",
	TagQueue:  "queue",
	TagTemp:   "temp",
}

// IsEvent reports whether t indexes the calendar event table.
func (t Tag) IsEvent() bool { return int(t) < calendar.MaxEvents }

func (t Tag) String() string {
	if name, ok := specialNames[t]; ok {
		return name
	}
	if t.IsEvent() {
		return "event-" + strconv.Itoa(int(t))
	}
	if t == TagVacant {
		return "vacant"
	}
	return fmt.Sprintf("tag(%#x)", uint8(t))
}

// ParseTag accepts a special's name or an event index.
func ParseTag(s string) (Tag, error) {
	for t, name := range specialNames {
		if name == s {
			return t, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= calendar.MaxEvents {
		return TagVacant, fmt.Errorf("proto: invalid scroll tag %q", s)
	}
	return Tag(n), nil
}

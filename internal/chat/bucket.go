package chat

import "time"

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"
	LabelPrevWeek  = "Previous 7 Days"
)

// Group is one recency bucket of the conversation list.
type Group struct {
	Label         string
	Conversations []Conversation
}

type day struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{y, m, d}
}

// Bucket partitions folderless conversations into Today, Yesterday and
// Previous 7 Days. A conversation lands in a bucket only when its calendar
// day equals the anchor day exactly, so anything 2-6 or 8+ days old is
// dropped. Within a bucket the input order is reversed. Empty buckets are
// omitted. Dates are compared in now's location.
func Bucket(conversations []Conversation, now time.Time) []Group {
	anchors := []struct {
		label string
		at    day
	}{
		{LabelToday, dayOf(now)},
		{LabelYesterday, dayOf(now.AddDate(0, 0, -1))},
		{LabelPrevWeek, dayOf(now.AddDate(0, 0, -7))},
	}
	var groups []Group
	for _, a := range anchors {
		var in []Conversation
		for i := len(conversations) - 1; i >= 0; i-- {
			c := conversations[i]
			if c.FolderID != "" {
				continue
			}
			if dayOf(c.LastUsedDate.In(now.Location())) == a.at {
				in = append(in, c)
			}
		}
		if len(in) > 0 {
			groups = append(groups, Group{Label: a.label, Conversations: in})
		}
	}
	return groups
}

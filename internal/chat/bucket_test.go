package chat

import (
	"testing"
	"time"
)

func conv(id string, at time.Time) Conversation {
	return Conversation{ID: id, Name: id, LastUsedDate: at}
}

func ids(cs []Conversation) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func labels(gs []Group) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.Label)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var now = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func TestBucketTodayReversesListOrder(t *testing.T) {
	list := []Conversation{
		conv("a", now.Add(-2*time.Hour)),
		conv("b", now.Add(-8*time.Hour)),
	}
	groups := Bucket(list, now)
	if len(groups) != 1 || groups[0].Label != LabelToday {
		t.Fatalf("expected only Today, got %v", labels(groups))
	}
	// b is older but later in the list, so it renders first
	if got := ids(groups[0].Conversations); !equal(got, []string{"b", "a"}) {
		t.Fatalf("expected [b a], got %v", got)
	}
}

func TestBucketExactDayMatchOnly(t *testing.T) {
	list := []Conversation{
		conv("today", now),
		conv("yesterday", now.AddDate(0, 0, -1)),
		conv("three", now.AddDate(0, 0, -3)),
		conv("six", now.AddDate(0, 0, -6)),
		conv("week", now.AddDate(0, 0, -7)),
		conv("eight", now.AddDate(0, 0, -8)),
		conv("future", now.AddDate(0, 0, 1)),
	}
	groups := Bucket(list, now)
	if got := labels(groups); !equal(got, []string{LabelToday, LabelYesterday, LabelPrevWeek}) {
		t.Fatalf("unexpected headers %v", got)
	}
	seen := map[string]int{}
	for _, g := range groups {
		for _, c := range g.Conversations {
			seen[c.ID]++
		}
	}
	for _, id := range []string{"today", "yesterday", "week"} {
		if seen[id] != 1 {
			t.Fatalf("%s should appear exactly once, got %d", id, seen[id])
		}
	}
	for _, id := range []string{"three", "six", "eight", "future"} {
		if seen[id] != 0 {
			t.Fatalf("%s should not be bucketed", id)
		}
	}
}

func TestBucketSkipsFolderConversations(t *testing.T) {
	inFolder := conv("f", now)
	inFolder.FolderID = "folder-1"
	groups := Bucket([]Conversation{inFolder}, now)
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %v", labels(groups))
	}
}

func TestBucketHeaderOnlyWhenNonEmpty(t *testing.T) {
	groups := Bucket([]Conversation{conv("y", now.AddDate(0, 0, -1))}, now)
	if got := labels(groups); !equal(got, []string{LabelYesterday}) {
		t.Fatalf("expected only Yesterday, got %v", got)
	}
	if got := Bucket(nil, now); len(got) != 0 {
		t.Fatalf("expected no groups for empty list, got %v", labels(got))
	}
}

func TestBucketComparesCalendarDaysAcrossMonths(t *testing.T) {
	march1 := time.Date(2024, time.March, 1, 0, 5, 0, 0, time.UTC)
	list := []Conversation{
		conv("leap", time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC)),
		conv("week", time.Date(2024, time.February, 23, 1, 0, 0, 0, time.UTC)),
		conv("lastyear", time.Date(2023, time.March, 1, 0, 5, 0, 0, time.UTC)),
	}
	groups := Bucket(list, march1)
	if got := labels(groups); !equal(got, []string{LabelYesterday, LabelPrevWeek}) {
		t.Fatalf("unexpected headers %v", got)
	}
}

func TestBucketUsesNowLocation(t *testing.T) {
	tz := time.FixedZone("UTC+9", 9*3600)
	local := time.Date(2024, time.March, 15, 8, 0, 0, 0, tz)
	// 2024-03-14 23:30 UTC is already the 15th in UTC+9
	c := conv("late", time.Date(2024, time.March, 14, 23, 30, 0, 0, time.UTC))
	groups := Bucket([]Conversation{c}, local)
	if got := labels(groups); !equal(got, []string{LabelToday}) {
		t.Fatalf("expected Today in now's zone, got %v", got)
	}
}

func TestBucketIsRestartable(t *testing.T) {
	list := []Conversation{conv("a", now)}
	first := Bucket(list, now)
	second := Bucket(list, now.AddDate(0, 0, 1))
	if got := labels(first); !equal(got, []string{LabelToday}) {
		t.Fatalf("first pass: %v", got)
	}
	if got := labels(second); !equal(got, []string{LabelYesterday}) {
		t.Fatalf("second pass: %v", got)
	}
}

package version

import "testing"

func TestString(t *testing.T) {
	defer func(v, c, d string) { Version, Commit, Date = v, c, d }(Version, Commit, Date)

	Version, Commit, Date = "dev", "", ""
	if got := String(); got != "dev" {
		t.Fatalf("got %q", got)
	}
	if got := Template("chatbar"); got != "chatbar dev\n" {
		t.Fatalf("template %q", got)
	}

	Version, Commit, Date = "v0.2.0", "abc123", "2024-05-01T10:00:00Z"
	if got := String(); got != "v0.2.0+abc123 (2024-05-01T10:00:00Z)" {
		t.Fatalf("got %q", got)
	}
	want := "chatbar v0.2.0\n  commit: abc123\n  built:  2024-05-01T10:00:00Z\n"
	if got := Template("chatbar"); got != want {
		t.Fatalf("template %q", got)
	}
}

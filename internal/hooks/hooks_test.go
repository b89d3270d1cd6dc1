package hooks

import (
	"os"
	"path/filepath"
	"testing"

	"chatbar/internal/chat"
)

func writeHook(t *testing.T, dir, name, code string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDirMissingIsEmpty(t *testing.T) {
	env, err := LoadDir(filepath.Join(t.TempDir(), "none"))
	if err != nil {
		t.Fatal(err)
	}
	if env.Has(FnDecorateRow) {
		t.Fatal("no hooks expected")
	}
	if _, ok := env.RowTitle(chat.Conversation{ID: "c"}); ok {
		t.Fatal("no override expected")
	}
}

func TestRowTitleAndDetail(t *testing.T) {
	dir := t.TempDir()
	writeHook(t, dir, "a.js", `
export function decorateConversationRow(c) {
  return (c.favorite ? "* " : "") + c.name.toUpperCase() + " [" + c.messages.length + "]";
}
`)
	writeHook(t, dir, "b.js", `
function renderConversationDetail(c) {
  return { title: "Extra", sections: [{ heading: "Words", body: String(c.messages[0].content.split(" ").length) }, {}] };
}
`)
	writeHook(t, dir, "broken.js", `function (`)
	writeHook(t, dir, "notes.txt", `ignored`)

	env, err := LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := env.Loaded(); len(got) != 2 {
		t.Fatalf("expected 2 loaded scripts, got %v", got)
	}

	c := chat.Conversation{ID: "c1", Name: "trip", Favorite: true, Messages: []chat.Message{{Role: chat.RoleUser, Content: "one two three"}}}
	title, ok := env.RowTitle(c)
	if !ok || title != "* TRIP [1]" {
		t.Fatalf("row title %q %v", title, ok)
	}

	head, secs := env.DetailSections(c)
	if head != "Extra" || len(secs) != 1 || secs[0].Heading != "Words" || secs[0].Body != "3" {
		t.Fatalf("detail %q %+v", head, secs)
	}
}

func TestThrowingHookIsIgnored(t *testing.T) {
	env, _ := LoadDir("")
	if err := env.Eval("t.js", `function decorateConversationRow(c) { throw new Error("boom"); }`); err != nil {
		t.Fatal(err)
	}
	if _, ok := env.RowTitle(chat.Conversation{ID: "c"}); ok {
		t.Fatal("throwing hook must not override")
	}
}

func TestNilEnv(t *testing.T) {
	var env *Env
	if env.Has(FnDecorateRow) {
		t.Fatal("nil env has no hooks")
	}
	if head, secs := env.DetailSections(chat.Conversation{}); head != "" || secs != nil {
		t.Fatal("nil env returns nothing")
	}
}

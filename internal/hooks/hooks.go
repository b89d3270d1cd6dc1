// Package hooks runs user JavaScript that can decorate sidebar rows and add
// sections to the conversation detail pane.
//
// Every *.js file in the hooks directory is evaluated into one runtime.
// Recognized functions:
//
//	decorateConversationRow(conv) -> string          replaces the row title
//	renderConversationDetail(conv) -> {title, sections: [{heading, body}]}
//
// conv is a plain object with id, name, folderId, favorite, lastUsedDate
// (RFC 3339) and messages [{role, content}].
package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dop251/goja"

	"chatbar/internal/chat"
	"chatbar/internal/logger"
)

const (
	FnDecorateRow  = "decorateConversationRow"
	FnRenderDetail = "renderConversationDetail"
)

type Env struct {
	rt     *goja.Runtime
	loaded []string
}

// LoadDir evaluates every .js file in dir. A missing dir yields an empty Env;
// a script that fails to evaluate is logged and skipped.
func LoadDir(dir string) (*Env, error) {
	env := &Env{rt: goja.New()}
	env.rt.Set("readText", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		b, err := os.ReadFile(call.Arguments[0].String())
		if err != nil {
			return goja.Null()
		}
		return env.rt.ToValue(string(b))
	})
	if dir == "" {
		return env, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return env, nil
	}
	if err != nil {
		return env, fmt.Errorf("read hooks dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".js" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if err := env.Eval(name, string(b)); err != nil {
			logger.Warn("hook failed to load", "component", "hooks", "file", name, "err", err)
			continue
		}
		logger.Info("hook loaded", "component", "hooks", "file", name)
	}
	return env, nil
}

// Eval runs one script in the hook runtime. Simple ESM export keywords are
// stripped so hooks can be shared with browser code.
func (e *Env) Eval(name, code string) error {
	code = strings.ReplaceAll(code, "export function ", "function ")
	code = strings.ReplaceAll(code, "export const ", "const ")
	code = strings.ReplaceAll(code, "export let ", "let ")
	code = strings.ReplaceAll(code, "export var ", "var ")
	if _, err := e.rt.RunScript(name, code); err != nil {
		return err
	}
	e.loaded = append(e.loaded, name)
	return nil
}

// Loaded lists the scripts evaluated successfully.
func (e *Env) Loaded() []string {
	if e == nil {
		return nil
	}
	return e.loaded
}

// Has reports whether fn is defined as a function.
func (e *Env) Has(fn string) bool {
	if e == nil || e.rt == nil {
		return false
	}
	_, ok := goja.AssertFunction(e.rt.Get(fn))
	return ok
}

// Call invokes fn with arg. ok is false when fn is missing or throws.
func (e *Env) Call(fn string, arg any) (goja.Value, bool) {
	if e == nil || e.rt == nil {
		return goja.Undefined(), false
	}
	f, ok := goja.AssertFunction(e.rt.Get(fn))
	if !ok {
		return goja.Undefined(), false
	}
	rv, err := f(goja.Undefined(), e.rt.ToValue(arg))
	if err != nil {
		logger.Warn("hook call failed", "component", "hooks", "fn", fn, "err", err)
		return goja.Undefined(), false
	}
	return rv, true
}

func (e *Env) CallString(fn string, arg any) (string, bool) {
	rv, ok := e.Call(fn, arg)
	if !ok || goja.IsUndefined(rv) || goja.IsNull(rv) {
		return "", false
	}
	return rv.String(), true
}

func (e *Env) CallExported(fn string, arg any) (any, bool) {
	rv, ok := e.Call(fn, arg)
	if !ok {
		return nil, false
	}
	return rv.Export(), true
}

// ConversationMap is the object handed to hook functions.
func ConversationMap(c chat.Conversation) map[string]any {
	msgs := make([]any, 0, len(c.Messages))
	for _, m := range c.Messages {
		msgs = append(msgs, map[string]any{"role": string(m.Role), "content": m.Content})
	}
	return map[string]any{
		"id":           c.ID,
		"name":         c.Name,
		"folderId":     c.FolderID,
		"favorite":     c.Favorite,
		"lastUsedDate": c.LastUsedDate.Format(time.RFC3339),
		"messages":     msgs,
	}
}

// RowTitle returns the hook override for a row title, if any.
func (e *Env) RowTitle(c chat.Conversation) (string, bool) {
	if !e.Has(FnDecorateRow) {
		return "", false
	}
	s, ok := e.CallString(FnDecorateRow, ConversationMap(c))
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Section is one heading/body pair contributed by renderConversationDetail.
type Section struct {
	Heading string
	Body    string
}

// DetailSections returns the optional title and sections for c.
func (e *Env) DetailSections(c chat.Conversation) (string, []Section) {
	if !e.Has(FnRenderDetail) {
		return "", nil
	}
	out, ok := e.CallExported(FnRenderDetail, ConversationMap(c))
	if !ok {
		return "", nil
	}
	m, ok := out.(map[string]any)
	if !ok {
		return "", nil
	}
	title, _ := m["title"].(string)
	var secs []Section
	if arr, ok := m["sections"].([]any); ok {
		for _, it := range arr {
			mm, ok := it.(map[string]any)
			if !ok {
				continue
			}
			head, _ := mm["heading"].(string)
			body, _ := mm["body"].(string)
			if head == "" && body == "" {
				continue
			}
			secs = append(secs, Section{Heading: head, Body: body})
		}
	}
	return title, secs
}

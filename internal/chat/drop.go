package chat

import (
	"fmt"
	"unicode/utf8"
)

// dropNameKeep is how many characters of the previous name survive a
// second or later drop.
const dropNameKeep = 13

// DropName is the folder display name after its n-th drop. The first drop
// appends " (1 chats)"; later drops keep the first 13 characters of name and
// append "(<n> chats)". name is whatever the folder is called right now, so
// repeated drops truncate the already rewritten name again.
func DropName(name string, n int) string {
	if n == 1 {
		return fmt.Sprintf("%s (%d chats)", name, n)
	}
	return fmt.Sprintf("%s(%d chats)", runePrefix(name, dropNameKeep), n)
}

// runePrefix cuts s after its first n runes. Invalid bytes count as one rune
// each and are kept as they are.
func runePrefix(s string, n int) string {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

// ApplyDrop bumps the folder's chat counter and rewrites its name. There is
// no inverse: moving a conversation out again leaves the name as is.
func ApplyDrop(f Folder) Folder {
	if f.ChatsNumber > 0 {
		f.ChatsNumber++
	} else {
		f.ChatsNumber = 1
	}
	f.Name = DropName(f.Name, f.ChatsNumber)
	return f
}

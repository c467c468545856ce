// Package comments implements the per-log comment thread: @mention
// autocompletion, mention rendering and post/delete with a refresh hook.
package comments

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/julianstephens/famtrack/internal/models"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Mention is an in-progress @mention. Start is the rune index of the '@'
// and Filter the text typed after it so far.
type Mention struct {
	Start  int
	Filter string
}

// DetectMention scans back from cursor (a rune index into text) to the
// nearest '@'. If no whitespace separates them, that span is an
// in-progress mention.
func DetectMention(text string, cursor int) (Mention, bool) {
	runes := []rune(text)
	if cursor < 0 || cursor > len(runes) {
		cursor = len(runes)
	}
	for i := cursor - 1; i >= 0; i-- {
		r := runes[i]
		if r == '@' {
			return Mention{Start: i, Filter: string(runes[i+1 : cursor])}, true
		}
		if unicode.IsSpace(r) {
			return Mention{}, false
		}
	}
	return Mention{}, false
}

// FilterMembers returns the members other than selfID whose username or
// display name contains filter, ignoring case.
func FilterMembers(members []models.Member, filter string, selfID int64) []models.Member {
	f := strings.ToLower(filter)
	var out []models.Member
	for _, m := range members {
		if m.ID == selfID {
			continue
		}
		if strings.Contains(strings.ToLower(m.Username), f) || strings.Contains(strings.ToLower(m.DisplayName), f) {
			out = append(out, m)
		}
	}
	return out
}

// ApplyMention replaces the mention span with "@username " and returns the
// new text and the rune index just after the inserted space.
func ApplyMention(text string, m Mention, username string) (string, int) {
	runes := []rune(text)
	end := m.Start + 1 + len([]rune(m.Filter))
	if m.Start < 0 || end > len(runes) {
		return text, len(runes)
	}
	insert := []rune("@" + username + " ")
	out := make([]rune, 0, len(runes)+len(insert))
	out = append(out, runes[:m.Start]...)
	out = append(out, insert...)
	out = append(out, runes[end:]...)
	return string(out), m.Start + len(insert)
}

// Render substitutes the display name of each mentioned member, leaving
// unknown @tokens as typed.
func Render(content string, members []models.Member) string {
	return RenderWith(content, members, func(s string) string { return s })
}

// RenderWith is Render with each mention passed through highlight.
func RenderWith(content string, members []models.Member, highlight func(string) string) string {
	fam := &models.Family{Members: members}
	return mentionPattern.ReplaceAllStringFunc(content, func(tok string) string {
		name := tok[1:]
		if m, ok := fam.MemberByUsername(name); ok && m.DisplayName != "" {
			name = m.DisplayName
		}
		return highlight("@" + name)
	})
}

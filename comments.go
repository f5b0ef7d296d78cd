package objcgen

import (
	"strings"

	"github.com/rivo/uniseg"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Column budget for a single-line HeaderDoc comment, measured in display
// width rather than bytes so wide glyphs count properly.
const singleLineCommentWidth = 100

// BuildCommentsString renders the comments attached to a source location
// as a HeaderDoc/appledoc comment block. Leading comments win over
// trailing ones. When preferSingleLine is set and the comment is one
// short line, the compact `/** ... */` form is used.
func BuildCommentsString(loc protoreflect.SourceLocation, preferSingleLine bool) string {
	comments := loc.LeadingComments
	if comments == "" {
		comments = loc.TrailingComments
	}
	rawLines := strings.Split(comments, "\n")
	for len(rawLines) > 0 && rawLines[len(rawLines)-1] == "" {
		rawLines = rawLines[:len(rawLines)-1]
	}
	if len(rawLines) == 0 {
		return ""
	}

	lines := make([]string, len(rawLines))
	for i, line := range rawLines {
		cleaned := strings.TrimPrefix(line, " ")
		// HeaderDoc and appledoc use '\' and '@' as markers; escape them.
		cleaned = strings.ReplaceAll(cleaned, `\`, `\\`)
		cleaned = strings.ReplaceAll(cleaned, "@", `\@`)
		// Decouple / from * so the comment cannot terminate itself.
		cleaned = strings.ReplaceAll(cleaned, "/*", `/\*`)
		cleaned = strings.ReplaceAll(cleaned, "*/", `*\/`)
		lines[i] = cleaned
	}

	if preferSingleLine && len(lines) == 1 &&
		uniseg.StringWidth(lines[0]) <= singleLineCommentWidth {
		return "/** " + lines[0] + " */\n"
	}

	var b strings.Builder
	b.WriteString("/**\n")
	for _, line := range lines {
		b.WriteString(" *")
		if line != "" {
			b.WriteString(" ")
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString(" **/\n")
	return b.String()
}

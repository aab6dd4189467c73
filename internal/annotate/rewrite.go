package annotate

import (
	"fmt"
	"regexp"
	"strings"

	"codeberg.org/snonux/vocabaudio/internal/document"
	"codeberg.org/snonux/vocabaudio/internal/matcher"
)

// rewritePattern builds the combined expression used by RewriteContent:
// the word line (group 1, the word itself is group 2), then any blank
// lines and an optional answer divider (group 3).
func rewritePattern(m *matcher.Matcher) (*regexp.Regexp, error) {
	expr := `(?m)((?:` + m.Expr() + `)[^\n]*)(\n(?:[ \t]*\n)*(?:\?[ \t]*(?:\n|$))?|$)`
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("annotate: combined pattern: %w", err)
	}
	return re, nil
}

// RewriteContent annotates a whole note held as an immutable string. Every
// first occurrence of a word lacking a block has the blank lines and answer
// divider below it collapsed into: word line, answer divider, block, answer
// divider. The original content is returned untouched when nothing was
// rewritten, so callers should only write the result back when the count is
// positive.
func RewriteContent(content string, m *matcher.Matcher) (string, int, error) {
	if m == nil {
		return content, 0, fmt.Errorf("annotate: matcher is nil")
	}
	re, err := rewritePattern(m)
	if err != nil {
		return content, 0, err
	}

	doc := document.NewBuffer(content)
	processed := make(map[string]bool)

	var b strings.Builder
	last := 0
	count := 0

	for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
		if loc[4] < 0 {
			continue
		}
		word := strings.TrimSpace(content[loc[4]:loc[5]])
		if word == "" || processed[word] {
			continue
		}
		processed[word] = true

		line := strings.Count(content[:loc[0]], "\n")
		if Detect(doc, line, word, m).Present {
			continue
		}

		tail := content[loc[6]:loc[7]]

		b.WriteString(content[last:loc[0]])
		b.WriteString(content[loc[2]:loc[3]])
		b.WriteString("\n" + AnswerDivider + "\n")
		b.WriteString(BlockText(word))
		b.WriteString("\n" + AnswerDivider)
		if strings.HasSuffix(tail, "\n") {
			b.WriteString("\n")
		}

		last = loc[1]
		count++
	}

	if count == 0 {
		return content, 0, nil
	}

	b.WriteString(content[last:])
	return b.String(), count, nil
}

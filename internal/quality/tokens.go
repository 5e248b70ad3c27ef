package quality

import (
	"regexp"
	"strings"
)

var (
	// Named declarations: function foo(, async function* foo(.
	jsFunctionDecl = regexp.MustCompile(`\bfunction\b\s*\*?\s*([A-Za-z_$][\w$]*)?`)
	// Arrow functions, optionally bound to a name: const foo = (a) =>.
	jsArrow     = regexp.MustCompile(`(?:([A-Za-z_$][\w$]*)\s*[:=]\s*(?:async\s+)?)?(?:\([^()]*\)|[A-Za-z_$][\w$]*)\s*(?::\s*[^=]+)?=>`)
	jsArrowTail = regexp.MustCompile(`=>\s*\{`)
	// Methods and shorthand members: foo(a, b) {, async get bar() {.
	jsMethod = regexp.MustCompile(`^(?:(?:public|private|protected|static|async|get|set|override|readonly|abstract)\s+)*\*?\s*([A-Za-z_$][\w$]*)\s*(?:<[^>]*>)?\s*\(.*\)\s*(?::\s*[^{]+)?\{`)
	jsClass  = regexp.MustCompile(`\bclass\s+([A-Za-z_$][\w$]*)`)

	jsDecisions = []*regexp.Regexp{
		regexp.MustCompile(`\bif\s*\(`),
		regexp.MustCompile(`\bfor\s*\(`),
		regexp.MustCompile(`\bwhile\s*\(`),
		regexp.MustCompile(`\btry\s*\{`),
		regexp.MustCompile(`\bcatch\s*\(`),
		regexp.MustCompile(`&&|\|\|`),
	}
)

// controlKeywords look like method heads to jsMethod but are statements.
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"with": true, "return": true, "function": true, "else": true, "do": true,
	"typeof": true, "new": true, "await": true,
}

// analyzeTokens is the token-pattern strategy for JavaScript and TypeScript.
func analyzeTokens(rec *Record, lines []string) {
	t := newFrameTracker(rec)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		var fn *frame
		arrowOnly := false
		if m := jsClass.FindStringSubmatch(line); m != nil {
			t.open(classFrame, m[1], lineNo)
		} else if name, arrow, ok := jsFunctionStart(line); ok {
			fn = t.open(functionFrame, name, lineNo)
			arrowOnly = arrow && !jsArrowTail.MatchString(line)
		}

		n := 0
		for _, re := range jsDecisions {
			n += len(re.FindAllStringIndex(line, -1))
		}
		t.decisions(n)
		t.braces(line, lineNo)

		// A brace-less arrow body ends with its line.
		if fn != nil && arrowOnly {
			t.closeIfPending(fn, lineNo)
		}
	}

	t.finish(len(lines))
}

// jsFunctionStart reports whether line starts a function and returns its
// best-effort name. arrow is true for arrow functions.
func jsFunctionStart(line string) (name string, arrow bool, ok bool) {
	if m := jsFunctionDecl.FindStringSubmatch(line); m != nil {
		name = m[1]
		if name == "" {
			name = "anonymous"
		}
		return name, false, true
	}
	if m := jsArrow.FindStringSubmatch(line); m != nil {
		name = m[1]
		if name == "" {
			name = "anonymous"
		}
		return name, true, true
	}
	if m := jsMethod.FindStringSubmatch(line); m != nil && !controlKeywords[m[1]] {
		return m[1], false, true
	}
	return "", false, false
}

package quality

import (
	"strings"
	"unicode"
)

var (
	genericDecisionWords = map[string]bool{
		"if": true, "else": true, "for": true, "while": true,
		"switch": true, "case": true, "try": true, "catch": true,
	}
	// genericMethodWords start a method on their own line; modifiers only do
	// when the line also carries a parameter list.
	genericMethodWords = map[string]bool{
		"function": true, "func": true, "def": true, "fn": true,
	}
	genericModifierWords = map[string]bool{
		"public": true, "private": true, "protected": true,
	}
	genericClassWords = map[string]bool{
		"class": true, "struct": true,
	}
)

// analyzeGeneric is the keyword-frequency strategy used for every language
// without a dedicated analyzer.
func analyzeGeneric(rec *Record, lines []string) {
	t := newFrameTracker(rec)

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		words := tokenize(line)

		decisions := 0
		declared, modifier, class := false, false, false
		className, declName := "", ""
		for j, w := range words {
			lw := strings.ToLower(w)
			switch {
			case genericDecisionWords[lw]:
				decisions++
			case genericMethodWords[lw]:
				declared = true
				if declName == "" && j+1 < len(words) {
					declName = words[j+1]
				}
			case genericModifierWords[lw]:
				modifier = true
			case genericClassWords[lw]:
				class = true
				if className == "" && j+1 < len(words) {
					className = words[j+1]
				}
			}
		}

		switch {
		case declared || (modifier && strings.Contains(line, "(")):
			name := methodName(line)
			if name == "anonymous" && declName != "" {
				name = declName
			}
			t.open(functionFrame, name, lineNo)
		case class:
			if className == "" {
				className = "anonymous"
			}
			t.open(classFrame, className, lineNo)
		}

		t.decisions(decisions)
		t.braces(line, lineNo)
	}

	t.finish(len(lines))
}

// tokenize splits s into identifier-like words.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// methodName returns the first identifier directly followed by "(" that is
// not a keyword, which skips Go receivers.
func methodName(line string) string {
	for i, r := range line {
		if r != '(' {
			continue
		}
		head := []rune(strings.TrimRight(line[:i], " \t"))
		start := len(head)
		for start > 0 && isWordRune(head[start-1]) {
			start--
		}
		word := string(head[start:])
		lw := strings.ToLower(word)
		if word != "" && !genericMethodWords[lw] && !genericModifierWords[lw] && !genericDecisionWords[lw] {
			return word
		}
	}
	return "anonymous"
}

package quality

import "fmt"

type frameKind int

const (
	functionFrame frameKind = iota
	classFrame
)

// frame is an open function or class whose extent is still being measured.
type frame struct {
	kind  frameKind
	name  string
	start int // 1-based line
	base  int // brace depth when the frame started

	// opened is set once the frame's own opening brace was seen. Frames that
	// never open one end at the next start of the same kind or at EOF.
	opened     bool
	complexity int
}

// frameTracker approximates function and class extents from brace depth for
// the line-based strategies.
type frameTracker struct {
	rec      *Record
	frames   []*frame
	depth    int
	maxDepth int
	outside  int // decision points not inside any function
}

func newFrameTracker(rec *Record) *frameTracker {
	return &frameTracker{rec: rec}
}

// open starts a frame on line. Pending brace-less frames of the same kind on
// top of the stack end on the previous line.
func (t *frameTracker) open(kind frameKind, name string, line int) *frame {
	for len(t.frames) > 0 {
		top := t.frames[len(t.frames)-1]
		if top.opened || (kind == functionFrame && top.kind != functionFrame) {
			break
		}
		t.pop(line - 1)
	}

	f := &frame{kind: kind, name: name, start: line, base: t.depth}
	t.frames = append(t.frames, f)
	if kind == functionFrame {
		t.rec.MethodsCount++
	}
	return f
}

// decisions attributes n decision points to every open function, or to the
// file itself when no function is open.
func (t *frameTracker) decisions(n int) {
	if n == 0 {
		return
	}
	inFunction := false
	for _, f := range t.frames {
		if f.kind == functionFrame {
			f.complexity += n
			inFunction = true
		}
	}
	if !inFunction {
		t.outside += n
	}
}

// braces feeds the brace characters of one line.
func (t *frameTracker) braces(text string, line int) {
	for _, r := range text {
		switch r {
		case '{':
			t.depth++
			t.maxDepth = max(t.maxDepth, t.depth)
			if n := len(t.frames); n > 0 {
				top := t.frames[n-1]
				// Same line or the next one, to allow braces on their own line.
				if !top.opened && t.depth == top.base+1 && line-top.start <= 1 {
					top.opened = true
				}
			}
		case '}':
			if t.depth > 0 {
				t.depth--
			}
			for len(t.frames) > 0 {
				top := t.frames[len(t.frames)-1]
				if (top.opened && t.depth <= top.base) || (!top.opened && t.depth < top.base) {
					t.pop(line)
					continue
				}
				break
			}
		}
	}
}

// closeIfPending ends f on line if it never opened a brace.
func (t *frameTracker) closeIfPending(f *frame, line int) {
	if n := len(t.frames); n > 0 && t.frames[n-1] == f && !f.opened {
		t.pop(line)
	}
}

func (t *frameTracker) pop(end int) {
	n := len(t.frames)
	f := t.frames[n-1]
	t.frames = t.frames[:n-1]
	t.finalize(f, max(end, f.start))
}

// finalize applies the shared thresholds to a closed frame.
func (t *frameTracker) finalize(f *frame, end int) {
	length := end - f.start
	switch f.kind {
	case functionFrame:
		complexity := 1 + f.complexity
		t.rec.Complexity += complexity
		if length > LongMethodLines {
			t.rec.LongMethods++
			t.rec.CodeSmells = append(t.rec.CodeSmells, smellAt(LongMethod, t.rec.Path, f.start,
				fmt.Sprintf("Method '%s' is %d lines long", f.name, length)))
		}
		if complexity > HighComplexityLimit {
			t.rec.CodeSmells = append(t.rec.CodeSmells, smellAt(HighComplexity, t.rec.Path, f.start,
				fmt.Sprintf("Method '%s' has complexity %d", f.name, complexity)))
		}
	case classFrame:
		if length > LargeClassLines {
			t.rec.LargeClasses++
			t.rec.CodeSmells = append(t.rec.CodeSmells, smellAt(LargeClass, t.rec.Path, f.start,
				fmt.Sprintf("Class '%s' is %d lines long", f.name, length)))
		}
	}
}

// finish closes every open frame at lastLine and records nesting.
func (t *frameTracker) finish(lastLine int) {
	for len(t.frames) > 0 {
		t.pop(lastLine)
	}
	t.rec.Complexity += t.outside
	recordNesting(t.rec, t.maxDepth)
}

func smellAt(kind SmellKind, file string, line int, description string) Smell {
	return Smell{
		Kind:        kind,
		File:        file,
		Line:        line,
		Location:    fmt.Sprintf("Line %d", line),
		Description: description,
	}
}

// recordNesting adds the single per-file Deep Nesting smell when warranted.
func recordNesting(rec *Record, maxDepth int) {
	rec.MaxNesting = maxDepth
	if maxDepth > DeepNestingThreshold {
		rec.DeepNesting = 1
		rec.CodeSmells = append(rec.CodeSmells, Smell{
			Kind:        DeepNesting,
			File:        rec.Path,
			Location:    "Multiple locations",
			Description: fmt.Sprintf("Maximum nesting depth: %d", maxDepth),
		})
	}
}

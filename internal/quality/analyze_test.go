package quality

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/repolens/internal/metrics"
	"github.com/blackwell-systems/repolens/internal/scanner"
)

func analyzeSource(t *testing.T, name, language, src string) Record {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	desc := scanner.FileDescriptor{Path: path, RelPath: name, Name: name, Ext: filepath.Ext(name), Size: int64(len(src))}
	return Analyze(context.Background(), desc, language)
}

func smellsOf(rec Record, kind SmellKind) []Smell {
	var out []Smell
	for _, s := range rec.CodeSmells {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

func TestStrategyFor(t *testing.T) {
	assert.Equal(t, StructuredParse, StrategyFor(metrics.Python))
	assert.Equal(t, TokenPattern, StrategyFor(metrics.JavaScript))
	assert.Equal(t, TokenPattern, StrategyFor(metrics.TypeScript))
	assert.Equal(t, GenericHeuristic, StrategyFor(metrics.Go))
	assert.Equal(t, GenericHeuristic, StrategyFor(metrics.Ruby))
	assert.Equal(t, "token-pattern", TokenPattern.String())
}

func TestEligible(t *testing.T) {
	for _, lang := range []string{metrics.Python, metrics.Go, metrics.Shell, metrics.SQL, metrics.Rust} {
		assert.True(t, Eligible(lang), lang)
	}
	for _, lang := range []string{metrics.Markdown, metrics.JSON, metrics.HTML, metrics.CSS, metrics.SCSS, ""} {
		assert.False(t, Eligible(lang), lang)
	}
}

func TestSmellKind_DisplayNames(t *testing.T) {
	b, err := HighComplexity.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "High Complexity", string(b))
	assert.Equal(t, "Deep Nesting", DeepNesting.String())
}

// ---------------------------------------------------------------------------
// Structured parse (Python)
// ---------------------------------------------------------------------------

func TestAnalyze_PythonElevenBranches(t *testing.T) {
	var b strings.Builder
	b.WriteString("def classify(x):\n")
	for i := range 11 {
		b.WriteString("    if x == " + string(rune('a'+i)) + ":\n")
		b.WriteString("        return 1\n")
	}
	b.WriteString("    return 0\n")

	rec := analyzeSource(t, "classify.py", metrics.Python, b.String())

	assert.False(t, rec.ParseFailed)
	assert.Equal(t, StructuredParse, rec.Strategy)
	assert.Equal(t, 1, rec.MethodsCount)
	assert.GreaterOrEqual(t, rec.Complexity, 12)

	high := smellsOf(rec, HighComplexity)
	require.Len(t, high, 1)
	assert.Equal(t, "Line 1", high[0].Location)
	assert.Contains(t, high[0].Description, "classify")
	assert.Equal(t, "classify.py", high[0].File)
}

func TestAnalyze_PythonBooleanOperators(t *testing.T) {
	rec := analyzeSource(t, "b.py", metrics.Python, "def f(a, b, c):\n    return a and b or c\n")
	assert.Equal(t, 3, rec.Complexity, "base 1 plus one per joined operand pair")
}

func TestAnalyze_PythonAsyncAndNested(t *testing.T) {
	src := `import asyncio


async def fetch(url):
    try:
        return await get(url)
    except ValueError:
        return None


class Client:
    def close(self):
        pass
`
	rec := analyzeSource(t, "client.py", metrics.Python, src)
	assert.Equal(t, 2, rec.MethodsCount)
	assert.Equal(t, 3, rec.Complexity, "fetch is 1+1 for the except clause, close is 1")
	assert.Empty(t, rec.CodeSmells)
}

func TestAnalyze_PythonModuleLevelDecisions(t *testing.T) {
	rec := analyzeSource(t, "script.py", metrics.Python, "import sys\nif len(sys.argv) > 1:\n    print(sys.argv[1])\n")
	assert.Zero(t, rec.MethodsCount)
	assert.Equal(t, 1, rec.Complexity)
}

func TestAnalyze_PythonDeepNesting(t *testing.T) {
	src := `def deep(a):
    if a:
        for x in a:
            while x:
                if x > 1:
                    if x > 2:
                        x -= 1
    for y in a:
        if y:
            pass
`
	rec := analyzeSource(t, "deep.py", metrics.Python, src)
	assert.Equal(t, 5, rec.MaxNesting)
	assert.Equal(t, 1, rec.DeepNesting)
	assert.Len(t, smellsOf(rec, DeepNesting), 1, "one smell per file, not per occurrence")
}

func TestAnalyze_PythonLongMethodAndLargeClass(t *testing.T) {
	var b strings.Builder
	b.WriteString("class Big:\n")
	b.WriteString("    def long(self):\n")
	for range 60 {
		b.WriteString("        x = 1\n")
	}
	for range 450 {
		b.WriteString("    y = 2\n")
	}

	rec := analyzeSource(t, "big.py", metrics.Python, b.String())
	assert.Equal(t, 1, rec.LongMethods)
	assert.Equal(t, 1, rec.LargeClasses)
	require.Len(t, smellsOf(rec, LongMethod), 1)
	assert.Equal(t, "Line 2", smellsOf(rec, LongMethod)[0].Location)
	assert.Len(t, smellsOf(rec, LargeClass), 1)
}

func TestAnalyze_PythonParseFailure(t *testing.T) {
	rec := analyzeSource(t, "broken.py", metrics.Python, "def broken(:\n    return\n")
	assert.True(t, rec.ParseFailed)
	assert.Zero(t, rec.Complexity)
	assert.Zero(t, rec.MethodsCount)
	assert.Zero(t, rec.LinesOfCode)
	assert.Empty(t, rec.CodeSmells)
}

func TestAnalyze_ReadFailure(t *testing.T) {
	desc := scanner.FileDescriptor{Path: filepath.Join(t.TempDir(), "missing.go"), RelPath: "missing.go", Ext: ".go"}
	rec := Analyze(context.Background(), desc, metrics.Go)
	assert.True(t, rec.ReadFailed)
	assert.Zero(t, rec.LinesOfCode)
}

func TestAnalyze_LineCounts(t *testing.T) {
	src := "# header\n\nx = 1\n\n# note\ny = 2\n"
	rec := analyzeSource(t, "lines.py", metrics.Python, src)
	assert.Equal(t, 4, rec.LinesOfCode)
	assert.Equal(t, 2, rec.CommentLines)
}

// ---------------------------------------------------------------------------
// Token pattern (JavaScript / TypeScript)
// ---------------------------------------------------------------------------

func TestAnalyze_JavaScriptFunction(t *testing.T) {
	src := `function add(a, b) {
  if (a && b) {
    return a;
  }
  return b;
}
`
	rec := analyzeSource(t, "add.js", metrics.JavaScript, src)
	assert.Equal(t, TokenPattern, rec.Strategy)
	assert.Equal(t, 1, rec.MethodsCount)
	assert.Equal(t, 3, rec.Complexity)
	assert.Equal(t, 6, rec.LinesOfCode)
	assert.Equal(t, 2, rec.MaxNesting)
}

func TestAnalyze_JavaScriptArrowFunctions(t *testing.T) {
	src := `const double = (x) => x * 2;
const inc = x => x + 1;
items.forEach((item) => {
  if (item) {
    console.log(item);
  }
});
`
	rec := analyzeSource(t, "arrows.js", metrics.JavaScript, src)
	assert.Equal(t, 3, rec.MethodsCount)
	assert.Equal(t, 4, rec.Complexity, "three bases plus one if")
}

func TestAnalyze_JavaScriptControlFlowIsNotAFunction(t *testing.T) {
	src := `for (let i = 0; i < n; i++) {
  while (busy) {
    wait();
  }
}
switch (x) {
}
`
	rec := analyzeSource(t, "loops.js", metrics.JavaScript, src)
	assert.Zero(t, rec.MethodsCount)
	assert.Equal(t, 2, rec.Complexity, "decisions outside functions still count")
}

func TestAnalyze_TypeScriptClassMethods(t *testing.T) {
	src := `export class Counter {
  private n = 0;

  increment(): void {
    this.n++;
  }

  async reset(value: number): Promise<void> {
    this.n = value;
  }
}
`
	rec := analyzeSource(t, "counter.ts", metrics.TypeScript, src)
	assert.Equal(t, 2, rec.MethodsCount)
	assert.Empty(t, rec.CodeSmells)
}

func TestAnalyze_JavaScriptLongFunctionAndNesting(t *testing.T) {
	var b strings.Builder
	b.WriteString("function long() {\n")
	for range 55 {
		b.WriteString("  step();\n")
	}
	b.WriteString("}\n")
	b.WriteString("function nested() {\n  {\n    {\n      {\n        {\n        }\n      }\n    }\n  }\n}\n")

	rec := analyzeSource(t, "long.js", metrics.JavaScript, b.String())
	assert.Equal(t, 2, rec.MethodsCount)
	assert.Equal(t, 1, rec.LongMethods)
	assert.Len(t, smellsOf(rec, LongMethod), 1)
	assert.Equal(t, 5, rec.MaxNesting)
	assert.Equal(t, 1, rec.DeepNesting)
}

// ---------------------------------------------------------------------------
// Generic heuristic
// ---------------------------------------------------------------------------

func TestAnalyze_GenericGo(t *testing.T) {
	src := `package main

func main() {
	if ready {
		for {
		}
	}
}
`
	rec := analyzeSource(t, "main.go", metrics.Go, src)
	assert.Equal(t, GenericHeuristic, rec.Strategy)
	assert.Equal(t, 1, rec.MethodsCount)
	assert.Equal(t, 3, rec.Complexity)
	assert.Equal(t, 3, rec.MaxNesting)
}

func TestAnalyze_GenericJavaClass(t *testing.T) {
	src := `public class Box {
    private int size;

    public int size() {
        return size;
    }
}
`
	rec := analyzeSource(t, "Box.java", metrics.Java, src)
	assert.Equal(t, 1, rec.MethodsCount)
	assert.Equal(t, 1, rec.Complexity)
	assert.Empty(t, rec.CodeSmells)
}

func TestAnalyze_GenericBracelessMethods(t *testing.T) {
	src := `def a(x)
  if x
    puts x
  end
end

def b(y)
end
`
	rec := analyzeSource(t, "a.rb", metrics.Ruby, src)
	assert.Equal(t, 2, rec.MethodsCount)
	assert.Equal(t, 3, rec.Complexity)
}

func TestAnalyze_RubyMethodsWithoutParentheses(t *testing.T) {
	src := `class Foo
  def bar
    if x
      1
    end
  end

  private

  def baz
    2
  end
end
`
	rec := analyzeSource(t, "foo.rb", metrics.Ruby, src)
	assert.Equal(t, 2, rec.MethodsCount, "private alone does not start a method")
	assert.Equal(t, 3, rec.Complexity)
}

func TestAnalyze_GenericHighComplexity(t *testing.T) {
	var b strings.Builder
	b.WriteString("fn route(x: u8) {\n")
	for range 6 {
		b.WriteString("    if x > 1 { } else { }\n")
	}
	b.WriteString("}\n")

	rec := analyzeSource(t, "route.rs", metrics.Rust, b.String())
	assert.Equal(t, 13, rec.Complexity)
	high := smellsOf(rec, HighComplexity)
	require.Len(t, high, 1)
	assert.Contains(t, high[0].Description, "route")
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "Run", methodName("func (s *Server) Run(ctx context.Context) error {"))
	assert.Equal(t, "main", methodName("public static void main(String[] args) {"))
	assert.Equal(t, "anonymous", methodName("function ("))
}

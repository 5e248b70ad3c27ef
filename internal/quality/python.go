package quality

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Python node types that add a decision point.
var pythonDecisionNodes = map[string]bool{
	"if_statement":     true,
	"elif_clause":      true,
	"for_statement":    true,
	"while_statement":  true,
	"except_clause":    true,
	"boolean_operator": true,
}

// Python node types that increase nesting depth.
var pythonNestingNodes = map[string]bool{
	"if_statement":    true,
	"for_statement":   true,
	"while_statement": true,
}

// analyzePython parses src with the tree-sitter Python grammar. It returns
// false when the source does not parse cleanly.
func analyzePython(ctx context.Context, rec *Record, src []byte) bool {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil || tree == nil {
		return false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return false
	}

	v := &pythonVisitor{rec: rec, src: src}
	v.visit(root, false)
	rec.Complexity += v.outside
	recordNesting(rec, v.maxNesting)
	return true
}

type pythonVisitor struct {
	rec        *Record
	src        []byte
	nesting    int
	maxNesting int
	outside    int // decision points not inside any function
}

func (v *pythonVisitor) visit(n *sitter.Node, inFunction bool) {
	typ := n.Type()

	switch typ {
	case "function_definition":
		v.function(n)
		inFunction = true
	case "class_definition":
		v.class(n)
	}

	if pythonDecisionNodes[typ] && !inFunction {
		v.outside++
	}

	nests := pythonNestingNodes[typ]
	if nests {
		v.nesting++
		v.maxNesting = max(v.maxNesting, v.nesting)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		v.visit(n.NamedChild(i), inFunction)
	}

	if nests {
		v.nesting--
	}
}

func (v *pythonVisitor) function(n *sitter.Node) {
	v.rec.MethodsCount++

	name := v.nameOf(n)
	line := int(n.StartPoint().Row) + 1
	length := int(n.EndPoint().Row - n.StartPoint().Row)
	complexity := 1 + countDecisions(n)
	v.rec.Complexity += complexity

	if length > LongMethodLines {
		v.rec.LongMethods++
		v.rec.CodeSmells = append(v.rec.CodeSmells, smellAt(LongMethod, v.rec.Path, line,
			fmt.Sprintf("Method '%s' is %d lines long", name, length)))
	}
	if complexity > HighComplexityLimit {
		v.rec.CodeSmells = append(v.rec.CodeSmells, smellAt(HighComplexity, v.rec.Path, line,
			fmt.Sprintf("Method '%s' has complexity %d", name, complexity)))
	}
}

func (v *pythonVisitor) class(n *sitter.Node) {
	length := int(n.EndPoint().Row - n.StartPoint().Row)
	if length > LargeClassLines {
		line := int(n.StartPoint().Row) + 1
		v.rec.LargeClasses++
		v.rec.CodeSmells = append(v.rec.CodeSmells, smellAt(LargeClass, v.rec.Path, line,
			fmt.Sprintf("Class '%s' is %d lines long", v.nameOf(n), length)))
	}
}

func (v *pythonVisitor) nameOf(n *sitter.Node) string {
	if id := n.ChildByFieldName("name"); id != nil {
		return id.Content(v.src)
	}
	return "anonymous"
}

// countDecisions counts decision nodes anywhere below n. Each binary
// boolean_operator node joins two operands and so adds exactly one.
func countDecisions(n *sitter.Node) int {
	count := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if pythonDecisionNodes[child.Type()] {
			count++
		}
		count += countDecisions(child)
	}
	return count
}

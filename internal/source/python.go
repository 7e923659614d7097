package source

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonExtractor extracts source units from Python files using a
// Tree-sitter AST.
type PythonExtractor struct {
	parser *sitter.Parser
}

// NewPythonExtractor creates a new Python extractor.
func NewPythonExtractor() *PythonExtractor {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &PythonExtractor{parser: parser}
}

// Language returns "python".
func (p *PythonExtractor) Language() string {
	return "python"
}

// Extensions returns [".py", ".pyw"].
func (p *PythonExtractor) Extensions() []string {
	return []string{".py", ".pyw"}
}

// Extract parses Python source and returns its units: function and method
// definitions with their docstrings, and module-level assignments.
func (p *PythonExtractor) Extract(path string, content []byte) ([]Unit, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("syntax error in %s", path)
	}

	var units []Unit
	p.walkNode(root, path, content, true, &units)
	return units, nil
}

// walkNode walks the AST collecting units. Assignments count only at module
// level; function definitions are collected at any nesting depth so methods
// inside classes are audited too.
func (p *PythonExtractor) walkNode(node *sitter.Node, path string, content []byte, moduleLevel bool, units *[]Unit) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)

		switch child.Type() {
		case "function_definition":
			if unit := p.functionUnit(child, child, path, content); unit != nil {
				*units = append(*units, *unit)
			}

		case "decorated_definition":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				inner := child.NamedChild(j)
				switch inner.Type() {
				case "function_definition":
					// Extend to the decorator so line numbers point at the
					// start of the whole definition.
					if unit := p.functionUnit(inner, child, path, content); unit != nil {
						*units = append(*units, *unit)
					}
				case "class_definition":
					if body := inner.ChildByFieldName("body"); body != nil {
						p.walkNode(body, path, content, false, units)
					}
				}
			}

		case "class_definition":
			if body := child.ChildByFieldName("body"); body != nil {
				p.walkNode(body, path, content, false, units)
			}

		case "expression_statement":
			if !moduleLevel {
				continue
			}
			if unit := p.assignmentUnit(child, path, content); unit != nil {
				*units = append(*units, *unit)
			}
		}
	}
}

// functionUnit builds a Unit for a function definition. outer is the node
// spanning the full definition (the decorated_definition when decorators are
// present), def the function_definition itself.
func (p *PythonExtractor) functionUnit(def, outer *sitter.Node, path string, content []byte) *Unit {
	nameNode := def.ChildByFieldName("name")
	body := def.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return nil
	}

	unit := &Unit{
		File:       path,
		Symbol:     nodeText(nameNode, content),
		Kind:       UnitFunction,
		Line:       int(outer.StartPoint().Row) + 1,
		EndLine:    int(outer.EndPoint().Row) + 1,
		Docstring:  extractDocstring(body, content),
		Body:       nodeText(outer, content),
		Arithmetic: countArithmetic(body),
	}
	return unit
}

// assignmentUnit builds a Unit for a module-level assignment statement, or
// nil when the statement is not an assignment to a plain identifier.
func (p *PythonExtractor) assignmentUnit(stmt *sitter.Node, path string, content []byte) *Unit {
	if stmt.NamedChildCount() == 0 {
		return nil
	}
	assign := stmt.NamedChild(0)
	if assign.Type() != "assignment" {
		return nil
	}

	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" {
		return nil
	}

	return &Unit{
		File:           path,
		Symbol:         nodeText(left, content),
		Kind:           UnitAssignment,
		Line:           int(stmt.StartPoint().Row) + 1,
		EndLine:        int(stmt.EndPoint().Row) + 1,
		Body:           nodeText(stmt, content),
		NumericLiteral: isNumericLiteral(right),
		HasCall:        containsNodeType(right, "call"),
	}
}

func nodeText(n *sitter.Node, content []byte) string {
	return string(content[n.StartByte():n.EndByte()])
}

// extractDocstring returns the docstring of a function body: the string
// expression that appears as the first statement, with quotes stripped.
func extractDocstring(body *sitter.Node, content []byte) string {
	if body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return stripQuotes(nodeText(str, content))
}

func stripQuotes(s string) string {
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}

// countArithmetic counts binary arithmetic and augmented assignment
// operations beneath node.
func countArithmetic(node *sitter.Node) int {
	count := 0
	switch node.Type() {
	case "binary_operator", "augmented_assignment":
		count++
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		count += countArithmetic(node.NamedChild(i))
	}
	return count
}

// isNumericLiteral reports whether node is a bare numeric literal, possibly
// behind a unary sign.
func isNumericLiteral(node *sitter.Node) bool {
	switch node.Type() {
	case "integer", "float":
		return true
	case "unary_operator":
		if arg := node.ChildByFieldName("argument"); arg != nil {
			return isNumericLiteral(arg)
		}
	}
	return false
}

func containsNodeType(node *sitter.Node, nodeType string) bool {
	if node.Type() == nodeType {
		return true
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if containsNodeType(node.NamedChild(i), nodeType) {
			return true
		}
	}
	return false
}

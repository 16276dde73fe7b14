package service

import (
	"fmt"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"whiteboard/internal/domain"
	"whiteboard/internal/scene"
)

// Query filters registered elements with boolean expr-lang predicates
// such as `type == "rect" && width > 100`. Compiled programs are reused.
type Query struct {
	programs map[string]*exprvm.Program
}

func NewQuery() *Query {
	return &Query{programs: make(map[string]*exprvm.Program)}
}

func (q *Query) compile(expression string) (*exprvm.Program, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("query: expression must not be empty")
	}
	if p, ok := q.programs[expression]; ok {
		return p, nil
	}
	p, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", expression, err)
	}
	q.programs[expression] = p
	return p, nil
}

// Match evaluates expression against one element.
func (q *Query) Match(expression string, info domain.ObjectInfo, n *scene.Node) (bool, error) {
	p, err := q.compile(expression)
	if err != nil {
		return false, err
	}
	out, err := exprlang.Run(p, queryEnv(info, n))
	if err != nil {
		return false, fmt.Errorf("query %q on %s: %w", expression, info.ID, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

func queryEnv(info domain.ObjectInfo, n *scene.Node) map[string]any {
	return map[string]any{
		"id":          info.ID,
		"type":        string(info.Type),
		"boardId":     info.BoardID,
		"x":           info.X,
		"y":           info.Y,
		"width":       info.Width,
		"height":      info.Height,
		"index":       info.Index,
		"locked":      info.Locked,
		"visible":     info.Visible,
		"children":    info.Children,
		"rotation":    n.Rotation,
		"fill":        n.Fill,
		"stroke":      n.Stroke,
		"strokeWidth": n.StrokeWidth,
		"text":        n.Text,
		"fontSize":    n.FontSize,
		"url":         n.URL,
		"depth":       GroupDepth(n),
	}
}

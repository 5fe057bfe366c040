package script

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
)

type exprKind int

const (
	exprNone  exprKind = iota // declarations or a statement
	exprValue                 // an expression other than a call
	exprCall                  // a call, which may have no results
)

// lastExpr classifies the final top-level statement of source. For a call
// through a plain name (f, pkg.F, v.Method) it also returns that name.
//
// Source that only declares things has no value. Statements are parsed as
// a function body. Source mixing declarations and statements is classified
// by the shortest trailing run of lines that parses on its own.
func lastExpr(source string) (exprKind, string) {
	if kind, callee, ok := classify(source); ok {
		return kind, callee
	}
	lines := strings.Split(source, "\n")
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		if kind, callee, ok := classify(strings.Join(lines[i:], "\n")); ok {
			return kind, callee
		}
	}
	return exprNone, ""
}

// classify reports false when source parses neither as declarations nor
// as statements.
func classify(source string) (exprKind, string, bool) {
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, "", "package main\n"+source, 0); err == nil {
		return exprNone, "", true
	}

	f, err := parser.ParseFile(fset, "", "package main\nfunc _() {\n"+source+"\n}", 0)
	if err != nil {
		return exprNone, "", false
	}
	body := f.Decls[0].(*ast.FuncDecl).Body
	if len(body.List) == 0 {
		return exprNone, "", true
	}

	stmt, ok := body.List[len(body.List)-1].(*ast.ExprStmt)
	if !ok {
		return exprNone, "", true
	}
	call, ok := ast.Unparen(stmt.X).(*ast.CallExpr)
	if !ok {
		return exprValue, "", true
	}
	if !plainName(call.Fun) {
		return exprCall, "", true
	}
	return exprCall, types.ExprString(call.Fun), true
}

// plainName reports whether e is an identifier or a selector chain of
// identifiers, which can be evaluated again without side effects.
func plainName(e ast.Expr) bool {
	switch x := ast.Unparen(e).(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		return plainName(x.X)
	}
	return false
}

package session

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"strings"
)

const filePrefix = "package main\n"

// splitSource separates the top-level declarations a snippet starts with
// (imports, functions, types, variables, constants) from the statements
// that follow them. The interpreter takes a chunk either as declarations
// or as statements, so the two halves are evaluated one after the other.
// Code that does not start with a declaration comes back whole in stmts.
func splitSource(code string) (decls, stmts string) {
	f, err := parseDecls(code)
	if err == nil {
		if len(f.Decls) == 0 {
			return "", code
		}
		return code, ""
	}

	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return "", code
	}
	first := list[0]
	if !strings.HasPrefix(first.Msg, "expected declaration") {
		return "", code
	}
	off := first.Pos.Offset - len(filePrefix)
	if off <= 0 || off > len(code) {
		return "", code
	}

	head := code[:off]
	if f, err := parseDecls(head); err != nil || len(f.Decls) == 0 {
		return "", code
	}
	return head, code[off:]
}

func parseDecls(code string) (*ast.File, error) {
	return parser.ParseFile(token.NewFileSet(), "", filePrefix+code, parser.SkipObjectResolution)
}

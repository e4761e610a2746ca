package padding

import (
	"go/ast"
	"go/token"
)

// SizeOf returns unsafe.Sizeof(*new(t)), a constant expression for any
// type whose size does not depend on type parameters.
func SizeOf(t ast.Expr) ast.Expr {
	return &ast.CallExpr{
		Fun: &ast.SelectorExpr{X: ast.NewIdent("unsafe"), Sel: ast.NewIdent("Sizeof")},
		Args: []ast.Expr{
			&ast.StarExpr{X: &ast.CallExpr{Fun: ast.NewIdent("new"), Args: []ast.Expr{t}}},
		},
	}
}

// ArrayOf returns the [length]byte type of a padding field.
func ArrayOf(length ast.Expr) ast.Expr {
	return &ast.ArrayType{Len: length, Elt: ast.NewIdent("byte")}
}

func intLit(lit string) *ast.BasicLit {
	return &ast.BasicLit{Kind: token.INT, Value: lit}
}

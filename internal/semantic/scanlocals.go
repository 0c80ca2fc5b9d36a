package semantic

import (
	"github.com/mwscript-go/mwsc/internal/ast"
	"github.com/mwscript-go/mwsc/internal/errors"
	"github.com/mwscript-go/mwsc/internal/locals"
)

// ScanLocals walks mod collecting every TypeDecl into a fresh locals.Table
// before the analyzer runs, so a reference to a local may appear in source
// before its declaration. Locals are module-scoped: a single flat table
// covers the whole unit. A redeclaration is reported as a warning through
// errs and the first declaration's type is kept.
func ScanLocals(mod *ast.Module, errs *errors.Handler) *locals.Table {
	tbl := locals.NewTable()
	for _, stmt := range mod.Statements {
		scanStatement(stmt, tbl, errs)
	}
	return tbl
}

func scanStatement(stmt ast.Statement, tbl *locals.Table, errs *errors.Handler) {
	switch s := stmt.(type) {
	case *ast.TypeDecl:
		if !tbl.Declare(s.Name, s.Type.Tag()) {
			errs.Warning("local '"+s.Name+"' redeclared, first declaration kept", s.Loc.Pos)
		}
	case *ast.IfStatement:
		for _, body := range s.Then {
			scanStatement(body, tbl, errs)
		}
		for _, ei := range s.ElseIfs {
			for _, body := range ei.Body {
				scanStatement(body, tbl, errs)
			}
		}
		for _, body := range s.Else {
			scanStatement(body, tbl, errs)
		}
	case *ast.WhileStatement:
		for _, body := range s.Body {
			scanStatement(body, tbl, errs)
		}
	}
}

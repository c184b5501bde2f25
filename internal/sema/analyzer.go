// Package sema implements MiniC's semantic analyzer (spec §4.3, component
// C4): name resolution, typing, and the compatibility rules that gate
// declarations, assignments, and returns.
package sema

import (
	"minicc/internal/ast"
	"minicc/internal/errors"
)

// SymbolKind distinguishes a variable symbol from a function symbol.
type SymbolKind string

const (
	KindVar  SymbolKind = "var"
	KindFunc SymbolKind = "func"
)

// Symbol is a named, typed entity in scope.
type Symbol struct {
	Name string
	Type ast.TypeName
	Kind SymbolKind
}

// scope is a parent-linked chain, per Design Note §9 ("prefer a
// parent-linked scope chain with explicit push/pop" over the source's
// shallow-copy snapshots). push/pop at block entry gives the same
// shadow-and-forget semantics as a snapshot without copying the whole map.
type scope struct {
	parent *scope
	vars   map[string]Symbol
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]Symbol)}
}

func (s *scope) declare(sym Symbol) {
	s.vars[sym.Name] = sym
}

// declaredHere reports whether name was declared directly in this scope
// (not an ancestor) — used for the "redeclaration in current scope" check.
func (s *scope) declaredHere(name string) bool {
	_, ok := s.vars[name]
	return ok
}

func (s *scope) lookup(name string) (Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if sym, ok := cur.vars[name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Analyzer performs the checks of spec §4.3 over a whole Program.
type Analyzer struct {
	Functions map[string]*ast.Function
}

// New prepares an analyzer; Functions is populated by Analyze.
func New() *Analyzer {
	return &Analyzer{Functions: make(map[string]*ast.Function)}
}

// Analyze runs name resolution and type checking over program, returning
// the first error encountered (spec §7: no recovery).
func Analyze(program *ast.Program) (*Analyzer, error) {
	a := New()
	for _, f := range program.Functions {
		if _, dup := a.Functions[f.Name]; dup {
			return nil, errors.NewSemanticError(f.Pos.Line, f.Pos.Column, "duplicate function %s", f.Name)
		}
		a.Functions[f.Name] = f
	}
	if _, ok := a.Functions["main"]; !ok {
		return nil, errors.NewSemanticError(0, 0, "no main function defined")
	}
	for _, f := range program.Functions {
		if err := a.analyzeFunction(f); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Analyzer) analyzeFunction(f *ast.Function) error {
	top := newScope(nil)
	for _, p := range f.Params {
		top.declare(Symbol{Name: p.Name, Type: p.Type, Kind: KindVar})
	}
	return a.walkBlock(f.Body, top, f.RetType)
}

// walkBlock enters a fresh child scope — a Block is always a scope
// boundary, matching spec §4.3's "Block nesting introduces a child scope".
func (a *Analyzer) walkBlock(b *ast.Block, parent *scope, retType ast.TypeName) error {
	child := newScope(parent)
	for _, stmt := range b.Statements {
		if err := a.walkStmt(stmt, child, retType); err != nil {
			return err
		}
	}
	return nil
}

// walkBodyStmt dispatches a loop/if body: a Block body gets its own
// snapshot scope, a single-statement body shares the enclosing scope
// verbatim — spec §4.3's documented (non-isolating) behavior for
// single-statement bodies.
func (a *Analyzer) walkBodyStmt(stmt ast.Stmt, parent *scope, retType ast.TypeName) error {
	if blk, ok := stmt.(*ast.Block); ok {
		return a.walkBlock(blk, parent, retType)
	}
	return a.walkStmt(stmt, parent, retType)
}

func (a *Analyzer) walkStmt(stmt ast.Stmt, sc *scope, retType ast.TypeName) error {
	switch s := stmt.(type) {
	case *ast.Block:
		return a.walkBlock(s, sc, retType)

	case *ast.VarDecl:
		if sc.declaredHere(s.Name) {
			return errors.NewSemanticError(s.Pos.Line, s.Pos.Column, "variable %s already declared", s.Name)
		}
		if s.Init != nil {
			initType, err := a.exprType(s.Init, sc)
			if err != nil {
				return err
			}
			if !typeCompatible(s.VarType, initType) {
				return errors.NewSemanticError(s.Pos.Line, s.Pos.Column,
					"type mismatch initializing %s: %s <- %s", s.Name, s.VarType, initType)
			}
		}
		sc.declare(Symbol{Name: s.Name, Type: s.VarType, Kind: KindVar})
		return nil

	case *ast.If:
		condType, err := a.exprType(s.Cond, sc)
		if err != nil {
			return err
		}
		if condType != ast.TBool {
			return errors.NewSemanticError(0, 0, "condition in if must be bool, got %s", condType)
		}
		if err := a.walkBodyStmt(s.Then, sc, retType); err != nil {
			return err
		}
		if s.Else != nil {
			return a.walkBodyStmt(s.Else, sc, retType)
		}
		return nil

	case *ast.While:
		condType, err := a.exprType(s.Cond, sc)
		if err != nil {
			return err
		}
		if condType != ast.TBool {
			return errors.NewSemanticError(0, 0, "condition in while must be bool, got %s", condType)
		}
		return a.walkBodyStmt(s.Body, sc, retType)

	case *ast.For:
		// The for-header's init/update share the enclosing scope even
		// though the body may be its own snapshot — matches the source's
		// handling where init is walked in the caller's scope.
		if s.Init != nil {
			if err := a.walkStmt(s.Init, sc, retType); err != nil {
				return err
			}
		}
		if s.Cond != nil {
			condType, err := a.exprType(s.Cond, sc)
			if err != nil {
				return err
			}
			if condType != ast.TBool {
				return errors.NewSemanticError(0, 0, "condition in for must be bool, got %s", condType)
			}
		}
		if s.Update != nil {
			if _, err := a.exprType(s.Update, sc); err != nil {
				return err
			}
		}
		return a.walkBodyStmt(s.Body, sc, retType)

	case *ast.Return:
		if s.Expr == nil {
			if retType != ast.TVoid {
				return errors.NewSemanticError(s.Pos.Line, s.Pos.Column, "missing return value for non-void function")
			}
			return nil
		}
		et, err := a.exprType(s.Expr, sc)
		if err != nil {
			return err
		}
		if !typeCompatible(retType, et) {
			return errors.NewSemanticError(s.Pos.Line, s.Pos.Column, "return type mismatch: expected %s, got %s", retType, et)
		}
		return nil

	case *ast.ExprStmt:
		_, err := a.exprType(s.X, sc)
		return err

	default:
		return errors.NewSemanticError(0, 0, "unhandled statement in semantic analyzer: %T", stmt)
	}
}

// exprType computes the static type of expr per spec §4.3, or returns the
// first error encountered.
func (a *Analyzer) exprType(expr ast.Expr, sc *scope) (ast.TypeName, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return e.Typ, nil

	case *ast.VarRef:
		sym, ok := sc.lookup(e.Name)
		if !ok {
			return "", errors.NewSemanticError(e.Pos.Line, e.Pos.Column, "use of undeclared variable %s", e.Name)
		}
		return sym.Type, nil

	case *ast.Assignment:
		sym, ok := sc.lookup(e.Target)
		if !ok {
			return "", errors.NewSemanticError(e.Pos.Line, e.Pos.Column, "assignment to undeclared variable %s", e.Target)
		}
		rtype, err := a.exprType(e.Value, sc)
		if err != nil {
			return "", err
		}
		if !typeCompatible(sym.Type, rtype) {
			return "", errors.NewSemanticError(e.Pos.Line, e.Pos.Column,
				"type mismatch in assignment to %s: %s <- %s", e.Target, sym.Type, rtype)
		}
		return sym.Type, nil

	case *ast.Unary:
		et, err := a.exprType(e.Expr, sc)
		if err != nil {
			return "", err
		}
		if e.Op == "!" {
			if et != ast.TBool {
				return "", errors.NewSemanticError(0, 0, "'!' operator needs bool, got %s", et)
			}
			return ast.TBool, nil
		}
		return et, nil

	case *ast.Binary:
		lt, err := a.exprType(e.Left, sc)
		if err != nil {
			return "", err
		}
		rt, err := a.exprType(e.Right, sc)
		if err != nil {
			return "", err
		}
		switch e.Op {
		case "+", "-", "*", "/", "%":
			if lt == ast.TFloat || rt == ast.TFloat {
				return ast.TFloat, nil
			}
			return ast.TInt, nil
		case "<", ">", "<=", ">=", "==", "!=":
			return ast.TBool, nil
		case "&&", "||":
			return ast.TBool, nil
		}
		return ast.TInt, nil

	case *ast.FuncCall:
		return a.callType(e, sc)

	default:
		return "", errors.NewSemanticError(0, 0, "unable to determine expression type for %T", expr)
	}
}

func (a *Analyzer) callType(call *ast.FuncCall, sc *scope) (ast.TypeName, error) {
	switch call.Name {
	case "print":
		return ast.TVoid, nil
	case "read":
		if len(call.Args) == 0 {
			return "", errors.NewSemanticError(call.Pos.Line, call.Pos.Column, "read expects a variable")
		}
		ref, ok := call.Args[0].(*ast.VarRef)
		if !ok {
			return "", errors.NewSemanticError(call.Pos.Line, call.Pos.Column, "read expects a variable")
		}
		if _, ok := sc.lookup(ref.Name); !ok {
			return "", errors.NewSemanticError(ref.Pos.Line, ref.Pos.Column, "read on undeclared variable %s", ref.Name)
		}
		return ast.TVoid, nil
	}
	fn, ok := a.Functions[call.Name]
	if !ok {
		return "", errors.NewSemanticError(call.Pos.Line, call.Pos.Column, "call to undefined function %s", call.Name)
	}
	// Arity/argument-type checking is intentionally not enforced — spec
	// §4.3 and Design Note §9.5 record this as an accepted limitation.
	return fn.RetType, nil
}

// typeCompatible implements spec §4.3's dst <- src compatibility table.
func typeCompatible(dst, src ast.TypeName) bool {
	if dst == src {
		return true
	}
	switch {
	case dst == ast.TFloat && src == ast.TInt:
		return true
	case dst == ast.TInt && src == ast.TChar:
		return true
	case dst == ast.TChar && src == ast.TInt:
		return true
	}
	return false
}

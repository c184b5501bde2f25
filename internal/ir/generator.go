package ir

import (
	"fmt"
	"strings"

	"minicc/internal/ast"
)

// Generator lowers one function at a time. Counters reset per Generate
// call, not per function, so no two functions of one program share a temp
// or label name (spec §5: no state carried between compilations; §9's
// Design Note on per-invocation rather than process-wide counters).
type Generator struct {
	code       []Instruction
	tempCount  int
	labelCount int
}

// Generate lowers an entire checked program to TAC. Each function begins
// with a label named after the function, and a void function receives an
// implicit trailing return (spec §4.4).
func Generate(program *ast.Program) *Program {
	out := &Program{}
	g := &Generator{}
	for _, fn := range program.Functions {
		g.code = nil
		g.function(fn)
		out.Functions = append(out.Functions, &Function{Name: fn.Name, Code: g.code})
	}
	return out
}

func (g *Generator) newTemp() string {
	g.tempCount++
	return fmt.Sprintf("t%d", g.tempCount)
}

func (g *Generator) newLabel() string {
	g.labelCount++
	return fmt.Sprintf("L%d", g.labelCount)
}

func (g *Generator) emit(instr Instruction) {
	g.code = append(g.code, instr)
}

func (g *Generator) function(fn *ast.Function) {
	g.emit(Instruction{Op: OpLabel, Label: fn.Name})
	g.block(fn.Body)
	if fn.RetType == ast.TVoid {
		g.emit(Instruction{Op: OpReturn})
	}
}

func (g *Generator) block(b *ast.Block) {
	for _, stmt := range b.Statements {
		g.stmt(stmt)
	}
}

func (g *Generator) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		g.block(s)

	case *ast.VarDecl:
		if s.Init != nil {
			val := g.expr(s.Init)
			g.emit(Instruction{Op: OpAssign, Dest: s.Name, Src1: val})
		}

	case *ast.If:
		cond := g.expr(s.Cond)
		elseLabel := g.newLabel()
		// cjump cond -> else_label: branch to else when cond is falsy,
		// fall through into the then-body when truthy (resolved polarity,
		// see ir.Instruction's Program Note).
		g.emit(Instruction{Op: OpCjump, Dest: cond, Label: elseLabel})
		g.stmtBody(s.Then)
		if s.Else != nil {
			endLabel := g.newLabel()
			g.emit(Instruction{Op: OpJump, Label: endLabel})
			g.emit(Instruction{Op: OpLabel, Label: elseLabel})
			g.stmtBody(s.Else)
			g.emit(Instruction{Op: OpLabel, Label: endLabel})
		} else {
			g.emit(Instruction{Op: OpLabel, Label: elseLabel})
		}

	case *ast.While:
		startLabel := g.newLabel()
		endLabel := g.newLabel()
		g.emit(Instruction{Op: OpLabel, Label: startLabel})
		cond := g.expr(s.Cond)
		g.emit(Instruction{Op: OpCjump, Dest: cond, Label: endLabel})
		g.stmtBody(s.Body)
		g.emit(Instruction{Op: OpJump, Label: startLabel})
		g.emit(Instruction{Op: OpLabel, Label: endLabel})

	case *ast.For:
		if s.Init != nil {
			g.stmt(s.Init)
		}
		startLabel := g.newLabel()
		endLabel := g.newLabel()
		g.emit(Instruction{Op: OpLabel, Label: startLabel})
		if s.Cond != nil {
			cond := g.expr(s.Cond)
			g.emit(Instruction{Op: OpCjump, Dest: cond, Label: endLabel})
		}
		g.stmtBody(s.Body)
		if s.Update != nil {
			g.expr(s.Update)
		}
		g.emit(Instruction{Op: OpJump, Label: startLabel})
		g.emit(Instruction{Op: OpLabel, Label: endLabel})

	case *ast.Return:
		if s.Expr == nil {
			g.emit(Instruction{Op: OpReturn})
			return
		}
		val := g.expr(s.Expr)
		g.emit(Instruction{Op: OpReturn, Dest: val})

	case *ast.ExprStmt:
		g.expr(s.X)
	}
}

// stmtBody lowers an if/while/for body; a Block body is lowered in place
// rather than entering any new scope — TAC generation has no notion of
// scope, only the semantic analyzer does (spec §4.3/§4.4).
func (g *Generator) stmtBody(stmt ast.Stmt) {
	if blk, ok := stmt.(*ast.Block); ok {
		g.block(blk)
		return
	}
	g.stmt(stmt)
}

// expr lowers an expression and returns the name holding its value: a
// temp, a variable, or a literal's text form.
func (g *Generator) expr(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Literal:
		dest := g.newTemp()
		g.emit(Instruction{Op: OpAssign, Dest: dest, Src1: literalText(e)})
		return dest

	case *ast.VarRef:
		return e.Name

	case *ast.Assignment:
		val := g.expr(e.Value)
		g.emit(Instruction{Op: OpAssign, Dest: e.Target, Src1: val})
		return e.Target

	case *ast.Unary:
		operand := g.expr(e.Expr)
		dest := g.newTemp()
		g.emit(Instruction{Op: OpUnop, Dest: dest, Src1: string(e.Op), Src2: operand})
		return dest

	case *ast.Binary:
		left := g.expr(e.Left)
		right := g.expr(e.Right)
		dest := g.newTemp()
		// src2 packs "OP operand" as a single string split on the first
		// space (spec §4.4's wire format for binop).
		g.emit(Instruction{Op: OpBinop, Dest: dest, Src1: left, Src2: string(e.Op) + " " + right})
		return dest

	case *ast.FuncCall:
		return g.call(e)
	}
	return ""
}

// call lowers any FuncCall — a user function or the print/read builtins,
// which are ordinary calls, not distinct TAC ops (spec §3's op set has no
// print/read entry).
func (g *Generator) call(call *ast.FuncCall) string {
	var argVals []string
	for _, a := range call.Args {
		argVals = append(argVals, g.expr(a))
	}
	for _, v := range argVals {
		g.emit(Instruction{Op: OpParam, Dest: v})
	}
	dest := ""
	if call.Name != "print" {
		dest = g.newTemp()
	}
	g.emit(Instruction{Op: OpCall, Dest: dest, Src1: strings.Join(argVals, ","), Src2: call.Name})
	return dest
}

func literalText(lit *ast.Literal) string {
	switch v := lit.Value.(type) {
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		return v
	}
	return ""
}

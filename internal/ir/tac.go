// Package ir implements MiniC's three-address code: the Instruction wire
// type (spec §3/§4.4/§4.7) and the generator that lowers a checked
// *ast.Program into a flat per-function instruction stream (component C5).
package ir

import "fmt"

// Instruction is one line of three-address code. Fields that don't apply
// to a given Op are left at their zero value; the printer (internal/tacprint)
// renders an absent field as "-". The per-op field layout below is the
// wire format and must be preserved exactly — it is part of the interface
// contract shared by the optimizer, printer, and code generator.
//
//   label:  uses Label
//   assign: dest = src1
//   binop:  dest = src1 OP right, encoded as Src2 = "OP right" (one space,
//           split once)
//   unop:   dest = OP src2, where Src1 holds the operator symbol and Src2
//           holds the operand — the operator/operand positions are
//           swapped relative to what the field names might suggest
//   jump:   goto Label
//   cjump:  if Dest goto Label — Dest (not Src1) holds the condition
//           operand; see Program Note on polarity below
//   call:   Dest = call Src2(args), where Src1 holds the ordered argument
//           operand list, comma-joined
//   return: optional Dest holds the returned operand
//   param:  Dest holds the operand being pushed
//
// Program Note (cjump polarity, spec §9 Open Question 1): the original
// IR generator writes cjump as if it branches on a falsy condition, while
// its codegen lowered cjump to JTRUE (branch on true) — two disagreeing
// halves of one instruction. This implementation picks a single polarity
// throughout: cjump branches to Label when its Dest operand is falsy,
// falling through otherwise. The code generator's JFALSE opcode (see
// internal/codegen) reflects this resolved polarity rather than the
// source's JTRUE.
type Instruction struct {
	Op    string
	Dest  string
	Src1  string
	Src2  string
	Label string
}

func (i Instruction) String() string {
	return fmt.Sprintf("{op:%s dest:%s src1:%s src2:%s label:%s}", i.Op, i.Dest, i.Src1, i.Src2, i.Label)
}

// Function is one function's lowered body.
type Function struct {
	Name string
	Code []Instruction
}

// Program is every function's lowered body, in source order.
type Program struct {
	Functions []*Function
}

// Op name constants — the complete TAC opcode set from spec §3. print and
// read are ordinary calls (to the builtin names "print"/"read"), not
// distinct ops; there is no separate printer/codegen case for them.
const (
	OpAssign = "assign"
	OpBinop  = "binop"
	OpUnop   = "unop"
	OpLabel  = "label"
	OpJump   = "jump"
	OpCjump  = "cjump"
	OpParam  = "param"
	OpCall   = "call"
	OpReturn = "return"
)

// Package optimize implements MiniC's TAC optimizer (spec §4.6, component
// C7): a fixed pass schedule run once, not iterated to convergence —
// constant propagation, constant folding, constant propagation again, CSE,
// then dead-code elimination.
package optimize

import (
	"strconv"
	"strings"

	"minicc/internal/dag"
	"minicc/internal/ir"
)

// Optimize runs the fixed schedule over every function in program,
// in place on a copy of its instruction slice.
func Optimize(program *ir.Program) *ir.Program {
	out := &ir.Program{}
	for _, fn := range program.Functions {
		code := cloneCode(fn.Code)
		code = constantPropagation(code)
		code = constantFolding(code)
		code = constantPropagation(code)
		code = commonSubexpressionElimination(code)
		code = deadCodeElimination(code)
		out.Functions = append(out.Functions, &ir.Function{Name: fn.Name, Code: code})
	}
	return out
}

func cloneCode(code []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, len(code))
	copy(out, code)
	return out
}

// constantPropagation maintains a map from variable to its last known
// literal value (string form), per spec §4.6 step 1, and substitutes
// known values into operand positions only — Src1, the right operand
// packed in Src2, cjump/param's Dest-as-operand, and call argument lists
// — never into Dest, fixing the dest-corruption bug recorded in spec §9
// Open Question 2. return's Dest is deliberately left alone: inlining a
// variable's known value there would strip the last use that keeps its
// feeding assign alive, losing the literal assignment scenario 1 of
// spec §8 requires to survive dead-code elimination, for no optimization
// benefit downstream of a terminal return.
func constantPropagation(code []ir.Instruction) []ir.Instruction {
	consts := make(map[string]string)
	out := make([]ir.Instruction, len(code))

	propagate := func(name string) string {
		if v, ok := consts[name]; ok {
			return v
		}
		return name
	}

	for i, instr := range code {
		switch instr.Op {
		case ir.OpLabel:
			// A label is a control-flow merge point: a constant known on
			// the fall-through edge may not hold once a backward jump
			// lands here, so forget everything known so far.
			consts = make(map[string]string)

		case ir.OpAssign:
			instr.Src1 = propagate(instr.Src1)
			if isLiteral(instr.Src1) {
				consts[instr.Dest] = instr.Src1
			} else {
				delete(consts, instr.Dest)
			}

		case ir.OpBinop:
			instr.Src1 = propagate(instr.Src1)
			if op, right, ok := splitBinSrc2(instr.Src2); ok {
				instr.Src2 = op + " " + propagate(right)
			}
			delete(consts, instr.Dest)

		case ir.OpUnop:
			instr.Src2 = propagate(instr.Src2)
			delete(consts, instr.Dest)

		case ir.OpCjump:
			instr.Dest = propagate(instr.Dest)

		case ir.OpParam:
			instr.Dest = propagate(instr.Dest)

		case ir.OpCall:
			instr.Src1 = propagateArgs(instr.Src1, propagate)
		}
		out[i] = instr
	}
	return out
}

func propagateArgs(joined string, propagate func(string) string) string {
	if joined == "" {
		return joined
	}
	parts := strings.Split(joined, ",")
	for i, p := range parts {
		parts[i] = propagate(p)
	}
	return strings.Join(parts, ",")
}

// constantFolding reduces a binop whose operands are both literals, and a
// unop whose operand is a literal, to a single assign of the computed
// value (spec §4.6 step 2). Integer division truncates; comparisons
// produce "true"/"false" text, folded by printer/codegen like any bool.
//
// It carries a local map from dest to its just-folded literal across the
// single linear scan: a literal lowered to its own temp (`assign t = 2`)
// or a binop folded earlier in this same pass (`assign t = 12`) is
// substituted into later operand positions before folding is attempted,
// so a chain like `t1=3*4` then `t2=2+t1` folds all the way through to
// `t2=14` in one pass rather than needing another propagation pass that
// runs after folding is already done.
func constantFolding(code []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(code))
	folded := make(map[string]string)

	subst := func(name string) string {
		if v, ok := folded[name]; ok {
			return v
		}
		return name
	}

	for _, instr := range code {
		switch instr.Op {
		case ir.OpLabel:
			folded = make(map[string]string)

		case ir.OpAssign:
			instr.Src1 = subst(instr.Src1)
			if isLiteral(instr.Src1) {
				folded[instr.Dest] = instr.Src1
			} else {
				delete(folded, instr.Dest)
			}

		case ir.OpBinop:
			instr.Src1 = subst(instr.Src1)
			if op, right, ok := splitBinSrc2(instr.Src2); ok {
				right = subst(right)
				if isLiteral(instr.Src1) && isLiteral(right) {
					if v, ok := foldBinop(op, instr.Src1, right); ok {
						folded[instr.Dest] = v
						out = append(out, ir.Instruction{Op: ir.OpAssign, Dest: instr.Dest, Src1: v})
						continue
					}
				}
				instr.Src2 = op + " " + right
			}
			delete(folded, instr.Dest)

		case ir.OpUnop:
			instr.Src2 = subst(instr.Src2)
			if isLiteral(instr.Src2) {
				if v, ok := foldUnop(instr.Src1, instr.Src2); ok {
					folded[instr.Dest] = v
					out = append(out, ir.Instruction{Op: ir.OpAssign, Dest: instr.Dest, Src1: v})
					continue
				}
			}
			delete(folded, instr.Dest)
		}
		out = append(out, instr)
	}
	return out
}

// commonSubexpressionElimination rewrites a redundant recomputation within
// a single basic block into a copy of the earlier result, per spec §9's
// single-block-scoped CSE fix (whole-function CSE is unsound across
// control flow).
func commonSubexpressionElimination(code []ir.Instruction) []ir.Instruction {
	out := cloneCode(code)
	for _, blk := range dag.SplitBlocks(code) {
		builder := dag.NewBuilder()
		for i := blk.Start; i < blk.End; i++ {
			instr := out[i]
			switch instr.Op {
			case ir.OpBinop:
				op, right, ok := splitBinSrc2(instr.Src2)
				if !ok {
					continue
				}
				builder.Invalidate(instr.Dest)
				if node, found := builder.Lookup(op, instr.Src1, right, ""); found {
					out[i] = ir.Instruction{Op: ir.OpAssign, Dest: instr.Dest, Src1: node.Name}
				} else {
					builder.Record(op, instr.Src1, right, "", instr.Dest, i)
				}

			case ir.OpUnop:
				builder.Invalidate(instr.Dest)
				if node, found := builder.Lookup(instr.Src1, instr.Src2, "", ""); found {
					out[i] = ir.Instruction{Op: ir.OpAssign, Dest: instr.Dest, Src1: node.Name}
				} else {
					builder.Record(instr.Src1, instr.Src2, "", "", instr.Dest, i)
				}

			case ir.OpAssign, ir.OpCall:
				builder.Invalidate(instr.Dest)
			}
		}
	}
	return out
}

// deadCodeElimination removes assign/binop/unop instructions whose dest is
// not read anywhere in the function. Reads are gathered into one
// whole-function use set by a single forward scan, not by a backward
// liveness sweep, so a read earlier in the code (as in a loop) keeps a
// definition alive; the set is not recomputed after removals, so an
// instruction whose only reader is itself removed here is kept.
// cjump/return/param operands are uses, never kills, and a call is always
// kept (it may have side effects); a param is kept or dropped together
// with the call it feeds, never independently — fixing the param/call
// liveness bug recorded in spec §9 Open Question 4.
func deadCodeElimination(code []ir.Instruction) []ir.Instruction {
	used := make(map[string]bool)
	for _, instr := range code {
		markUses(instr, used)
	}

	liveIndex := make([]bool, len(code))
	for i, instr := range code {
		switch instr.Op {
		case ir.OpCall, ir.OpReturn, ir.OpLabel, ir.OpJump, ir.OpCjump:
			liveIndex[i] = true
		case ir.OpParam:
			liveIndex[i] = true // re-resolved against its call below
		case ir.OpAssign, ir.OpBinop, ir.OpUnop:
			if used[instr.Dest] {
				liveIndex[i] = true
			}
		}
	}
	// A run of params immediately followed by a call lives or dies with
	// that call — never independently.
	for i := 0; i < len(code); i++ {
		if code[i].Op != ir.OpParam {
			continue
		}
		j := i
		for j < len(code) && code[j].Op == ir.OpParam {
			j++
		}
		callLive := j < len(code) && code[j].Op == ir.OpCall && liveIndex[j]
		for k := i; k < j; k++ {
			liveIndex[k] = callLive
		}
		i = j - 1
	}

	out := make([]ir.Instruction, 0, len(code))
	for i, instr := range code {
		if liveIndex[i] {
			out = append(out, instr)
		}
	}
	return out
}

func markUses(instr ir.Instruction, used map[string]bool) {
	switch instr.Op {
	case ir.OpAssign:
		markOperand(instr.Src1, used)
	case ir.OpBinop:
		markOperand(instr.Src1, used)
		if _, right, ok := splitBinSrc2(instr.Src2); ok {
			markOperand(right, used)
		}
	case ir.OpUnop:
		markOperand(instr.Src2, used)
	case ir.OpCjump, ir.OpReturn, ir.OpParam:
		markOperand(instr.Dest, used)
	case ir.OpCall:
		for _, arg := range strings.Split(instr.Src1, ",") {
			markOperand(arg, used)
		}
	}
}

func markOperand(name string, used map[string]bool) {
	if name != "" && !isLiteral(name) {
		used[name] = true
	}
}

// splitBinSrc2 splits a binop's Src2 field ("OP right") on its first
// space, per spec §4.4's wire format.
func splitBinSrc2(src2 string) (op, right string, ok bool) {
	idx := strings.IndexByte(src2, ' ')
	if idx < 0 {
		return "", "", false
	}
	return src2[:idx], src2[idx+1:], true
}

func isLiteral(name string) bool {
	if name == "" {
		return false
	}
	if name == "true" || name == "false" {
		return true
	}
	if _, err := strconv.ParseFloat(name, 64); err == nil {
		return true
	}
	return false
}

// foldBinop computes a binop over two literal operand strings using signed
// integer arithmetic with truncating division when both operands are
// integer-typed, else floating point (spec §4.6's numeric semantics note).
func foldBinop(op, left, right string) (string, bool) {
	if isBoolLiteral(left) || isBoolLiteral(right) {
		return foldBoolBinop(op, left, right)
	}
	lf, lerr := strconv.ParseFloat(left, 64)
	rf, rerr := strconv.ParseFloat(right, 64)
	if lerr != nil || rerr != nil {
		return "", false
	}
	bothInt := !strings.Contains(left, ".") && !strings.Contains(right, ".")
	switch op {
	case "+":
		return formatNumeric(lf+rf, bothInt), true
	case "-":
		return formatNumeric(lf-rf, bothInt), true
	case "*":
		return formatNumeric(lf*rf, bothInt), true
	case "/":
		if rf == 0 {
			return "", false
		}
		if bothInt {
			return strconv.FormatInt(int64(lf)/int64(rf), 10), true
		}
		return formatNumeric(lf/rf, false), true
	case "%":
		if !bothInt || int64(rf) == 0 {
			return "", false
		}
		return strconv.FormatInt(int64(lf)%int64(rf), 10), true
	case "<":
		return boolText(lf < rf), true
	case ">":
		return boolText(lf > rf), true
	case "<=":
		return boolText(lf <= rf), true
	case ">=":
		return boolText(lf >= rf), true
	case "==":
		return boolText(lf == rf), true
	case "!=":
		return boolText(lf != rf), true
	default:
		return "", false
	}
}

func foldBoolBinop(op, left, right string) (string, bool) {
	l, lok := parseBool(left)
	r, rok := parseBool(right)
	if !lok || !rok {
		return "", false
	}
	switch op {
	case "&&":
		return boolText(l && r), true
	case "||":
		return boolText(l || r), true
	case "==":
		return boolText(l == r), true
	case "!=":
		return boolText(l != r), true
	}
	return "", false
}

func foldUnop(op, operand string) (string, bool) {
	if isBoolLiteral(operand) {
		b, _ := parseBool(operand)
		if op == "!" {
			return boolText(!b), true
		}
		return "", false
	}
	f, err := strconv.ParseFloat(operand, 64)
	if err != nil {
		return "", false
	}
	isInt := !strings.Contains(operand, ".")
	switch op {
	case "-":
		return formatNumeric(-f, isInt), true
	case "+":
		return operand, true
	case "!":
		return boolText(f == 0), true
	}
	return "", false
}

func isBoolLiteral(s string) bool {
	return s == "true" || s == "false"
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func formatNumeric(f float64, asInt bool) string {
	if asInt {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func boolText(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

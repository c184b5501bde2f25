// Package tacprint renders TAC in the four textual dialects of spec §4.7:
// standard, quadruples, triples, and postfix (component C8). A field with
// no value for a given instruction renders as "-".
package tacprint

import (
	"fmt"
	"strings"

	"minicc/internal/ir"
)

// Dialect selects one of the four renderings.
type Dialect string

const (
	Standard   Dialect = "standard"
	Quadruples Dialect = "quadruples"
	Triples    Dialect = "triples"
	Postfix    Dialect = "postfix"
)

// Print renders every function in program in the given dialect, one
// function after another, separated by a blank line.
func Print(program *ir.Program, d Dialect) string {
	var funcs []string
	for _, fn := range program.Functions {
		funcs = append(funcs, printFunction(fn, d))
	}
	return strings.Join(funcs, "\n\n")
}

func printFunction(fn *ir.Function, d Dialect) string {
	var lines []string
	for i, instr := range fn.Code {
		lines = append(lines, printInstruction(instr, i+1, d))
	}
	return strings.Join(lines, "\n")
}

func field(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func printInstruction(instr ir.Instruction, index int, d Dialect) string {
	switch d {
	case Quadruples:
		return printQuadruple(instr, index)
	case Triples:
		return printTriple(instr, index)
	case Postfix:
		return printPostfix(instr)
	default:
		return printStandard(instr)
	}
}

// printStandard renders the natural-language wire form of spec §3.
func printStandard(instr ir.Instruction) string {
	switch instr.Op {
	case ir.OpAssign:
		return fmt.Sprintf("%s = %s", instr.Dest, field(instr.Src1))
	case ir.OpBinop:
		op, right, ok := splitSrc2(instr.Src2)
		if !ok {
			return fmt.Sprintf("%s = %s", instr.Dest, field(instr.Src1))
		}
		return fmt.Sprintf("%s = %s %s %s", instr.Dest, field(instr.Src1), op, right)
	case ir.OpUnop:
		return fmt.Sprintf("%s = %s%s", instr.Dest, instr.Src1, instr.Src2)
	case ir.OpLabel:
		return fmt.Sprintf("%s:", instr.Label)
	case ir.OpJump:
		return fmt.Sprintf("goto %s", instr.Label)
	case ir.OpCjump:
		return fmt.Sprintf("if %s goto %s", instr.Dest, instr.Label)
	case ir.OpParam:
		return fmt.Sprintf("param %s", instr.Dest)
	case ir.OpCall:
		return fmt.Sprintf("%s = call %s(%s)", field(instr.Dest), instr.Src2, instr.Src1)
	case ir.OpReturn:
		if instr.Dest == "" {
			return "return"
		}
		return fmt.Sprintf("return %s", instr.Dest)
	default:
		return fmt.Sprintf("; %s", instr)
	}
}

// printQuadruple renders the fixed (op, arg1, arg2, result) tuple form.
func printQuadruple(instr ir.Instruction, index int) string {
	op, arg1, arg2, result := quadFields(instr)
	return fmt.Sprintf("(%d) (%s, %s, %s, %s)", index, op, arg1, arg2, result)
}

// printTriple renders (op, arg1, arg2), dropping the result column.
func printTriple(instr ir.Instruction, index int) string {
	op, arg1, arg2, _ := quadFields(instr)
	return fmt.Sprintf("(%d) (%s, %s, %s)", index, op, arg1, arg2)
}

func quadFields(instr ir.Instruction) (op, arg1, arg2, result string) {
	op = instr.Op
	arg1, arg2, result = "-", "-", "-"
	switch instr.Op {
	case ir.OpAssign:
		arg1 = field(instr.Src1)
		result = field(instr.Dest)
	case ir.OpBinop:
		o, right, ok := splitSrc2(instr.Src2)
		arg1 = field(instr.Src1)
		if ok {
			op = o
			arg2 = right
		}
		result = field(instr.Dest)
	case ir.OpUnop:
		op = instr.Src1
		arg1 = field(instr.Src2)
		result = field(instr.Dest)
	case ir.OpLabel:
		arg1 = field(instr.Label)
	case ir.OpJump:
		arg1 = field(instr.Label)
	case ir.OpCjump:
		arg1 = field(instr.Dest)
		arg2 = field(instr.Label)
	case ir.OpParam:
		arg1 = field(instr.Dest)
	case ir.OpCall:
		op = "call"
		arg1 = field(instr.Src2)
		arg2 = field(instr.Src1)
		result = field(instr.Dest)
	case ir.OpReturn:
		arg1 = field(instr.Dest)
	}
	return
}

// printPostfix renders an instruction as RPN where it computes a value,
// falling back to the standard form for control flow and calls.
func printPostfix(instr ir.Instruction) string {
	switch instr.Op {
	case ir.OpAssign:
		return fmt.Sprintf("%s %s =", instr.Dest, field(instr.Src1))
	case ir.OpBinop:
		op, right, ok := splitSrc2(instr.Src2)
		if !ok {
			return printStandard(instr)
		}
		return fmt.Sprintf("%s %s %s %s =", instr.Dest, field(instr.Src1), right, op)
	case ir.OpUnop:
		return fmt.Sprintf("%s %s %s =", instr.Dest, instr.Src2, instr.Src1)
	default:
		return printStandard(instr)
	}
}

func splitSrc2(src2 string) (op, right string, ok bool) {
	idx := strings.IndexByte(src2, ' ')
	if idx < 0 {
		return "", "", false
	}
	return src2[:idx], src2[idx+1:], true
}

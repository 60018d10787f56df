// Package loader parses the scoreboard text input format (spec.md §6.1) —
// functional-unit declarations and instructions, across one or more
// concatenated files — into a config.MachineConfig and a scoreboard.Program.
package loader

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/scoresim/config"
	"github.com/sarchlab/scoresim/insts"
	"github.com/sarchlab/scoresim/scoreboard"
)

// ParseError reports a malformed line, with the line number in the
// concatenated input stream (1-based, counting across all files in order).
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// UnknownRegisterError reports an operand that isn't a recognized register
// or memory-reference-to-register form.
type UnknownRegisterError struct {
	Name string
}

func (e *UnknownRegisterError) Error() string {
	return fmt.Sprintf("unknown register %q", e.Name)
}

// memRefPattern matches a displacement-style memory operand like "34(x2)" or
// "-8(f1)", retaining only the inner register (spec.md §6.1).
var memRefPattern = regexp.MustCompile(`^-?[0-9]*\(([a-zA-Z][a-zA-Z0-9]*)\)$`)

// Load reads and concatenates paths in order, parses every line, and
// returns the declared machine configuration and decoded program. No
// partial result is returned on error.
func Load(paths ...string) (*config.MachineConfig, *scoreboard.Program, error) {
	cfg := config.New()
	program := &scoreboard.Program{}
	decoder := insts.NewDecoder()

	lineNo := 0
	nextID := 0
	var instLines []int

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
		}

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lineNo++
			tokens := tokenize(scanner.Text())
			if len(tokens) == 0 {
				continue
			}

			first := strings.ToLower(tokens[0])
			switch {
			case isUnitKindToken(first):
				if err := parseUnitLine(cfg, lineNo, tokens); err != nil {
					f.Close()
					return nil, nil, err
				}
			case insts.Recognized(first):
				inst, err := parseInstructionLine(decoder, nextID, lineNo, first, tokens[1:])
				if err != nil {
					f.Close()
					return nil, nil, err
				}
				program.Instructions = append(program.Instructions, inst)
				instLines = append(instLines, lineNo)
				nextID++
			default:
				f.Close()
				return nil, nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("unrecognized token %q", tokens[0])}
			}
		}
		if err := scanner.Err(); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		f.Close()
	}

	// Register indices are only bound by the uint8 range at parse time.
	// Check them now, once every file has been read, against cfg's
	// register-file sizes, so an out-of-range register is rejected before
	// simulation starts
	// (spec.md §7) rather than silently treated as an always-ready operand.
	if err := checkRegisterBounds(cfg, program, instLines); err != nil {
		return nil, nil, err
	}

	return cfg, program, nil
}

// checkRegisterBounds verifies every decoded instruction's Dest/Src1/Src2
// names a register within cfg's configured register-file size.
func checkRegisterBounds(cfg *config.MachineConfig, program *scoreboard.Program, lines []int) error {
	for i, inst := range program.Instructions {
		for _, reg := range [...]insts.Reg{inst.Dest, inst.Src1, inst.Src2} {
			if reg.IsNone() {
				continue
			}
			limit := cfg.NumIntRegs
			if reg.Namespace == insts.RegNamespaceFloat {
				limit = cfg.NumFloatRegs
			}
			if int(reg.Index) >= limit {
				return &ParseError{Line: lines[i], Reason: (&UnknownRegisterError{Name: reg.String()}).Error()}
			}
		}
	}
	return nil
}

// tokenize splits a line on commas and whitespace, treating commas as
// whitespace (spec.md §6.1), dropping empty tokens.
func tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\r'
	})
}

func isUnitKindToken(s string) bool {
	_, ok := insts.ParseUnitKind(s)
	return ok
}

// parseUnitLine handles "<kind> <n_units> <n_cycles>".
func parseUnitLine(cfg *config.MachineConfig, line int, tokens []string) error {
	if len(tokens) != 3 {
		return &ParseError{Line: line, Reason: fmt.Sprintf("functional-unit declaration expects 3 tokens, got %d", len(tokens))}
	}
	kind, _ := insts.ParseUnitKind(strings.ToLower(tokens[0]))

	units, err := parsePositiveInt(tokens[1])
	if err != nil {
		return &ParseError{Line: line, Reason: fmt.Sprintf("n_units: %v", err)}
	}
	cycles, err := parsePositiveInt(tokens[2])
	if err != nil {
		return &ParseError{Line: line, Reason: fmt.Sprintf("n_cycles: %v", err)}
	}

	cfg.AddUnit(kind, units, cycles)
	return nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%q must be positive", s)
	}
	return n, nil
}

// parseInstructionLine handles "<mnemonic> <operand>[, <operand>[, <operand>]]".
func parseInstructionLine(decoder *insts.Decoder, id, line int, mnemonic string, operandTokens []string) (*insts.Instruction, error) {
	operands := make([]insts.Reg, 0, len(operandTokens))
	for _, tok := range operandTokens {
		reg, err := parseOperand(tok)
		if err != nil {
			return nil, &ParseError{Line: line, Reason: err.Error()}
		}
		operands = append(operands, reg)
	}

	inst, err := decoder.Decode(id, mnemonic, operands)
	if err != nil {
		return nil, &ParseError{Line: line, Reason: err.Error()}
	}
	return inst, nil
}

// parseOperand accepts a bare register (x3, f12) or a memory reference
// (34(x2)), returning the dependency register in either case.
func parseOperand(tok string) (insts.Reg, error) {
	if m := memRefPattern.FindStringSubmatch(tok); m != nil {
		return parseRegister(m[1])
	}
	return parseRegister(tok)
}

func parseRegister(tok string) (insts.Reg, error) {
	if len(tok) < 2 {
		return insts.NoReg, &UnknownRegisterError{Name: tok}
	}

	var namespace insts.RegNamespace
	switch tok[0] {
	case 'x', 'X':
		namespace = insts.RegNamespaceInt
	case 'f', 'F':
		namespace = insts.RegNamespaceFloat
	default:
		return insts.NoReg, &UnknownRegisterError{Name: tok}
	}

	index, err := strconv.Atoi(tok[1:])
	if err != nil || index < 0 || index > 255 {
		return insts.NoReg, &UnknownRegisterError{Name: tok}
	}

	return insts.Reg{Namespace: namespace, Index: uint8(index)}, nil
}

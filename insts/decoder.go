package insts

import "fmt"

// UnknownOpcodeError reports a mnemonic not present in the recognized table.
type UnknownOpcodeError struct {
	Mnemonic string
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %q", e.Mnemonic)
}

// WrongArityError reports an instruction with the wrong number of register operands.
type WrongArityError struct {
	Mnemonic string
	Want     int
	Got      int
}

func (e *WrongArityError) Error() string {
	return fmt.Sprintf("%s expects %d operand(s), got %d", e.Mnemonic, e.Want, e.Got)
}

// layout describes how a mnemonic's operand list maps onto unit kind,
// destination, and sources. It is the Go-typed replacement for the
// ad hoc operand-count padding spec.md §9 calls out.
type layout struct {
	kind    UnitKind
	hasDest bool
	// order lists, for each positional operand after any destination has
	// been consumed, which instruction field it fills.
	order []field
}

type field uint8

const (
	fieldSrc1 field = iota
	fieldSrc2
)

// decodeTable is the fixed mapping from mnemonic to operand layout (§4.1).
var decodeTable = map[Mnemonic]layout{
	ILD:  {kind: Int, hasDest: true, order: []field{fieldSrc1}},           // dest, address-base
	FLD:  {kind: Int, hasDest: true, order: []field{fieldSrc1}},           // dest, address-base
	ISW:  {kind: Int, hasDest: false, order: []field{fieldSrc1, fieldSrc2}}, // value-reg, address-base
	FSD:  {kind: Int, hasDest: false, order: []field{fieldSrc1, fieldSrc2}}, // value-reg, address-base
	IADD: {kind: Int, hasDest: true, order: []field{fieldSrc1, fieldSrc2}},
	ISUB: {kind: Int, hasDest: true, order: []field{fieldSrc1, fieldSrc2}},
	FADD: {kind: Add, hasDest: true, order: []field{fieldSrc1, fieldSrc2}},
	FSUB: {kind: Add, hasDest: true, order: []field{fieldSrc1, fieldSrc2}},
	FMUL: {kind: Mult, hasDest: true, order: []field{fieldSrc1, fieldSrc2}},
	FDIV: {kind: Div, hasDest: true, order: []field{fieldSrc1, fieldSrc2}},
}

// Decoder maps a mnemonic and its already-tokenized register operands onto a
// decoded Instruction. It holds no state; NewDecoder exists only to mirror
// the rest of the codebase's constructor convention.
type Decoder struct{}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode maps mnemonic and operands (in source order, registers only — any
// "imm(reg)" displacement must already have been reduced to its inner
// register by the caller) onto a decoded Instruction with a fresh id.
func (d *Decoder) Decode(id int, mnemonic string, operands []Reg) (*Instruction, error) {
	lay, ok := decodeTable[Mnemonic(mnemonic)]
	if !ok {
		return nil, &UnknownOpcodeError{Mnemonic: mnemonic}
	}

	want := len(lay.order)
	if lay.hasDest {
		want++
	}
	if len(operands) != want {
		return nil, &WrongArityError{Mnemonic: mnemonic, Want: want, Got: len(operands)}
	}

	inst := &Instruction{
		ID:       id,
		Mnemonic: Mnemonic(mnemonic),
		UnitKind: lay.kind,
		Dest:     NoReg,
		Src1:     NoReg,
		Src2:     NoReg,
	}

	pos := 0
	if lay.hasDest {
		inst.Dest = operands[pos]
		pos++
	}
	for _, f := range lay.order {
		switch f {
		case fieldSrc1:
			inst.Src1 = operands[pos]
		case fieldSrc2:
			inst.Src2 = operands[pos]
		}
		pos++
	}

	return inst, nil
}

// Recognized reports whether mnemonic is in the decode table.
func Recognized(mnemonic string) bool {
	_, ok := decodeTable[Mnemonic(mnemonic)]
	return ok
}

// Command lambdavdis is a small, independent SPIR-V disassembler. It knows
// nothing about the compiler's internal state — only the opcode table and
// operand shapes for the subset of instructions lambdavc ever emits
// — and prints one line per instruction.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"
)

var opcodeNames = map[uint16]string{
	5:   "OpName",
	11:  "OpExtInstImport",
	14:  "OpMemoryModel",
	15:  "OpEntryPoint",
	16:  "OpExecutionMode",
	17:  "OpCapability",
	19:  "OpTypeVoid",
	20:  "OpTypeBool",
	22:  "OpTypeFloat",
	23:  "OpTypeVector",
	32:  "OpTypePointer",
	33:  "OpTypeFunction",
	41:  "OpConstantTrue",
	42:  "OpConstantFalse",
	43:  "OpConstant",
	54:  "OpFunction",
	56:  "OpFunctionEnd",
	59:  "OpVariable",
	62:  "OpStore",
	71:  "OpDecorate",
	80:  "OpCompositeConstruct",
	127: "OpFNegate",
	129: "OpFAdd",
	131: "OpFSub",
	133: "OpFMul",
	136: "OpFDiv",
	170: "OpIEqual",
	180: "OpFOrdEqual",
	245: "OpPhi",
	246: "OpLoopMerge",
	247: "OpSelectionMerge",
	248: "OpLabel",
	249: "OpBranch",
	250: "OpBranchConditional",
	252: "OpKill",
	253: "OpReturn",
}

var capabilities = map[uint32]string{1: "Shader"}

var addressingModels = map[uint32]string{0: "Logical"}
var memoryModels = map[uint32]string{1: "GLSL450"}
var executionModels = map[uint32]string{4: "Fragment"}
var executionModes = map[uint32]string{7: "OriginUpperLeft"}
var storageClasses = map[uint32]string{3: "Output"}
var decorations = map[uint32]string{30: "Location"}

func readString(data []byte, offset int, maxWords int) string {
	var sb strings.Builder
	for i := 0; i < maxWords*4; i++ {
		if offset+i >= len(data) {
			break
		}
		b := data[offset+i]
		if b == 0 {
			break
		}
		sb.WriteByte(b)
	}
	return sb.String()
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: lambdavdis <file.spv>")
		return
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(data) < 20 {
		fmt.Fprintln(os.Stderr, "Error: file too small")
		os.Exit(1)
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != 0x07230203 {
		fmt.Fprintf(os.Stderr, "Error: invalid SPIR-V magic: 0x%08X\n", magic)
		os.Exit(1)
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	bound := binary.LittleEndian.Uint32(data[12:16])

	fmt.Printf("; SPIR-V\n")
	fmt.Printf("; Version: %d.%d\n", (version>>16)&0xFF, (version>>8)&0xFF)
	fmt.Printf("; Generator: 0x%08X\n", binary.LittleEndian.Uint32(data[8:12]))
	fmt.Printf("; Bound: %d\n", bound)
	fmt.Printf("; Schema: %d\n", binary.LittleEndian.Uint32(data[16:20]))
	fmt.Println()

	offset := 20
	for offset < len(data) {
		if offset+4 > len(data) {
			break
		}
		word := binary.LittleEndian.Uint32(data[offset:])
		opcode := uint16(word & 0xFFFF)
		wordCount := int(word >> 16)

		if wordCount == 0 || offset+wordCount*4 > len(data) {
			fmt.Fprintf(os.Stderr, "; ERROR: invalid word count %d at offset 0x%X\n", wordCount, offset)
			break
		}

		ops := make([]uint32, wordCount-1)
		for i := range ops {
			ops[i] = binary.LittleEndian.Uint32(data[offset+4+i*4:])
		}

		name := opcodeNames[opcode]
		if name == "" {
			name = fmt.Sprintf("Op%d", opcode)
		}

		printInstruction(name, opcode, ops, data, offset)
		offset += wordCount * 4
	}
}

func id(n uint32) string {
	return fmt.Sprintf("%%%d", n)
}

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", v)
}

func printInstruction(name string, opcode uint16, ops []uint32, data []byte, offset int) {
	switch opcode {
	case 17: // OpCapability
		fmt.Printf("               %s %s\n", name, lookup(capabilities, ops[0]))

	case 11: // OpExtInstImport
		str := readString(data, offset+8, len(ops)-1)
		fmt.Printf("  %s = %s \"%s\"\n", id(ops[0]), name, str)

	case 14: // OpMemoryModel
		fmt.Printf("               %s %s %s\n", name, lookup(addressingModels, ops[0]), lookup(memoryModels, ops[1]))

	case 15: // OpEntryPoint
		model := lookup(executionModels, ops[0])
		str := readString(data, offset+12, len(ops)-2)
		strWords := (len(str) + 4) / 4
		fmt.Printf("               %s %s %s \"%s\"", name, model, id(ops[1]), str)
		for i := 2 + strWords; i < len(ops); i++ {
			fmt.Printf(" %s", id(ops[i]))
		}
		fmt.Println()

	case 16: // OpExecutionMode
		fmt.Printf("               %s %s %s", name, id(ops[0]), lookup(executionModes, ops[1]))
		for i := 2; i < len(ops); i++ {
			fmt.Printf(" %d", ops[i])
		}
		fmt.Println()

	case 71: // OpDecorate
		fmt.Printf("               %s %s %s", name, id(ops[0]), lookup(decorations, ops[1]))
		for i := 2; i < len(ops); i++ {
			fmt.Printf(" %d", ops[i])
		}
		fmt.Println()

	case 19, 20: // OpTypeVoid, OpTypeBool
		fmt.Printf("  %s = %s\n", id(ops[0]), name)

	case 22: // OpTypeFloat
		fmt.Printf("  %s = %s %d\n", id(ops[0]), name, ops[1])

	case 23: // OpTypeVector
		fmt.Printf("  %s = %s %s %d\n", id(ops[0]), name, id(ops[1]), ops[2])

	case 32: // OpTypePointer
		fmt.Printf("  %s = %s %s %s\n", id(ops[0]), name, lookup(storageClasses, ops[1]), id(ops[2]))

	case 33: // OpTypeFunction
		fmt.Printf("  %s = %s %s", id(ops[0]), name, id(ops[1]))
		for i := 2; i < len(ops); i++ {
			fmt.Printf(" %s", id(ops[i]))
		}
		fmt.Println()

	case 41, 42: // OpConstantTrue, OpConstantFalse
		fmt.Printf("  %s = %s %s\n", id(ops[1]), name, id(ops[0]))

	case 43: // OpConstant
		fmt.Printf("  %s = %s %s %g\n", id(ops[1]), name, id(ops[0]), math.Float32frombits(ops[2]))

	case 54: // OpFunction
		fmt.Printf("  %s = %s %s None %s\n", id(ops[1]), name, id(ops[0]), id(ops[3]))

	case 56: // OpFunctionEnd
		fmt.Printf("               %s\n", name)

	case 59: // OpVariable
		fmt.Printf("  %s = %s %s %s\n", id(ops[1]), name, id(ops[0]), lookup(storageClasses, ops[2]))

	case 62: // OpStore
		fmt.Printf("               %s %s %s\n", name, id(ops[0]), id(ops[1]))

	case 80: // OpCompositeConstruct
		fmt.Printf("  %s = %s %s", id(ops[1]), name, id(ops[0]))
		for i := 2; i < len(ops); i++ {
			fmt.Printf(" %s", id(ops[i]))
		}
		fmt.Println()

	case 127: // OpFNegate
		fmt.Printf("  %s = %s %s %s\n", id(ops[1]), name, id(ops[0]), id(ops[2]))

	case 129, 131, 133, 136, 170, 180: // OpFAdd, OpFSub, OpFMul, OpFDiv, OpIEqual, OpFOrdEqual
		fmt.Printf("  %s = %s %s %s %s\n", id(ops[1]), name, id(ops[0]), id(ops[2]), id(ops[3]))

	case 245: // OpPhi
		fmt.Printf("  %s = %s %s", id(ops[1]), name, id(ops[0]))
		for i := 2; i < len(ops); i += 2 {
			fmt.Printf(" %s %s", id(ops[i]), id(ops[i+1]))
		}
		fmt.Println()

	case 246: // OpLoopMerge
		fmt.Printf("               %s %s %s None\n", name, id(ops[0]), id(ops[1]))

	case 247: // OpSelectionMerge
		fmt.Printf("               %s %s None\n", name, id(ops[0]))

	case 248: // OpLabel
		fmt.Printf("  %s = %s\n", id(ops[0]), name)

	case 249: // OpBranch
		fmt.Printf("               %s %s\n", name, id(ops[0]))

	case 250: // OpBranchConditional
		fmt.Printf("               %s %s %s %s\n", name, id(ops[0]), id(ops[1]), id(ops[2]))

	case 252, 253: // OpKill, OpReturn
		fmt.Printf("               %s\n", name)

	default:
		printGenericInstruction(name, ops)
	}
}

func printGenericInstruction(name string, ops []uint32) {
	fmt.Printf("               %s", name)
	for _, op := range ops {
		fmt.Printf(" %s", id(op))
	}
	fmt.Println()
}

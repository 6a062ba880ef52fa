package spirv

import (
	"encoding/binary"
	"math"
)

// Instruction represents a single encoded SPIR-V instruction.
type Instruction struct {
	Opcode OpCode
	Words  []uint32 // result type ID, result ID, operands, in SPIR-V operand order
}

// InstructionBuilder accumulates the operand words of one instruction before
// it is tagged with an opcode and a word count.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates a new instruction builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{words: make([]uint32, 0, 8)}
}

// AddWord appends a raw operand word.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddString appends a null-terminated UTF-8 string, packed little-endian
// four bytes per word and padded so a terminating zero byte always falls
// inside the encoded words, even when len(s) is already a multiple of 4.
func (b *InstructionBuilder) AddString(s string) {
	bytes := []byte(s)
	bytes = append(bytes, 0)
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}
	for i := 0; i < len(bytes); i += 4 {
		word := uint32(bytes[i]) |
			uint32(bytes[i+1])<<8 |
			uint32(bytes[i+2])<<16 |
			uint32(bytes[i+3])<<24
		b.words = append(b.words, word)
	}
}

// Build tags the accumulated words with an opcode, producing an Instruction.
func (b *InstructionBuilder) Build(opcode OpCode) Instruction {
	return Instruction{Opcode: opcode, Words: b.words}
}

// Encode returns the instruction as a word stream: the word-count-tagged
// opcode word followed by its operand words.
func (i Instruction) Encode() []uint32 {
	wordCount := uint32(len(i.Words) + 1)
	result := make([]uint32, 0, wordCount)
	result = append(result, (wordCount<<16)|uint32(i.Opcode))
	result = append(result, i.Words...)
	return result
}

// FunctionControl hints the optimizer about a function's calling behavior;
// this compiler never has an opinion and always emits None.
type FunctionControl uint32

const FunctionControlNone FunctionControl = 0

// ModuleBuilder assembles a complete SPIR-V module out of the handful of
// ordered sections this compiler ever produces: a capability/import/memory
// model/entry-point/execution-mode preamble, an annotation section, a
// combined type-and-constant-and-global-variable section, and a single
// function body. It intentionally omits the extension, debug-string, and
// separate global-variable sections a general-purpose SPIR-V writer would
// carry, since this compiler's surface language never produces them.
type ModuleBuilder struct {
	version Version

	capabilities   []Instruction
	extInstImports []Instruction
	memoryModel    *Instruction
	entryPoints    []Instruction
	executionModes []Instruction
	annotations    []Instruction
	types          []Instruction // OpType*, OpConstant*, OpVariable (output vars)
	functions      []Instruction // OpFunction .. OpFunctionEnd

	nextID uint32
}

// NewModuleBuilder creates a module builder targeting the given SPIR-V version.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{version: version, nextID: 1}
}

// AllocID reserves and returns the next SPIR-V id without emitting an instruction.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// Bound returns id_counter + 1, the value the SPIR-V header's bound field must carry.
func (b *ModuleBuilder) Bound() uint32 {
	return b.nextID
}

func (b *ModuleBuilder) AddCapability(c Capability) {
	ib := NewInstructionBuilder()
	ib.AddWord(uint32(c))
	b.capabilities = append(b.capabilities, ib.Build(OpCapability))
}

// AddExtInstImport imports an extended-instruction set under a
// pre-allocated id (see the note above AddTypeVoid).
func (b *ModuleBuilder) AddExtInstImport(id uint32, name string) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	ib.AddString(name)
	b.extInstImports = append(b.extInstImports, ib.Build(OpExtInstImport))
}

func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	ib := NewInstructionBuilder()
	ib.AddWord(uint32(addressing))
	ib.AddWord(uint32(memory))
	inst := ib.Build(OpMemoryModel)
	b.memoryModel = &inst
}

func (b *ModuleBuilder) AddEntryPoint(model ExecutionModel, funcID uint32, name string, interfaces []uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(uint32(model))
	ib.AddWord(funcID)
	ib.AddString(name)
	for _, id := range interfaces {
		ib.AddWord(id)
	}
	b.entryPoints = append(b.entryPoints, ib.Build(OpEntryPoint))
}

func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(entryPoint)
	ib.AddWord(uint32(mode))
	for _, p := range params {
		ib.AddWord(p)
	}
	b.executionModes = append(b.executionModes, ib.Build(OpExecutionMode))
}

func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	ib.AddWord(uint32(decoration))
	for _, p := range params {
		ib.AddWord(p)
	}
	b.annotations = append(b.annotations, ib.Build(OpDecorate))
}

// The Add* type methods below take an explicit pre-allocated id rather than
// allocating one themselves: this compiler's codegen state reserves the
// entry-point/type/GLSL.std.450/boolean-constant ids up front and only
// materializes their defining instructions later, at finish time, so the
// id and the instruction that defines it are allocated at different
// points in the walk.

func (b *ModuleBuilder) AddTypeVoid(id uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	b.types = append(b.types, ib.Build(OpTypeVoid))
}

func (b *ModuleBuilder) AddTypeBool(id uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	b.types = append(b.types, ib.Build(OpTypeBool))
}

func (b *ModuleBuilder) AddTypeFloat(id, width uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	ib.AddWord(width)
	b.types = append(b.types, ib.Build(OpTypeFloat))
}

func (b *ModuleBuilder) AddTypeVector(id, componentType, count uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	ib.AddWord(componentType)
	ib.AddWord(count)
	b.types = append(b.types, ib.Build(OpTypeVector))
}

func (b *ModuleBuilder) AddTypePointer(id uint32, storageClass StorageClass, baseType uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	ib.AddWord(uint32(storageClass))
	ib.AddWord(baseType)
	b.types = append(b.types, ib.Build(OpTypePointer))
}

func (b *ModuleBuilder) AddTypeFunction(id, returnType uint32, paramTypes ...uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(id)
	ib.AddWord(returnType)
	for _, p := range paramTypes {
		ib.AddWord(p)
	}
	b.types = append(b.types, ib.Build(OpTypeFunction))
}

func (b *ModuleBuilder) AddConstantTrue(boolType, id uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(boolType)
	ib.AddWord(id)
	b.types = append(b.types, ib.Build(OpConstantTrue))
}

func (b *ModuleBuilder) AddConstantFalse(boolType, id uint32) {
	ib := NewInstructionBuilder()
	ib.AddWord(boolType)
	ib.AddWord(id)
	b.types = append(b.types, ib.Build(OpConstantFalse))
}

// AddConstantFloat32 emits OpConstant for a pre-allocated id with a 32-bit
// IEEE-754 value; this compiler narrows source doubles to float32 before
// the id/value pair reaches here.
func (b *ModuleBuilder) AddConstantFloat32(typeID, id uint32, value float32) {
	ib := NewInstructionBuilder()
	ib.AddWord(typeID)
	ib.AddWord(id)
	ib.AddWord(math.Float32bits(value))
	b.types = append(b.types, ib.Build(OpConstant))
}

// AddVariable emits OpVariable into the combined type/constant/global
// section.
func (b *ModuleBuilder) AddVariable(pointerType, id uint32, storageClass StorageClass) {
	ib := NewInstructionBuilder()
	ib.AddWord(pointerType)
	ib.AddWord(id)
	ib.AddWord(uint32(storageClass))
	b.types = append(b.types, ib.Build(OpVariable))
}

func (b *ModuleBuilder) AddFunction(id, returnType, funcType uint32, control FunctionControl) {
	ib := NewInstructionBuilder()
	ib.AddWord(returnType)
	ib.AddWord(id)
	ib.AddWord(uint32(control))
	ib.AddWord(funcType)
	b.functions = append(b.functions, ib.Build(OpFunction))
}

func (b *ModuleBuilder) AddFunctionBody(inst Instruction) {
	b.functions = append(b.functions, inst)
}

func (b *ModuleBuilder) AddFunctionEnd() {
	ib := NewInstructionBuilder()
	b.functions = append(b.functions, ib.Build(OpFunctionEnd))
}

// Build assembles the final module: header, annotations, type/constant
// section, then body. The header's bound is one more than the highest
// id allocated.
func (b *ModuleBuilder) Build() []byte {
	bound := b.Bound()

	var header []Instruction
	header = append(header, b.capabilities...)
	header = append(header, b.extInstImports...)
	if b.memoryModel != nil {
		header = append(header, *b.memoryModel)
	}
	header = append(header, b.entryPoints...)
	header = append(header, b.executionModes...)

	totalWords := 5
	totalWords += countWords(header)
	totalWords += countWords(b.annotations)
	totalWords += countWords(b.types)
	totalWords += countWords(b.functions)

	buffer := make([]byte, totalWords*4)
	offset := 0

	binary.LittleEndian.PutUint32(buffer[offset:], MagicNumber)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], versionToWord(b.version))
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], GeneratorID)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], bound)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], 0) // schema, always reserved zero
	offset += 4

	offset = writeInstructions(buffer, offset, header)
	offset = writeInstructions(buffer, offset, b.annotations)
	offset = writeInstructions(buffer, offset, b.types)
	_ = writeInstructions(buffer, offset, b.functions)

	return buffer
}

func countWords(instructions []Instruction) int {
	count := 0
	for _, inst := range instructions {
		count += len(inst.Encode())
	}
	return count
}

func writeInstructions(buffer []byte, offset int, instructions []Instruction) int {
	for _, inst := range instructions {
		offset = writeInstruction(buffer, offset, inst)
	}
	return offset
}

func writeInstruction(buffer []byte, offset int, inst Instruction) int {
	for _, word := range inst.Encode() {
		binary.LittleEndian.PutUint32(buffer[offset:], word)
		offset += 4
	}
	return offset
}

// versionToWord packs a SPIR-V version as 0x00MMmm00 (major, minor).
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}

// Package spirv provides the low-level SPIR-V word-encoding primitives this
// compiler's module assembler is built on: opcode and enum constants, and an
// Instruction/InstructionBuilder pair for assembling word-count-tagged
// instructions. It does not know anything about the surface language or the
// emitter's call-stack model — those live in the codegen package, which uses
// this package purely as a binary format layer.
package spirv

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Version1_3 is the only version this compiler targets.
var Version1_3 = Version{1, 3}

// SPIR-V magic number and constants.
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator
)

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes emitted or consumed by this compiler and its disassembler.
const (
	OpNop                OpCode = 0
	OpSource             OpCode = 3
	OpName               OpCode = 5
	OpMemberName         OpCode = 6
	OpExtInstImport      OpCode = 11
	OpExtInst            OpCode = 12
	OpMemoryModel        OpCode = 14
	OpEntryPoint         OpCode = 15
	OpExecutionMode      OpCode = 16
	OpCapability         OpCode = 17
	OpTypeVoid           OpCode = 19
	OpTypeBool           OpCode = 20
	OpTypeInt            OpCode = 21
	OpTypeFloat          OpCode = 22
	OpTypeVector         OpCode = 23
	OpTypeMatrix         OpCode = 24
	OpTypeArray          OpCode = 28
	OpTypeStruct         OpCode = 30
	OpTypePointer        OpCode = 32
	OpTypeFunction       OpCode = 33
	OpConstantTrue       OpCode = 41
	OpConstantFalse      OpCode = 42
	OpConstant           OpCode = 43
	OpConstantComposite  OpCode = 44
	OpFunction           OpCode = 54
	OpFunctionParameter  OpCode = 55
	OpFunctionEnd        OpCode = 56
	OpVariable           OpCode = 59
	OpLoad               OpCode = 61
	OpStore              OpCode = 62
	OpAccessChain        OpCode = 65
	OpDecorate           OpCode = 71
	OpMemberDecorate     OpCode = 72
	OpCompositeConstruct OpCode = 80
	OpFNegate            OpCode = 127
	OpFAdd               OpCode = 129
	OpFSub               OpCode = 131
	OpFMul               OpCode = 133
	OpFDiv               OpCode = 136
	OpSelect             OpCode = 169
	OpIEqual             OpCode = 170
	OpFOrdEqual          OpCode = 180
	OpVectorShuffle      OpCode = 79
	OpPhi                OpCode = 245
	OpLoopMerge          OpCode = 246
	OpSelectionMerge     OpCode = 247
	OpLabel              OpCode = 248
	OpBranch             OpCode = 249
	OpBranchConditional  OpCode = 250
	OpKill               OpCode = 252
	OpReturn             OpCode = 253
	OpReturnValue        OpCode = 254
)

// Capability represents a SPIR-V capability.
type Capability uint32

const (
	CapabilityShader Capability = 1
)

// AddressingModel selects how pointers are represented.
type AddressingModel uint32

const (
	AddressingModelLogical AddressingModel = 0
)

// MemoryModel selects the memory model the module assumes.
type MemoryModel uint32

const (
	MemoryModelGLSL450 MemoryModel = 1
)

// ExecutionModel names the shader stage of an entry point.
type ExecutionModel uint32

const (
	ExecutionModelFragment ExecutionModel = 4
)

// ExecutionMode refines how an entry point executes.
type ExecutionMode uint32

const (
	ExecutionModeOriginUpperLeft ExecutionMode = 7
)

// StorageClass names the address space of a pointer/variable.
type StorageClass uint32

const (
	StorageClassOutput StorageClass = 3
)

// Decoration represents a SPIR-V decoration.
type Decoration uint32

const (
	DecorationLocation Decoration = 30
)

// SelectionControl/LoopControl hint the optimizer; this compiler never has
// an opinion, so it always emits None.
type SelectionControl uint32
type LoopControl uint32

const (
	SelectionControlNone SelectionControl = 0
	LoopControlNone      LoopControl      = 0
)

// GLSLStd450ExtInstSet is the name of the extended-instruction set this
// compiler imports (unused by any built-in math form today, but the
// import is part of every module's required header regardless).
const GLSLStd450ExtInstSet = "GLSL.std.450"

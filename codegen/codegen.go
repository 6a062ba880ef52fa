// Package codegen is the heart of the compiler: the scoped definition
// store, the codegen state, the call-stack-based inliner/emitter that
// recognizes built-in forms and inlines user functions at the call site,
// and the module assembler that turns the accumulated state into a SPIR-V
// binary.
package codegen

import "github.com/lambdav/lambdav/spirv"

type pendingConstant struct {
	ID     uint32
	TypeID uint32
	Value  float32
}

type pendingOutput struct {
	ID       uint32
	Location int
	TypeID   uint32
}

// Codegen is the compiler's mutable code-generation state: a monotonic id
// counter (owned by the ModuleBuilder held in mb), the pre-reserved ids for
// the entry function, its type, the GLSL.std.450 import, the primitive
// types and the boolean constants, the pending constant/output lists, and
// the id of the currently open basic block. It is mutated exclusively by
// the emitter, in program order, with no locking.
type Codegen struct {
	mb *spirv.ModuleBuilder

	idMain     uint32
	idMainType uint32
	idGLSL     uint32

	tFloat uint32
	tVoid  uint32
	tVec4  uint32
	tBool  uint32

	idTrue  uint32
	idFalse uint32

	block uint32

	constants  []pendingConstant
	constCache map[float32]uint32

	outputs []pendingOutput
}

// New creates codegen state with every id the entry function needs
// pre-allocated up front, and opens the entry function's body with its
// first basic block, performing id reservation and emitting the entry
// OpFunction/OpLabel pair in one step before any surface-language
// expression has been walked.
func New() *Codegen {
	cg := &Codegen{
		mb:         spirv.NewModuleBuilder(spirv.Version1_3),
		constCache: make(map[float32]uint32),
	}

	cg.idMain = cg.mb.AllocID()
	cg.idMainType = cg.mb.AllocID()
	cg.idGLSL = cg.mb.AllocID()
	cg.tFloat = cg.mb.AllocID()
	cg.tVoid = cg.mb.AllocID()
	cg.tVec4 = cg.mb.AllocID()
	cg.tBool = cg.mb.AllocID()
	cg.idTrue = cg.mb.AllocID()
	cg.idFalse = cg.mb.AllocID()

	entry := cg.mb.AllocID()
	cg.mb.AddFunction(cg.idMain, cg.tVoid, cg.idMainType, spirv.FunctionControlNone)
	cg.emitLabel(entry)
	cg.block = entry

	return cg
}

// AllocID reserves the next SPIR-V id.
func (cg *Codegen) AllocID() uint32 {
	return cg.mb.AllocID()
}

// CurrentBlock returns the id of the currently open basic block.
func (cg *Codegen) CurrentBlock() uint32 {
	return cg.block
}

// SetBlock moves the "currently open basic block" pointer, recorded by
// every structured-control-flow lowering after it opens a new OpLabel.
func (cg *Codegen) SetBlock(id uint32) {
	cg.block = id
}

func (cg *Codegen) emitFunctionInstr(opcode spirv.OpCode, build func(*spirv.InstructionBuilder)) {
	ib := spirv.NewInstructionBuilder()
	build(ib)
	cg.mb.AddFunctionBody(ib.Build(opcode))
}

func (cg *Codegen) emitLabel(id uint32) {
	cg.emitFunctionInstr(spirv.OpLabel, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(id)
	})
}

// EmitLabel opens a new basic block and emits its OpLabel.
func (cg *Codegen) EmitLabel(id uint32) {
	cg.emitLabel(id)
}

// EmitBranch emits an unconditional OpBranch to target.
func (cg *Codegen) EmitBranch(target uint32) {
	cg.emitFunctionInstr(spirv.OpBranch, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(target)
	})
}

// EmitBranchConditional emits OpBranchConditional.
func (cg *Codegen) EmitBranchConditional(cond, trueLabel, falseLabel uint32) {
	cg.emitFunctionInstr(spirv.OpBranchConditional, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(cond)
		ib.AddWord(trueLabel)
		ib.AddWord(falseLabel)
	})
}

// EmitSelectionMerge emits OpSelectionMerge with None control.
func (cg *Codegen) EmitSelectionMerge(merge uint32) {
	cg.emitFunctionInstr(spirv.OpSelectionMerge, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(merge)
		ib.AddWord(uint32(spirv.SelectionControlNone))
	})
}

// EmitLoopMerge emits OpLoopMerge with None control.
func (cg *Codegen) EmitLoopMerge(merge, continueBlock uint32) {
	cg.emitFunctionInstr(spirv.OpLoopMerge, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(merge)
		ib.AddWord(continueBlock)
		ib.AddWord(uint32(spirv.LoopControlNone))
	})
}

// PhiEdge is one (value, predecessor-block) pair of an OpPhi instruction.
type PhiEdge struct {
	Value uint32
	From  uint32
}

// EmitPhi emits OpPhi with the given result id/type and incoming edges.
func (cg *Codegen) EmitPhi(resultID, typeID uint32, edges []PhiEdge) {
	cg.emitFunctionInstr(spirv.OpPhi, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(typeID)
		ib.AddWord(resultID)
		for _, e := range edges {
			ib.AddWord(e.Value)
			ib.AddWord(e.From)
		}
	})
}

// EmitBinary emits a binary op (OpFAdd/FSub/FMul/FDiv/FOrdEqual) with a
// freshly allocated result id and returns that id.
func (cg *Codegen) EmitBinary(opcode spirv.OpCode, typeID, lhs, rhs uint32) uint32 {
	result := cg.AllocID()
	cg.emitFunctionInstr(opcode, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(typeID)
		ib.AddWord(result)
		ib.AddWord(lhs)
		ib.AddWord(rhs)
	})
	return result
}

// EmitCompositeConstruct emits OpCompositeConstruct and returns the result id.
func (cg *Codegen) EmitCompositeConstruct(typeID uint32, constituents []uint32) uint32 {
	result := cg.AllocID()
	cg.emitFunctionInstr(spirv.OpCompositeConstruct, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(typeID)
		ib.AddWord(result)
		for _, c := range constituents {
			ib.AddWord(c)
		}
	})
	return result
}

// EmitStore emits OpStore.
func (cg *Codegen) EmitStore(pointer, value uint32) {
	cg.emitFunctionInstr(spirv.OpStore, func(ib *spirv.InstructionBuilder) {
		ib.AddWord(pointer)
		ib.AddWord(value)
	})
}

// Constant returns the id of the OpConstant for value (of the float type),
// allocating and staging a new one only the first time this exact value is
// requested.
func (cg *Codegen) Constant(value float32) uint32 {
	if id, ok := cg.constCache[value]; ok {
		return id
	}
	id := cg.AllocID()
	cg.constCache[value] = id
	cg.constants = append(cg.constants, pendingConstant{ID: id, TypeID: cg.tFloat, Value: value})
	return id
}

// DeclareOutput stages a fragment output variable, returning its id. The
// variable's OpTypePointer/OpVariable/OpDecorate are materialized at
// finish time.
func (cg *Codegen) DeclareOutput(location int, typeID uint32) uint32 {
	id := cg.AllocID()
	cg.outputs = append(cg.outputs, pendingOutput{ID: id, Location: location, TypeID: typeID})
	return id
}

// FloatType, VoidType, Vec4Type and BoolType return the pre-reserved
// primitive type ids.
func (cg *Codegen) FloatType() uint32 { return cg.tFloat }
func (cg *Codegen) VoidType() uint32  { return cg.tVoid }
func (cg *Codegen) Vec4Type() uint32  { return cg.tVec4 }
func (cg *Codegen) BoolType() uint32  { return cg.tBool }
func (cg *Codegen) TrueID() uint32    { return cg.idTrue }
func (cg *Codegen) FalseID() uint32   { return cg.idFalse }

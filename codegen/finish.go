package codegen

import "github.com/lambdav/lambdav/spirv"

// Finish closes the entry-point function and assembles the complete
// module: header preamble, annotations, the combined type/constant/global
// section, then the function body, in that order. It must be called
// exactly once, after every top-level expression has been walked.
func (cg *Codegen) Finish() []byte {
	cg.emitFunctionInstr(spirv.OpReturn, func(*spirv.InstructionBuilder) {})
	cg.mb.AddFunctionEnd()

	cg.mb.AddCapability(spirv.CapabilityShader)
	cg.mb.AddExtInstImport(cg.idGLSL, spirv.GLSLStd450ExtInstSet)
	cg.mb.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	outputIDs := make([]uint32, len(cg.outputs))
	for i, o := range cg.outputs {
		outputIDs[i] = o.ID
	}
	cg.mb.AddEntryPoint(spirv.ExecutionModelFragment, cg.idMain, "main", outputIDs)
	cg.mb.AddExecutionMode(cg.idMain, spirv.ExecutionModeOriginUpperLeft)

	cg.mb.AddTypeFloat(cg.tFloat, 32)
	cg.mb.AddTypeVoid(cg.tVoid)
	cg.mb.AddTypeVector(cg.tVec4, cg.tFloat, 4)
	cg.mb.AddTypeBool(cg.tBool)
	cg.mb.AddTypeFunction(cg.idMainType, cg.tVoid)
	cg.mb.AddConstantTrue(cg.tBool, cg.idTrue)
	cg.mb.AddConstantFalse(cg.tBool, cg.idFalse)

	for _, c := range cg.constants {
		cg.mb.AddConstantFloat32(c.TypeID, c.ID, c.Value)
	}

	for _, o := range cg.outputs {
		ptrType := cg.AllocID()
		cg.mb.AddTypePointer(ptrType, spirv.StorageClassOutput, o.TypeID)
		cg.mb.AddVariable(ptrType, o.ID, spirv.StorageClassOutput)
	}

	for _, o := range cg.outputs {
		cg.mb.AddDecorate(o.ID, spirv.DecorationLocation, uint32(o.Location))
	}

	return cg.mb.Build()
}

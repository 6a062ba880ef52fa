// Package spirv provides the binary-format layer of the compiler: opcode and
// enum constants, and a ModuleBuilder for assembling a word-count-tagged
// SPIR-V module out of the handful of ordered sections this compiler's
// fragment-shader output ever needs.
//
// # Binary Writer
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//	floatType := builder.AllocID()
//	builder.AddTypeFloat(floatType, 32)
//	vec4Type := builder.AllocID()
//	builder.AddTypeVector(vec4Type, floatType, 4)
//	binary := builder.Build()
//
// # SPIR-V structure emitted here
//
//   - Header (magic, version, generator, bound, schema)
//   - Capability / ExtInstImport / MemoryModel / EntryPoint / ExecutionMode
//   - Annotations (Location decorations on output variables)
//   - Types, constants, and output variables
//   - A single function body (the fragment shader's "main")
//
// This package knows nothing about the surface language; the codegen
// package drives it one instruction at a time while walking the AST.
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv

package graphics

import (
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	vk "github.com/vulkan-go/vulkan"
)

// LoadShaderModule reads a SPIR-V binary from path and creates a shader
// module from it, grounded on the teacher's CoreShader.LoadShaderModule.
func LoadShaderModule(device vk.Device, path string) (vk.ShaderModule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vk.NullShaderModule, fmt.Errorf("graphics: read shader %q: %w", path, err)
	}
	return NewShaderModule(device, data)
}

// NewShaderModule creates a shader module from raw SPIR-V bytes.
func NewShaderModule(device vk.Device, spirv []byte) (vk.ShaderModule, error) {
	code, err := spirvWords(spirv)
	if err != nil {
		return vk.NullShaderModule, err
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(spirv)),
		PCode:    code,
	}, nil, &module)
	if err := NewError(ret); err != nil {
		return vk.NullShaderModule, fmt.Errorf("graphics: create shader module: %w", err)
	}
	return module, nil
}

// spirvWords reinterprets a SPIR-V byte stream (little-endian per the spec)
// as the uint32 words vk.ShaderModuleCreateInfo.PCode expects.
func spirvWords(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("graphics: SPIR-V byte length %d not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4 : i*4+4])
	}
	return words, nil
}

// SPIR-V opcodes and enumerants this reflector walks. Only the subset
// needed to find Input-storage-class interface variables and their scalar/
// vector numeric types.
const (
	spirvMagic = 0x07230203

	opName           = 5
	opMemberName     = 6
	opEntryPoint     = 15
	opTypeInt        = 21
	opTypeFloat      = 22
	opTypeVector     = 23
	opTypePointer    = 32
	opVariable       = 59
	opDecorate       = 71

	decorationBuiltIn = 11
	decorationLocation = 30

	storageClassInput = 1
)

// spirvType describes a numeric scalar/vector type an input variable can
// have, enough to pick a vk.Format and compute its size in bytes.
type spirvType struct {
	componentBits uint32
	componentCount uint32
	signedInt      bool
	isFloat        bool
}

// reflectVertexInput walks a vertex shader's SPIR-V module and derives its
// vertex input bindings/attributes from the entry point's Input-storage-class
// interface variables, skipping built-ins and assigning offsets as a running
// sum of format sizes in ascending Location order, per distilled spec §4.3.
// Grounded on shader.go's existing word-stream reader; no teacher analogue
// (the teacher hardcodes "no vertex input").
func reflectVertexInput(spirv []byte) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription, error) {
	words, err := spirvWords(spirv)
	if err != nil {
		return nil, nil, err
	}
	if len(words) < 5 || words[0] != spirvMagic {
		return nil, nil, fmt.Errorf("graphics: not a SPIR-V module")
	}

	pointerPointee := make(map[uint32]uint32) // pointer type id -> pointee type id, Input storage class only
	types := make(map[uint32]spirvType)
	locations := make(map[uint32]uint32) // variable id -> Location
	builtins := make(map[uint32]bool)    // variable id -> has BuiltIn decoration
	var entryInterface []uint32
	variableType := make(map[uint32]uint32) // variable id -> pointer type id

	i := 5
	for i < len(words) {
		instrWord := words[i]
		wordCount := instrWord >> 16
		opcode := instrWord & 0xFFFF
		if wordCount == 0 || i+int(wordCount) > len(words) {
			break
		}
		operands := words[i+1 : i+int(wordCount)]

		switch opcode {
		case opEntryPoint:
			// ExecutionModel, EntryPoint id, Name (variable-length string),
			// then the interface id list to the end of the instruction.
			if len(operands) >= 2 {
				nameStart := 2
				nameWords := stringWordCount(operands[nameStart:])
				ids := operands[nameStart+nameWords:]
				entryInterface = append(entryInterface, ids...)
			}
		case opTypeInt:
			if len(operands) >= 3 {
				types[operands[0]] = spirvType{componentBits: operands[1], componentCount: 1, signedInt: operands[2] != 0}
			}
		case opTypeFloat:
			if len(operands) >= 2 {
				types[operands[0]] = spirvType{componentBits: operands[1], componentCount: 1, isFloat: true}
			}
		case opTypeVector:
			if len(operands) >= 3 {
				if base, ok := types[operands[1]]; ok {
					types[operands[0]] = spirvType{componentBits: base.componentBits, componentCount: operands[2], signedInt: base.signedInt, isFloat: base.isFloat}
				}
			}
		case opTypePointer:
			if len(operands) >= 3 && operands[1] == storageClassInput {
				pointerPointee[operands[0]] = operands[2]
			}
		case opVariable:
			if len(operands) >= 3 && operands[2] == storageClassInput {
				variableType[operands[1]] = operands[0]
			}
		case opDecorate:
			if len(operands) >= 2 {
				target := operands[0]
				decoration := operands[1]
				switch decoration {
				case decorationLocation:
					if len(operands) >= 3 {
						locations[target] = operands[2]
					}
				case decorationBuiltIn:
					builtins[target] = true
				}
			}
		case opName, opMemberName:
			// not needed for layout derivation.
		}
		i += int(wordCount)
	}

	candidates := entryInterface
	if len(candidates) == 0 {
		for id := range variableType {
			candidates = append(candidates, id)
		}
	}

	type inputVar struct {
		location uint32
		typ      spirvType
	}
	var inputs []inputVar
	for _, id := range candidates {
		if builtins[id] {
			continue
		}
		ptrType, ok := variableType[id]
		if !ok {
			continue
		}
		pointee, ok := pointerPointee[ptrType]
		if !ok {
			continue
		}
		typ, ok := types[pointee]
		if !ok {
			continue
		}
		loc, ok := locations[id]
		if !ok {
			continue
		}
		inputs = append(inputs, inputVar{location: loc, typ: typ})
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].location < inputs[j].location })

	attributes := make([]vk.VertexInputAttributeDescription, 0, len(inputs))
	var offset uint32
	for _, in := range inputs {
		format, size, err := vertexFormat(in.typ)
		if err != nil {
			return nil, nil, err
		}
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: in.location,
			Binding:  0,
			Format:   format,
			Offset:   offset,
		})
		offset += size
	}

	if len(attributes) == 0 {
		return nil, nil, nil
	}
	bindings := []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    offset,
		InputRate: vk.VertexInputRateVertex,
	}}
	return bindings, attributes, nil
}

// stringWordCount returns how many words a NUL-terminated literal string
// starting at words[0] occupies.
func stringWordCount(words []uint32) int {
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			if byte(w>>shift) == 0 {
				return i + 1
			}
		}
	}
	return len(words)
}

// vertexFormat maps a scalar/vector numeric SPIR-V type to the matching
// 32-bit-component vk.Format and its size in bytes.
func vertexFormat(t spirvType) (vk.Format, uint32, error) {
	if t.componentBits != 32 {
		return 0, 0, fmt.Errorf("graphics: unsupported vertex input component width %d", t.componentBits)
	}
	size := t.componentCount * 4
	switch {
	case t.isFloat:
		switch t.componentCount {
		case 1:
			return vk.FormatR32Sfloat, size, nil
		case 2:
			return vk.FormatR32g32Sfloat, size, nil
		case 3:
			return vk.FormatR32g32b32Sfloat, size, nil
		case 4:
			return vk.FormatR32g32b32a32Sfloat, size, nil
		}
	case t.signedInt:
		switch t.componentCount {
		case 1:
			return vk.FormatR32Sint, size, nil
		case 2:
			return vk.FormatR32g32Sint, size, nil
		case 3:
			return vk.FormatR32g32b32Sint, size, nil
		case 4:
			return vk.FormatR32g32b32a32Sint, size, nil
		}
	default:
		switch t.componentCount {
		case 1:
			return vk.FormatR32Uint, size, nil
		case 2:
			return vk.FormatR32g32Uint, size, nil
		case 3:
			return vk.FormatR32g32b32Uint, size, nil
		case 4:
			return vk.FormatR32g32b32a32Uint, size, nil
		}
	}
	return 0, 0, fmt.Errorf("graphics: unsupported vertex input component count %d", t.componentCount)
}

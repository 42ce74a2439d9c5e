// Package shader carries the step kernel as a WGSL compute shader for hosts
// that dispatch on a GPU themselves.
package shader

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/naga"
)

// WorkgroupSize is the x dimension of the shader's workgroup.
const WorkgroupSize = 256

//go:embed grayscott.wgsl
var source string

// Source returns the WGSL source of the step kernel.
func Source() string { return source }

// Uniforms mirrors the Uniforms block in the shader, 32 bytes.
type Uniforms struct {
	Width, Height uint32
	DiffusionU    float32
	DiffusionV    float32
	Feed          float32
	Kill          float32
	DT            float32
	_             float32
}

// Bytes encodes u in the little-endian layout the uniform buffer expects.
func (u Uniforms) Bytes() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:], u.Width)
	binary.LittleEndian.PutUint32(buf[4:], u.Height)
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(u.DiffusionU))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(u.DiffusionV))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(u.Feed))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(u.Kill))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(u.DT))
	return buf
}

// Workgroups returns the dispatch size covering cells invocations.
func Workgroups(cells int) uint32 {
	return uint32((cells + WorkgroupSize - 1) / WorkgroupSize)
}

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

var errShortModule = errors.New("shader: SPIR-V output is not a whole number of words")

// CompileSPIRV compiles the kernel to SPIR-V bytes.
func CompileSPIRV() ([]byte, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("shader: compile: %w", err)
	}
	if len(spirv)%4 != 0 {
		return nil, errShortModule
	}
	return spirv, nil
}

// Compile compiles the kernel to SPIR-V words.
func Compile() ([]uint32, error) {
	spirv, err := CompileSPIRV()
	if err != nil {
		return nil, err
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}

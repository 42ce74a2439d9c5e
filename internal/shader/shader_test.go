package shader

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func TestSourceMatchesStencil(t *testing.T) {
	src := Source()
	for _, want := range []string{
		"0.20 * (n + s + e + w)",
		"0.05 * (ne + nw + se + sw)",
		"1.00 * c",
		"@workgroup_size(256, 1, 1)",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("shader source lacks %q", want)
		}
	}
}

func TestUniformLayout(t *testing.T) {
	b := Uniforms{Width: 16, Height: 9, Feed: 0.029, DT: 1}.Bytes()
	if len(b) != 32 {
		t.Fatalf("uniform block is %d bytes, want 32", len(b))
	}
	if binary.LittleEndian.Uint32(b[4:]) != 9 {
		t.Fatal("height not at offset 4")
	}
	if math.Float32frombits(binary.LittleEndian.Uint32(b[16:])) != 0.029 {
		t.Fatal("feed not at offset 16")
	}
	if math.Float32frombits(binary.LittleEndian.Uint32(b[24:])) != 1 {
		t.Fatal("dt not at offset 24")
	}
}

func TestWorkgroups(t *testing.T) {
	cases := map[int]uint32{1: 1, 256: 1, 257: 2, 128 * 128: 64}
	for cells, want := range cases {
		if got := Workgroups(cells); got != want {
			t.Fatalf("Workgroups(%d) = %d, want %d", cells, got, want)
		}
	}
}

func TestCompileProducesSPIRV(t *testing.T) {
	words, err := Compile()
	if err != nil {
		t.Fatal(err)
	}
	if len(words) < 5 || words[0] != SPIRVMagic {
		t.Fatalf("not a SPIR-V module: %d words", len(words))
	}
}

package bhp

import (
	"bytes"

	"github.com/icza/bitio"
)

// BitsFromBytes expands data into the canonical bit sequence consumed by
// Hash and Commit: bytes in order, most significant bit first within each
// byte. Callers serializing domain objects to bytes can feed the result
// directly to a size-classed instance.
func BitsFromBytes(data []byte) []bool {
	r := bitio.NewReader(bytes.NewReader(data))
	bits := make([]bool, 0, len(data)*8)
	for {
		b, err := r.ReadBool()
		if err != nil {
			break
		}
		bits = append(bits, b)
	}
	return bits
}

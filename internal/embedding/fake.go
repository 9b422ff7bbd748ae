package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// Fake is a deterministic in-process embedder for tests and dry runs. Texts
// sharing tokens produce nearby vectors; identical texts produce identical
// vectors.
type Fake struct {
	// Dim is the vector length (default 32).
	Dim int
	// Err, when set, is returned from every call.
	Err error
	// SoftFail, when true, returns nil vectors with nil errors.
	SoftFail bool

	// Calls counts invocations, for assertions.
	Calls int
}

// EmbedText hashes whitespace-split tokens into a fixed-length vector and
// L2-normalizes it.
func (f *Fake) EmbedText(_ context.Context, text string, _ Mode) ([]float32, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	if f.SoftFail || text == "" {
		return nil, nil
	}

	dim := f.Dim
	if dim <= 0 {
		dim = 32
	}

	vec := make([]float32, dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[int(h.Sum32())%dim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return nil, nil
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

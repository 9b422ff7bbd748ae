package embedding

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_Deterministic(t *testing.T) {
	fake := &Fake{}
	ctx := context.Background()

	a, err := fake.EmbedText(ctx, "built payment pipelines in Go", ModeDocument)
	require.NoError(t, err)
	b, err := fake.EmbedText(ctx, "built payment pipelines in Go", ModeDocument)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 2, fake.Calls)
}

func TestFake_Normalized(t *testing.T) {
	fake := &Fake{Dim: 16}
	vec, err := fake.EmbedText(context.Background(), "alpha beta gamma", ModeDocument)
	require.NoError(t, err)
	require.Len(t, vec, 16)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestFake_SoftFail(t *testing.T) {
	fake := &Fake{SoftFail: true}
	vec, err := fake.EmbedText(context.Background(), "anything", ModeQuery)
	assert.NoError(t, err)
	assert.Nil(t, vec)
}

func TestFake_EmptyText(t *testing.T) {
	fake := &Fake{}
	vec, err := fake.EmbedText(context.Background(), "", ModeDocument)
	assert.NoError(t, err)
	assert.Nil(t, vec)
}

func TestFake_Err(t *testing.T) {
	boom := errors.New("quota exceeded")
	fake := &Fake{Err: boom}
	_, err := fake.EmbedText(context.Background(), "anything", ModeDocument)
	assert.ErrorIs(t, err, boom)
}

package fingerprint

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_Deterministic(t *testing.T) {
	a := Digest("김민지|1992-04-03", "svc-premium", "v7")
	b := Digest("김민지|1992-04-03", "svc-premium", "v7")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestDigest_SensitiveToEveryInput(t *testing.T) {
	base := Digest("customer", "service", "v1")

	assert.NotEqual(t, base, Digest("customer2", "service", "v1"))
	assert.NotEqual(t, base, Digest("customer", "service2", "v1"))
	assert.NotEqual(t, base, Digest("customer", "service", "v2"))
}

func TestDigest_FieldBoundariesAreUnambiguous(t *testing.T) {
	// Concatenation must not let adjacent fields bleed into each other.
	assert.NotEqual(t, Digest("ab", "c", "v1"), Digest("a", "bc", "v1"))
}

func TestMemoryStore_MarkThenCheck(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	exists, err := store.IsGenerated(ctx, "d1")
	require.NoError(t, err)
	assert.False(t, exists)

	claimed, err := store.MarkGenerated(ctx, "d1", "report.pdf")
	require.NoError(t, err)
	assert.True(t, claimed)

	exists, err = store.IsGenerated(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, exists)

	ref, ok := store.ArtifactRef("d1")
	assert.True(t, ok)
	assert.Equal(t, "report.pdf", ref)
}

func TestMemoryStore_SecondMarkLoses(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	claimed, err := store.MarkGenerated(ctx, "d1", "first.pdf")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.MarkGenerated(ctx, "d1", "second.pdf")
	require.NoError(t, err)
	assert.False(t, claimed)

	ref, _ := store.ArtifactRef("d1")
	assert.Equal(t, "first.pdf", ref)
}

func TestMemoryStore_ConcurrentMarkHasSingleWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	digest := Digest("racer", "svc", "v1")

	const workers = 16
	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := store.MarkGenerated(ctx, digest, "artifact.pdf")
			assert.NoError(t, err)
			if claimed {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

package interview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
	"github.com/johnquangdev/interview-coach/internal/infrastructure/cache"
)

func TestContextStore_StageAndResolve(t *testing.T) {
	mem := cache.NewMemoryStore()
	defer mem.Close()
	store := NewContextStore(mem, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Stage(ctx, entities.SessionContext{
		InterviewID:    "iv-1",
		CandidateEmail: " Ada@Example.com",
		CandidateName:  "Ada",
		ResumePath:     "ada/cv.pdf",
	}))

	got, err := store.Resolve(ctx, entities.SessionContext{InterviewID: "iv-1", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.CandidateEmail)
	assert.Equal(t, "Ada", got.CandidateName)
	assert.Equal(t, "ada/cv.pdf", got.ResumePath)
	assert.Equal(t, "en", got.Language)

	got, err = store.Resolve(ctx, entities.SessionContext{InterviewID: "iv-1", CandidateName: "Ada L."})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", got.CandidateName, "caller values win over staged ones")

	require.NoError(t, store.Discard(ctx, "iv-1"))
	_, ok, err := store.Load(ctx, "iv-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestContextStore_StageRequiresInterviewID(t *testing.T) {
	store := NewContextStore(cache.NewMemoryStore(), time.Minute)
	assert.Error(t, store.Stage(context.Background(), entities.SessionContext{CandidateEmail: "a@b.c"}))
}

func TestContextStore_ResolveWithoutStaging(t *testing.T) {
	store := NewContextStore(cache.NewMemoryStore(), time.Minute)

	partial := entities.SessionContext{CandidateEmail: "ada@example.com"}
	got, err := store.Resolve(context.Background(), partial)
	require.NoError(t, err)
	assert.Equal(t, partial, got)
}

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/email-classifier/internal/core"
)

func begin(s core.SubmissionState) core.SubmissionState {
	s, _ = s.Begin()
	return s
}

// testStoreContract exercises the behavior every SessionStore shares
func testStoreContract(t *testing.T, store core.SessionStore) {
	ctx := context.Background()

	t.Run("missing session", func(t *testing.T) {
		_, err := store.Load(ctx, "missing")
		assert.ErrorIs(t, err, core.ErrSessionNotFound)
	})

	t.Run("update starts from a fresh state", func(t *testing.T) {
		state, err := store.Update(ctx, "fresh", begin)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), state.Seq)
		assert.Equal(t, core.ModeText, state.Mode)
		assert.True(t, state.Loading)
	})

	t.Run("round trip", func(t *testing.T) {
		result := core.NewClassificationResult(&core.ClassificationResponse{
			Category:   core.CategoryProductive,
			Confidence: 0.93,
			MethodUsed: core.MethodAI,
			Details: core.Details{
				ComparativeAnalysis: &core.ComparativeAnalysis{
					AI:        &core.AIResult{Classification: core.CategoryProductive, Confidence: 0.93},
					Agreement: core.Agreement{ChosenMethod: core.MethodAI},
				},
			},
		}, "Please approve the budget", time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))

		_, err := store.Update(ctx, "round-trip", func(s core.SubmissionState) core.SubmissionState {
			s, seq := s.Begin()
			s, _ = s.Resolve(seq, result)
			return s
		})
		require.NoError(t, err)

		loaded, err := store.Load(ctx, "round-trip")
		require.NoError(t, err)
		require.NotNil(t, loaded.Result)
		assert.Equal(t, core.CategoryProductive, loaded.Result.Category)
		assert.Equal(t, "Please approve the budget", loaded.Result.InputText)
		assert.True(t, result.Timestamp.Equal(loaded.Result.Timestamp))
		require.NotNil(t, loaded.Result.Details.ComparativeAnalysis)
		assert.Equal(t, core.MethodAI, loaded.Result.Details.ComparativeAnalysis.Agreement.ChosenMethod)
		assert.False(t, loaded.Loading)
	})

	t.Run("delete", func(t *testing.T) {
		_, err := store.Update(ctx, "doomed", begin)
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, "doomed"))

		_, err = store.Load(ctx, "doomed")
		assert.ErrorIs(t, err, core.ErrSessionNotFound)
	})

	t.Run("concurrent updates are atomic", func(t *testing.T) {
		const workers = 10
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, "contended", begin)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		state, err := store.Load(ctx, "contended")
		require.NoError(t, err)
		assert.Equal(t, uint64(workers), state.Seq)
	})
}

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdempotencyStatus_Valid(t *testing.T) {
	for _, s := range []IdempotencyStatus{IdempotencyStatusProcessing, IdempotencyStatusDone, IdempotencyStatusFailed} {
		require.True(t, s.Valid(), s)
	}
	require.False(t, IdempotencyStatus("").Valid())
	require.False(t, IdempotencyStatus("replayed").Valid())
}

func TestIdempotencyErrors_NotClassifiedAsStoreErrors(t *testing.T) {
	wrapped := fmt.Errorf("place order: %w", ErrIdempotencyInProgress)

	require.True(t, errors.Is(wrapped, ErrIdempotencyInProgress))
	require.False(t, IsRetriable(wrapped))
	require.False(t, errors.Is(wrapped, ErrDataAccess))
}

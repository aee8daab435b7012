package sparseimage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureFetchesThroughReadCallback(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	backing := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	s.readCB = func(ctx context.Context, addr, length int64) (ReadResult, error) {
		return AtRequestedBase(backing[addr : addr+length]), nil
	}

	require.NoError(t, s.Ensure(ctx, 0, 8))
	data, err := s.ReadSync(ctx, 0, 8)
	require.NoError(t, err)
	require.Equal(t, backing, data)
}

func TestEnsureAcceptsExplicitBaseResponseOutOfGap(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	calls := 0
	s.readCB = func(ctx context.Context, addr, length int64) (ReadResult, error) {
		calls++
		if calls == 1 {
			// Responds with data far outside the requested gap first; the
			// store must still accept it and keep retrying for the
			// original gap.
			return AtExplicitBase(1000, []byte{0xAB}), nil
		}
		return AtRequestedBase(make([]byte, length)), nil
	}

	require.NoError(t, s.Ensure(ctx, 0, 4))
	data, err := s.ReadSync(ctx, 0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, data)
}

func TestEnsureFillsErasedSentinelAfterRetriesExhausted(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	s.readCB = func(ctx context.Context, addr, length int64) (ReadResult, error) {
		// Never makes progress on the requested gap.
		return AtExplicitBase(1000, []byte{0x01}), nil
	}

	require.NoError(t, s.Ensure(ctx, 0, 4))
	data, err := s.ReadSync(ctx, 0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, data)
}

func TestEnsureNoOpWhenAlreadyCovered(t *testing.T) {
	s := newTestStore(t, 32)
	ctx := context.Background()

	calls := 0
	s.readCB = func(ctx context.Context, addr, length int64) (ReadResult, error) {
		calls++
		return AtRequestedBase(make([]byte, length)), nil
	}

	require.NoError(t, s.Ensure(ctx, 0, 8))
	require.NoError(t, s.Ensure(ctx, 2, 4))
	require.Equal(t, 1, calls)
}

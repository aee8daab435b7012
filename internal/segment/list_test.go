package segment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListInsertCoalescesOverlap(t *testing.T) {
	l := NewList()
	l.Insert(10, []byte{1, 2, 3, 4})
	l.Insert(12, []byte{9, 9})

	require.Equal(t, 1, l.Len())
	seg, ok := l.Find(10)
	require.True(t, ok)
	require.Equal(t, int64(10), seg.Addr)
	require.Equal(t, []byte{1, 2, 9, 9}, seg.Data)
}

func TestListInsertMergesTouchingSegments(t *testing.T) {
	l := NewList()
	l.Insert(0, []byte{1, 2})
	l.Insert(2, []byte{3, 4})

	require.Equal(t, 1, l.Len())
	seg, ok := l.Find(0)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, seg.Data)
}

func TestListInsertKeepsDisjointSegmentsSeparate(t *testing.T) {
	l := NewList()
	l.Insert(0, []byte{1})
	l.Insert(100, []byte{2})

	require.Equal(t, 2, l.Len())
}

func TestListLaterInsertWinsOnOverlap(t *testing.T) {
	l := NewList()
	l.Insert(0, []byte{0xAA, 0xAA, 0xAA})
	l.Insert(1, []byte{0xBB})

	seg, ok := l.Find(0)
	require.True(t, ok)
	require.Equal(t, []byte{0xAA, 0xBB, 0xAA}, seg.Data)
}

func TestListFirstGap(t *testing.T) {
	l := NewList()
	l.Insert(10, []byte{1, 2, 3})

	gapAddr, gapLen, ok := l.FirstGap(0, 20)
	require.True(t, ok)
	require.Equal(t, int64(0), gapAddr)
	require.Equal(t, int64(10), gapLen)
}

func TestListFirstGapFullyCovered(t *testing.T) {
	l := NewList()
	l.Insert(0, []byte{1, 2, 3})

	_, _, ok := l.FirstGap(0, 3)
	require.False(t, ok)
}

func TestListCoveredPartial(t *testing.T) {
	l := NewList()
	l.Insert(0, []byte{1, 2})
	require.True(t, l.Covered(0, 2))
	require.False(t, l.Covered(0, 3))
}

func TestListMaterializeFillsGaps(t *testing.T) {
	l := NewList()
	l.Insert(2, []byte{0x11, 0x22})

	buf := l.Materialize(0, 5, 0xFF)
	require.Equal(t, []byte{0xFF, 0xFF, 0x11, 0x22, 0xFF}, buf)
}

func TestListRemoveSplitsSegment(t *testing.T) {
	l := NewList()
	l.Insert(0, []byte{1, 2, 3, 4, 5})
	l.Remove(1, 3)

	require.Equal(t, 2, l.Len())
	seg0, ok := l.Find(0)
	require.True(t, ok)
	require.Equal(t, []byte{1}, seg0.Data)
	seg1, ok := l.Find(3)
	require.True(t, ok)
	require.Equal(t, []byte{4, 5}, seg1.Data)
}

func TestListCloneIsIndependent(t *testing.T) {
	l := NewList()
	l.Insert(0, []byte{1, 2, 3})
	clone := l.Clone()
	clone.Insert(0, []byte{9})

	orig, _ := l.Find(0)
	cloned, _ := clone.Find(0)
	require.Equal(t, byte(1), orig.Data[0])
	require.Equal(t, byte(9), cloned.Data[0])
}

func TestListByteAt(t *testing.T) {
	l := NewList()
	l.Insert(5, []byte{0x42})

	b, ok := l.ByteAt(5)
	require.True(t, ok)
	require.Equal(t, byte(0x42), b)

	_, ok = l.ByteAt(6)
	require.False(t, ok)
}

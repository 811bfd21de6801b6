package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultCapacity(t *testing.T) {
	b := New(0)
	assert.Equal(t, DefaultCapacity, b.Capacity())
	assert.Equal(t, 0, b.Position())
	assert.Empty(t, b.Bytes())
}

func TestEnsureCapacityDoubles(t *testing.T) {
	tests := []struct {
		name    string
		initial int
		used    int
		need    int
		wantCap int
	}{
		{"fits", 16, 0, 16, 16},
		{"one doubling", 16, 8, 16, 32},
		{"several doublings", 16, 12, 100, 128},
		{"zero value", 0, 0, 10, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b *Buffer
			if tt.initial == 0 {
				b = &Buffer{}
			} else {
				b = New(tt.initial)
			}
			for i := 0; i < tt.used; i++ {
				b.PutUint8(0xAA)
			}
			b.EnsureCapacity(tt.need)
			assert.Equal(t, tt.wantCap, b.Capacity())
			assert.GreaterOrEqual(t, b.Remaining(), tt.need)
			assert.Equal(t, tt.used, b.Position())
		})
	}
}

func TestGrowPreservesContents(t *testing.T) {
	b := New(4)
	b.PutUint32(0xDEADBEEF)
	b.PutUint32(0x01020304)
	b.PutUint64(0x1122334455667788)

	require.Equal(t, 16, b.Position())
	require.GreaterOrEqual(t, b.Capacity(), 16)

	r := NewReader(b.Bytes())
	assert.Equal(t, uint32(0xDEADBEEF), r.Uint32())
	assert.Equal(t, uint32(0x01020304), r.Uint32())
	assert.Equal(t, uint64(0x1122334455667788), r.Uint64())
	assert.NoError(t, r.Err())
	assert.Equal(t, 0, r.Len())
}

func TestClearKeepsCapacity(t *testing.T) {
	b := New(8)
	b.PutBytes([]byte("0123456789"))
	capBefore := b.Capacity()

	b.Clear()

	assert.Equal(t, 0, b.Position())
	assert.Equal(t, capBefore, b.Capacity())
	assert.Empty(t, b.Bytes())
}

func TestPad(t *testing.T) {
	b := New(16)
	b.PutUint8(1)
	b.Pad(4)
	assert.Equal(t, 4, b.Position())
	b.Pad(4)
	assert.Equal(t, 4, b.Position())
	assert.Equal(t, []byte{1, 0, 0, 0}, b.Bytes())
}

func TestPadding(t *testing.T) {
	assert.Equal(t, 0, Padding(8, 8))
	assert.Equal(t, 4, Padding(4, 8))
	assert.Equal(t, 3, Padding(5, 4))
	assert.Equal(t, 0, Padding(5, 1))
}

func TestReaderRoundTripTypes(t *testing.T) {
	b := New(0)
	b.PutInt32(-7)
	b.PutFloat32(2.5)
	b.PutUint8(9)
	b.Pad(4)
	b.PutBytes([]byte("ok"))

	r := NewReader(b.Bytes())
	assert.Equal(t, int32(-7), r.Int32())
	assert.Equal(t, float32(2.5), r.Float32())
	assert.Equal(t, uint8(9), r.Uint8())
	r.Skip(4)
	assert.Equal(t, 12, r.Offset())
	assert.Equal(t, []byte("ok"), r.Bytes(2))
	assert.NoError(t, r.Err())
}

func TestReaderShortIsSticky(t *testing.T) {
	r := NewReader([]byte{1, 2})

	assert.Equal(t, uint32(0), r.Uint32())
	assert.ErrorIs(t, r.Err(), ErrShortBuffer)
	assert.Equal(t, uint8(0), r.Uint8())
	assert.Nil(t, r.Bytes(1))
	assert.Equal(t, 0, r.Len())
}

package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeClass(t *testing.T) {
	assert.Equal(t, 1024, sizeClass(1))
	assert.Equal(t, 1024, sizeClass(1024))
	assert.Equal(t, 2048, sizeClass(1025))
	assert.Equal(t, 519168, sizeClass(3*416*416))
}

func TestGetFloat32_LengthAndCapacity(t *testing.T) {
	buf := GetFloat32(100)
	require.Len(t, buf, 100)
	assert.GreaterOrEqual(t, cap(buf), 1024)
	PutFloat32(buf)
}

func TestGetFloat32_Reuse(t *testing.T) {
	buf := GetFloat32(2048)
	for i := range buf {
		buf[i] = 1
	}
	PutFloat32(buf)

	// Same size class: pooled contents may be dirty, but length is right.
	again := GetFloat32(2000)
	assert.Len(t, again, 2000)
	PutFloat32(again)
}

func TestPutFloat32_Nil(t *testing.T) {
	assert.NotPanics(t, func() { PutFloat32(nil) })
}

func TestFloat32Pool_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				buf := GetFloat32(3 * 416 * 416)
				buf[0] = 1
				PutFloat32(buf)
			}
		}()
	}
	wg.Wait()
}

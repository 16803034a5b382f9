package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemcacheService(t *testing.T) {
	svc := NewMemcacheService("localhost:11211")

	key := "pricehound_test_key"
	if err := svc.Set(key, []byte("value"), time.Minute); err != nil {
		t.Skip("Memcache is not available, skipping test")
	}

	value, err := svc.Get(key)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)

	require.NoError(t, svc.Delete(key))
	_, err = svc.Get(key)
	assert.Error(t, err)
}

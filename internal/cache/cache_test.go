package cache

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCacheSetAndGet tests the Set and Get methods of the cache
func TestCacheSetAndGet(t *testing.T) {
	assertion := assert.New(t)
	c := NewCache[string]()

	testKey := CacheKey{
		PK: "permissionSet",
		SK: "DeveloperAccess",
	}
	c.Set(testKey, "arn:aws:iam::123456789012:role/AWSReservedSSO_DeveloperAccess_abc")
	gotResult, exists := c.Get(testKey)

	assertion.True(exists)
	assertion.Equal("arn:aws:iam::123456789012:role/AWSReservedSSO_DeveloperAccess_abc", gotResult)
	assertion.Equal(1, c.Len())
}

// TestCacheGetNonExistingKey tests retrieving a non-existing key from the cache
func TestCacheGetNonExistingKey(t *testing.T) {
	assertion := assert.New(t)
	c := NewCache[int]()
	_, exists := c.Get(CacheKey{PK: "nonExistingPK", SK: "nonExistingSk"})
	assertion.False(exists)
	assertion.Equal(0, c.Len())
}

func TestCacheKeysAreDistinct(t *testing.T) {
	assertion := assert.New(t)
	c := NewCache[string]()
	c.Set(CacheKey{PK: "ec2", SK: "us-east-1"}, "east")
	c.Set(CacheKey{PK: "ec2", SK: "us-west-2"}, "west")

	east, _ := c.Get(CacheKey{PK: "ec2", SK: "us-east-1"})
	west, _ := c.Get(CacheKey{PK: "ec2", SK: "us-west-2"})
	assertion.Equal("east", east)
	assertion.Equal("west", west)
	assertion.Equal(2, c.Len())
}

func TestCacheGetOrLoad(t *testing.T) {
	assertion := assert.New(t)
	c := NewCache[string]()
	key := CacheKey{PK: "account", SK: "AccountA"}
	calls := 0
	load := func() (string, error) {
		calls++
		return "123456789012", nil
	}

	value, err := c.GetOrLoad(key, load)
	assertion.NoError(err)
	assertion.Equal("123456789012", value)

	value, err = c.GetOrLoad(key, load)
	assertion.NoError(err)
	assertion.Equal("123456789012", value)
	assertion.Equal(1, calls)
}

func TestCacheGetOrLoadErrorNotCached(t *testing.T) {
	assertion := assert.New(t)
	c := NewCache[string]()
	key := CacheKey{PK: "account", SK: "AccountB"}

	_, err := c.GetOrLoad(key, func() (string, error) {
		return "", errors.New("throttled")
	})
	assertion.Error(err)
	_, exists := c.Get(key)
	assertion.False(exists)

	value, err := c.GetOrLoad(key, func() (string, error) {
		return "210987654321", nil
	})
	assertion.NoError(err)
	assertion.Equal("210987654321", value)
}

// TestCacheConcurrentAccess tests concurrent access to the cache
func TestCacheConcurrentAccess(t *testing.T) {
	assertion := assert.New(t)
	c := NewCache[string]()
	wg := sync.WaitGroup{}
	var loads int32

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()
			key := CacheKey{PK: "key" + strconv.Itoa(val)}
			c.Set(key, "value"+strconv.Itoa(val))
			gotResult, _ := c.Get(key)
			assertion.Equal("value"+strconv.Itoa(val), gotResult)

			shared, err := c.GetOrLoad(CacheKey{PK: "shared"}, func() (string, error) {
				atomic.AddInt32(&loads, 1)
				return "loaded", nil
			})
			assertion.NoError(err)
			assertion.Equal("loaded", shared)
		}(i)
	}

	wg.Wait()
	assertion.Equal(int32(1), atomic.LoadInt32(&loads))
	assertion.Equal(101, c.Len())
}

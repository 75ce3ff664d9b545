package config

import (
	"fmt"
)

// Durable client storage keys. These match the keys the web frontend kept in
// localStorage so a shared store stays readable by both.
const (
	StorageKeyUserToken   = "token"
	StorageKeyAdminToken  = "adminToken"
	StorageKeyDisplayName = "loggedInUser"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the Redis key holding a stored session value.
func (r *CacheKeyStruct) SessionKey(storageKey string) string {
	return fmt.Sprintf("portal:session:%s", storageKey)
}

var CacheKey = NewCacheKeyStruct()

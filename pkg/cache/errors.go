package cache

import "errors"

// ErrCacheMiss is returned by helpers that promote a miss to an error.
// The Cache interface itself signals misses with a false second return.
var ErrCacheMiss = errors.New("cache miss")

// Package cache keeps the local pronunciation cache in step with the words
// found in notes. A cache entry is nothing more than the file
// {cacheDir}/{word}.{ext} in storage; there is no separate index. Each run
// downloads at most a configured number of missing files, leaving the rest
// for a later run.
package cache

// Package store provides the cache backends used by the memo package.
//
// Four built-in backends cover the supported policy families: Unbound (plain
// map), Sized (LRU with fixed capacity), Timed (entries expire after a
// lifespan), and TimedSized (both). Any other type satisfying the Store
// interface can be plugged in through the memo package's WithStore option.
package store

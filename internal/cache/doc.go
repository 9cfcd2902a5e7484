// Package cache provides a small generic LRU cache.
//
//	c := cache.New[string, *image.NRGBA](32)
//	c.Set("logo.png", img)
//	img, ok := c.Get("logo.png")
//
// A Cache is safe for concurrent use and must not be copied.
package cache

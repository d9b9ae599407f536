// Package sf wraps golang.org/x/sync/singleflight with a typed API.
//
// The dispatch engine uses it so that concurrent cache misses for the same
// call-site key construct the dispatch strategy once; late arrivals block
// and share the first builder's result.
//
//	var g sf.Group[*Site]
//	site, shared, err := g.Do(key.Fingerprint(), func() (*Site, error) {
//	    return build(key)
//	})
//
// Keys are strings, so callers must derive them from a collision-resistant
// encoding of the full key.
package sf

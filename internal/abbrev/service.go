package abbrev

import "context"

// Service combines the lookup client with the local cache. It satisfies
// the pipeline's journal service interface; a nil cache disables caching.
type Service struct {
	client *Client
	cache  *Cache
}

// NewService creates a Service. cache may be nil.
func NewService(client *Client, cache *Cache) *Service {
	return &Service{client: client, cache: cache}
}

// Abbreviate resolves a journal name, preferring the cache. Network results
// are cached; a cache write failure does not fail the lookup.
func (s *Service) Abbreviate(name string) (string, error) {
	if s.cache != nil {
		if abbrev, ok, err := s.cache.Get(name); err == nil && ok {
			return abbrev, nil
		}
	}

	abbrev, err := s.client.Lookup(context.Background(), name)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		_ = s.cache.Put(name, abbrev)
	}
	return abbrev, nil
}

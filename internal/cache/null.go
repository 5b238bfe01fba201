package cache

// NullBackend never stores anything; every Get is a miss. Used when caching
// is disabled, per spec.md §4.4/§4.9 ("disabled ≡ null backend semantics
// without dropping metrics" — Manager keeps its own metrics regardless of
// which Backend is mounted).
type NullBackend struct{}

func (NullBackend) Get(string) (*Entry, bool) { return nil, false }
func (NullBackend) Set(*Entry)                {}
func (NullBackend) Delete(string)             {}
func (NullBackend) Clear()                    {}
func (NullBackend) Exists(string) bool        { return false }

package httpmsg

// Params is an ordered string mapping with unique keys. Setting an existing
// key overwrites its value and keeps its position.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams returns an empty Params.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// Set stores value under key.
func (p *Params) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key.
func (p *Params) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Len returns the number of keys.
func (p *Params) Len() int {
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Map returns a copy as a plain map.
func (p *Params) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

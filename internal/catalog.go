package internal

// ParameterDescriptor describes one port a plugin currently exposes.
// Symbol is the stable machine identifier that sessions record and that
// resolution matches on; Label is the display name, carried for reporting
// only.
type ParameterDescriptor struct {
	Index  uint32 `yaml:"index"`
	Symbol string `yaml:"symbol"`
	Label  string `yaml:"label"`
}

// ParameterTable lists a plugin's ports ordered by current index.
type ParameterTable []ParameterDescriptor

// DescriptorProvider yields the current parameter table for a plugin URI.
// Implementations return an error wrapping ErrPluginNotFound when the
// plugin is not installed.
type DescriptorProvider interface {
	Lookup(uri string) (ParameterTable, error)
}

// memoProvider caches lookups, hits and misses both, so each distinct URI
// is queried at most once per run. The cache dies with the run; plugin
// installations can change between runs.
type memoProvider struct {
	provider DescriptorProvider
	tables   map[string]ParameterTable
	errs     map[string]error
}

// Memoize wraps a provider with a per-run lookup cache.
func Memoize(p DescriptorProvider) DescriptorProvider {
	return &memoProvider{
		provider: p,
		tables:   make(map[string]ParameterTable),
		errs:     make(map[string]error),
	}
}

func (m *memoProvider) Lookup(uri string) (ParameterTable, error) {
	if table, ok := m.tables[uri]; ok {
		return table, nil
	}
	if err, ok := m.errs[uri]; ok {
		return nil, err
	}
	table, err := m.provider.Lookup(uri)
	if err != nil {
		m.errs[uri] = err
		return nil, err
	}
	m.tables[uri] = table
	return table, nil
}

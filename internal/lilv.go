package internal

import (
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// LV2InfoProvider queries the installed LV2 catalog through the lv2info
// utility that ships with lilv. This is the only place the engine touches
// the native plugin world; everything else goes through DescriptorProvider
// so the boundary can be faked in tests.
type LV2InfoProvider struct {
	// Command overrides the lv2info binary, for tests.
	Command string
}

func (p *LV2InfoProvider) command() string {
	if p.Command != "" {
		return p.Command
	}
	return "lv2info"
}

// Lookup runs lv2info for the URI and parses its port listing.
func (p *LV2InfoProvider) Lookup(uri string) (ParameterTable, error) {
	LogDebug("querying lv2 catalog for %s", uri)
	out, err := exec.Command(p.command(), uri).Output()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			// lv2info exits nonzero when the URI is not in the catalog.
			return nil, &CatalogError{URI: uri, Err: ErrPluginNotFound}
		}
		return nil, &CatalogError{URI: uri, Err: err}
	}
	table, err := parseLV2Info(out)
	if err != nil {
		return nil, &CatalogError{URI: uri, Err: err}
	}
	return table, nil
}

// parseLV2Info extracts {index, symbol, label} entries from lv2info
// output. Ports appear as indented blocks:
//
//	Port 3:
//	        Type:        lv2:ControlPort
//	        Symbol:      gain
//	        Name:        Gain
func parseLV2Info(out []byte) (ParameterTable, error) {
	var (
		table ParameterTable
		cur   *ParameterDescriptor
	)
	flush := func() {
		if cur != nil {
			table = append(table, *cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Port ") && strings.HasSuffix(line, ":"):
			flush()
			digits := strings.TrimSuffix(strings.TrimPrefix(line, "Port "), ":")
			n, err := strconv.ParseUint(digits, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("bad port heading %q", line)
			}
			cur = &ParameterDescriptor{Index: uint32(n)}
		case cur != nil && strings.HasPrefix(line, "Symbol:"):
			cur.Symbol = strings.TrimSpace(strings.TrimPrefix(line, "Symbol:"))
		case cur != nil && strings.HasPrefix(line, "Name:"):
			cur.Label = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		}
	}
	flush()
	sort.Slice(table, func(i, j int) bool {
		return table[i].Index < table[j].Index
	})
	return table, nil
}

package internal

import "errors"

// DecisionKind classifies the outcome for one automation reference.
type DecisionKind int

const (
	// DecisionUnchanged means the stored index still denotes the right
	// parameter.
	DecisionUnchanged DecisionKind = iota
	// DecisionRemap means the parameter moved and the stored index must be
	// rewritten.
	DecisionRemap
	// DecisionUnresolved means identity could not be established; the
	// reference is left untouched and reported.
	DecisionUnresolved
)

// UnresolvedReason explains why a reference could not be resolved.
type UnresolvedReason string

const (
	ReasonPluginNotFound UnresolvedReason = "plugin-not-found"
	ReasonAmbiguousLabel UnresolvedReason = "ambiguous-label"
	ReasonLabelNotFound  UnresolvedReason = "label-not-found"
)

// Decision is the resolver's verdict for a single automation reference.
// It lives for one run only.
type Decision struct {
	Instance *PluginInstance
	Ref      *AutomationRef
	Kind     DecisionKind
	OldIndex uint32
	NewIndex uint32           // set when Kind == DecisionRemap
	Reason   UnresolvedReason // set when Kind == DecisionUnresolved
}

// Resolve decides, for every automation reference in the document, whether
// its stored index still denotes the same parameter. The sole criterion is
// exact equality between the stored identity label and the port symbol;
// both strings originate from the same upstream port metadata. Duplicate
// symbols, missing labels, and undiscoverable plugins all yield Unresolved,
// never a guess. The provider is queried at most once per distinct plugin
// URI.
func Resolve(doc *Document, provider DescriptorProvider) []Decision {
	provider = Memoize(provider)
	var decisions []Decision
	for _, inst := range doc.Instances() {
		table, err := provider.Lookup(inst.URI)
		if err != nil {
			if errors.Is(err, ErrPluginNotFound) {
				LogWarn("could not find plugin: %s", inst.URI)
			} else {
				LogWarn("catalog lookup failed for %s: %v", inst.URI, err)
			}
			for _, ref := range inst.Refs {
				decisions = append(decisions, Decision{
					Instance: inst,
					Ref:      ref,
					Kind:     DecisionUnresolved,
					OldIndex: ref.StoredIndex,
					Reason:   ReasonPluginNotFound,
				})
			}
			continue
		}
		bySymbol := symbolIndex(table)
		for _, ref := range inst.Refs {
			decisions = append(decisions, decide(inst, ref, bySymbol))
		}
	}
	return decisions
}

// symbolIndex maps each port symbol to its descriptor. Symbols shared by
// two or more ports map to nil so they can never match; empty symbols are
// left out entirely.
func symbolIndex(table ParameterTable) map[string]*ParameterDescriptor {
	m := make(map[string]*ParameterDescriptor, len(table))
	for i := range table {
		d := &table[i]
		if d.Symbol == "" {
			continue
		}
		if _, dup := m[d.Symbol]; dup {
			m[d.Symbol] = nil
		} else {
			m[d.Symbol] = d
		}
	}
	return m
}

func decide(inst *PluginInstance, ref *AutomationRef, bySymbol map[string]*ParameterDescriptor) Decision {
	d := Decision{Instance: inst, Ref: ref, OldIndex: ref.StoredIndex}
	if !ref.HasLabel() {
		d.Kind = DecisionUnresolved
		d.Reason = ReasonLabelNotFound
		return d
	}
	desc, present := bySymbol[ref.StoredLabel]
	switch {
	case !present:
		d.Kind = DecisionUnresolved
		d.Reason = ReasonLabelNotFound
	case desc == nil:
		d.Kind = DecisionUnresolved
		d.Reason = ReasonAmbiguousLabel
	case desc.Index == ref.StoredIndex:
		d.Kind = DecisionUnchanged
	default:
		d.Kind = DecisionRemap
		d.NewIndex = desc.Index
	}
	return d
}

// ApplyRemaps records every Remap decision's index edit on the document
// and returns how many edits were recorded.
func ApplyRemaps(doc *Document, decisions []Decision) int {
	n := 0
	for _, d := range decisions {
		if d.Kind == DecisionRemap {
			doc.SetIndex(d.Ref, d.NewIndex)
			n++
		}
	}
	return n
}

package internal

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	remapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	unresolvedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// RemapReport is one confirmed index rewrite.
type RemapReport struct {
	Label    string `yaml:"label"`
	OldIndex uint32 `yaml:"old_index"`
	NewIndex uint32 `yaml:"new_index"`
}

// UnresolvedReport is one reference whose identity could not be
// established. Its stored index is left untouched.
type UnresolvedReport struct {
	Label  string `yaml:"label,omitempty"`
	Index  uint32 `yaml:"index"`
	Reason string `yaml:"reason"`
}

// InstanceReport groups the decisions for one plugin instance.
type InstanceReport struct {
	URI        string             `yaml:"uri"`
	References int                `yaml:"references"`
	Unchanged  int                `yaml:"unchanged"`
	Remaps     []RemapReport      `yaml:"remaps,omitempty"`
	Unresolved []UnresolvedReport `yaml:"unresolved,omitempty"`
}

// Report is the structured summary of one run's decisions.
type Report struct {
	Instances  []InstanceReport `yaml:"instances"`
	Unchanged  int              `yaml:"total_unchanged"`
	Remapped   int              `yaml:"total_remapped"`
	Unresolved int              `yaml:"total_unresolved"`
}

// HasRemaps reports whether any reference needs its index rewritten.
func (r *Report) HasRemaps() bool {
	return r.Remapped > 0
}

// HasUnresolved reports whether any reference could not be resolved.
func (r *Report) HasUnresolved() bool {
	return r.Unresolved > 0
}

// BuildReport groups a run's decisions per plugin instance, preserving
// document order.
func BuildReport(decisions []Decision) *Report {
	report := &Report{}
	var (
		cur     *InstanceReport
		curInst *PluginInstance
	)
	for _, d := range decisions {
		if cur == nil || d.Instance != curInst {
			report.Instances = append(report.Instances, InstanceReport{URI: d.Instance.URI})
			cur = &report.Instances[len(report.Instances)-1]
			curInst = d.Instance
		}
		cur.References++
		switch d.Kind {
		case DecisionUnchanged:
			cur.Unchanged++
			report.Unchanged++
		case DecisionRemap:
			cur.Remaps = append(cur.Remaps, RemapReport{
				Label:    d.Ref.StoredLabel,
				OldIndex: d.OldIndex,
				NewIndex: d.NewIndex,
			})
			report.Remapped++
		case DecisionUnresolved:
			cur.Unresolved = append(cur.Unresolved, UnresolvedReport{
				Label:  d.Ref.StoredLabel,
				Index:  d.OldIndex,
				Reason: string(d.Reason),
			})
			report.Unresolved++
		}
	}
	return report
}

// RenderYAML writes the report as YAML.
func (r *Report) RenderYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(r)
}

// RenderText writes the styled human-readable report.
func (r *Report) RenderText(w io.Writer) {
	for _, inst := range r.Instances {
		fmt.Fprintln(w, headerStyle.Render(inst.URI))
		fmt.Fprintf(w, "  %s\n", dimStyle.Render(fmt.Sprintf(
			"%d reference(s), %d unchanged", inst.References, inst.Unchanged)))
		for _, m := range inst.Remaps {
			fmt.Fprintf(w, "  %s %s: %d -> %d\n",
				remapStyle.Render("remap"), m.Label, m.OldIndex, m.NewIndex)
		}
		for _, u := range inst.Unresolved {
			label := u.Label
			if label == "" {
				label = fmt.Sprintf("index %d", u.Index)
			}
			fmt.Fprintf(w, "  %s %s: %s\n",
				unresolvedStyle.Render("unresolved"), label, u.Reason)
		}
	}
	if len(r.Instances) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d unchanged, %d remapped, %d unresolved\n",
		r.Unchanged, r.Remapped, r.Unresolved)
}

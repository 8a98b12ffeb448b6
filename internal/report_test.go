package internal

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleDecisions() []Decision {
	amp := &PluginInstance{URI: "http://example.org/amp"}
	comp := &PluginInstance{URI: "http://example.org/comp"}
	gain := &AutomationRef{StoredIndex: 0, StoredLabel: "Gain"}
	freq := &AutomationRef{StoredIndex: 1, StoredLabel: "Freq"}
	thresh := &AutomationRef{StoredIndex: 2, StoredLabel: "Threshold"}
	return []Decision{
		{Instance: amp, Ref: gain, Kind: DecisionRemap, OldIndex: 0, NewIndex: 1},
		{Instance: amp, Ref: freq, Kind: DecisionUnchanged, OldIndex: 1},
		{Instance: comp, Ref: thresh, Kind: DecisionUnresolved, OldIndex: 2, Reason: ReasonPluginNotFound},
	}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(sampleDecisions())

	if len(report.Instances) != 2 {
		t.Fatalf("got %d instance reports, want 2", len(report.Instances))
	}
	amp := report.Instances[0]
	if amp.URI != "http://example.org/amp" || amp.References != 2 || amp.Unchanged != 1 {
		t.Errorf("amp report = %+v", amp)
	}
	if len(amp.Remaps) != 1 || amp.Remaps[0] != (RemapReport{Label: "Gain", OldIndex: 0, NewIndex: 1}) {
		t.Errorf("amp remaps = %+v", amp.Remaps)
	}
	comp := report.Instances[1]
	if len(comp.Unresolved) != 1 || comp.Unresolved[0].Reason != string(ReasonPluginNotFound) {
		t.Errorf("comp unresolved = %+v", comp.Unresolved)
	}
	if report.Unchanged != 1 || report.Remapped != 1 || report.Unresolved != 1 {
		t.Errorf("totals = %d/%d/%d, want 1/1/1",
			report.Unchanged, report.Remapped, report.Unresolved)
	}
	if !report.HasRemaps() || !report.HasUnresolved() {
		t.Error("HasRemaps()/HasUnresolved() should both be true")
	}
}

func TestBuildReportSeparatesInstancesWithSameURI(t *testing.T) {
	a := &PluginInstance{URI: "u"}
	b := &PluginInstance{URI: "u"}
	ref := &AutomationRef{StoredIndex: 0, StoredLabel: "Gain"}
	report := BuildReport([]Decision{
		{Instance: a, Ref: ref, Kind: DecisionUnchanged},
		{Instance: b, Ref: ref, Kind: DecisionUnchanged},
	})
	if len(report.Instances) != 2 {
		t.Errorf("got %d instance reports, want 2 (two instances of the same plugin)", len(report.Instances))
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	BuildReport(sampleDecisions()).RenderText(&buf)
	out := buf.String()

	for _, want := range []string{
		"http://example.org/amp",
		"Gain: 0 -> 1",
		"Threshold: plugin-not-found",
		"Summary: 1 unchanged, 1 remapped, 1 unresolved",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTextUnlabeledReference(t *testing.T) {
	inst := &PluginInstance{URI: "u"}
	ref := &AutomationRef{StoredIndex: 9}
	var buf bytes.Buffer
	BuildReport([]Decision{
		{Instance: inst, Ref: ref, Kind: DecisionUnresolved, OldIndex: 9, Reason: ReasonLabelNotFound},
	}).RenderText(&buf)
	if !strings.Contains(buf.String(), "index 9: label-not-found") {
		t.Errorf("unlabeled reference not reported by index:\n%s", buf.String())
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := BuildReport(sampleDecisions()).RenderYAML(&buf); err != nil {
		t.Fatalf("RenderYAML() error = %v", err)
	}
	var decoded Report
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report yaml does not parse: %v", err)
	}
	if decoded.Remapped != 1 || decoded.Unresolved != 1 || len(decoded.Instances) != 2 {
		t.Errorf("decoded report = %+v", decoded)
	}
}

package internal

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
	"strconv"
)

// automationIDPrefix precedes the parameter index in AutomationList
// automation-id attributes.
const automationIDPrefix = "parameter-"

// AutomationRef is one stored automation parameter reference: a numeric
// parameter index plus the identity label the session writer recorded for
// it. References parsed from AutomationList elements carry no label of
// their own and inherit one from the instance's Controllable with the same
// stored index; if none exists the label stays empty.
type AutomationRef struct {
	StoredIndex uint32
	StoredLabel string

	// Byte range of the index digits in the raw document.
	valueStart int
	valueEnd   int
}

// HasLabel reports whether the reference carries an identity label.
func (r *AutomationRef) HasLabel() bool {
	return r.StoredLabel != ""
}

// PluginInstance is one loaded LV2 plugin found in the session, with every
// automation reference stored under it, in document order.
type PluginInstance struct {
	URI  string
	Refs []*AutomationRef
}

type edit struct {
	start, end int
	text       string
}

// Document is one parsed session file. The original bytes are kept as-is;
// mutations are recorded as byte-range edits and spliced in on Serialize,
// so untouched content round-trips bit-identically.
type Document struct {
	raw       []byte
	instances []*PluginInstance
	edits     []edit
}

// Instances returns the plugin instances found in the document, in
// document order.
func (d *Document) Instances() []*PluginInstance {
	return d.instances
}

// SetIndex rewrites the stored index digits of ref to index. The edit takes
// effect on Serialize; no other byte of the document changes.
func (d *Document) SetIndex(ref *AutomationRef, index uint32) {
	d.edits = append(d.edits, edit{
		start: ref.valueStart,
		end:   ref.valueEnd,
		text:  strconv.FormatUint(uint64(index), 10),
	})
}

// Serialize renders the document with all recorded edits applied. With no
// edits the output is byte-identical to the parsed input.
func (d *Document) Serialize() []byte {
	if len(d.edits) == 0 {
		return bytes.Clone(d.raw)
	}
	edits := make([]edit, len(d.edits))
	copy(edits, d.edits)
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start < edits[j].start
	})
	var buf bytes.Buffer
	buf.Grow(len(d.raw))
	pos := 0
	for _, e := range edits {
		if e.start < pos {
			LogWarn("skipping overlapping replacement at byte %d", e.start)
			continue
		}
		buf.Write(d.raw[pos:e.start])
		buf.WriteString(e.text)
		pos = e.end
	}
	buf.Write(d.raw[pos:])
	return buf.Bytes()
}

// ParseDocument parses a session file and collects every LV2 plugin
// instance (<Processor type="lv2">) together with its automation
// references: <Controllable parameter="N" symbol="..."> and
// <AutomationList automation-id="parameter-N"> descendants.
func ParseDocument(raw []byte) (*Document, error) {
	doc := &Document{raw: raw}
	dec := xml.NewDecoder(bytes.NewReader(raw))

	var (
		inst      *PluginInstance
		instDepth int
		depth     int
		labels    map[uint32]string
		unlabeled []*AutomationRef
	)
	closeInstance := func() {
		for _, ref := range unlabeled {
			ref.StoredLabel = labels[ref.StoredIndex]
		}
		doc.instances = append(doc.instances, inst)
		inst, labels, unlabeled = nil, nil, nil
	}

	for {
		tokStart := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Offset: dec.InputOffset(), Err: err}
		}
		tokEnd := dec.InputOffset()

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			tag := raw[tokStart:tokEnd]
			switch {
			case inst == nil && t.Name.Local == "Processor":
				if attrValue(t, "type") != "lv2" {
					break
				}
				uri := attrValue(t, "unique-id")
				if uri == "" {
					LogWarn("missing uri for processor at byte %d", tokStart)
					break
				}
				inst = &PluginInstance{URI: uri}
				instDepth = depth
				labels = make(map[uint32]string)
			case inst != nil && t.Name.Local == "Controllable":
				onControllable(inst, labels, tag, int(tokStart))
			case inst != nil && t.Name.Local == "AutomationList":
				if ref := onAutomationList(inst, tag, int(tokStart)); ref != nil {
					unlabeled = append(unlabeled, ref)
				}
			}
		case xml.EndElement:
			if inst != nil && depth == instDepth {
				closeInstance()
			}
			depth--
		}
	}
	return doc, nil
}

// onControllable records the reference held by a Controllable element:
// index from the parameter attribute, label from the symbol attribute.
func onControllable(inst *PluginInstance, labels map[uint32]string, tag []byte, base int) {
	start, end, ok := attrValueRange(tag, "parameter")
	if !ok {
		return
	}
	digits := string(tag[start:end])
	index, ok := parseIndex(digits)
	if !ok {
		LogWarn("could not parse parameter index: %s", digits)
		return
	}
	label := attrValueIn(tag, "symbol")
	if label == "" {
		LogWarn("missing `symbol` in controllable at byte %d", base)
	} else {
		labels[index] = label
	}
	inst.Refs = append(inst.Refs, &AutomationRef{
		StoredIndex: index,
		StoredLabel: label,
		valueStart:  base + start,
		valueEnd:    base + end,
	})
}

// onAutomationList records the reference held by an AutomationList element
// with an automation-id of the form "parameter-N". The returned reference
// still lacks a label; the caller fills it in from the instance's
// Controllables once the whole instance has been read.
func onAutomationList(inst *PluginInstance, tag []byte, base int) *AutomationRef {
	start, end, ok := attrValueRange(tag, "automation-id")
	if !ok {
		return nil
	}
	value := tag[start:end]
	if !bytes.HasPrefix(value, []byte(automationIDPrefix)) {
		return nil
	}
	digits := string(value[len(automationIDPrefix):])
	index, ok := parseIndex(digits)
	if !ok {
		LogWarn("could not parse parameter index: %s", digits)
		return nil
	}
	ref := &AutomationRef{
		StoredIndex: index,
		valueStart:  base + start + len(automationIDPrefix),
		valueEnd:    base + end,
	}
	inst.Refs = append(inst.Refs, ref)
	return ref
}

// parseIndex parses a digits-only unsigned decimal parameter index.
func parseIndex(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// attrValue returns the decoded value of the named attribute of a start
// element, or "" when absent.
func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// attrValueIn returns the raw text of the named attribute inside a start
// tag, or "" when absent.
func attrValueIn(tag []byte, name string) string {
	start, end, ok := attrValueRange(tag, name)
	if !ok {
		return ""
	}
	return string(tag[start:end])
}

func isXMLSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// attrValueRange scans a raw start tag (as it appears in the input) for the
// named attribute and returns the byte range of its value, relative to tag.
// The decoder has already validated the tag, so the scan only has to walk
// name="value" pairs with either quote style.
func attrValueRange(tag []byte, name string) (int, int, bool) {
	i := 1 // past '<'
	for i < len(tag) && !isXMLSpace(tag[i]) && tag[i] != '>' && tag[i] != '/' {
		i++
	}
	for i < len(tag) {
		for i < len(tag) && isXMLSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] == '>' || tag[i] == '/' || tag[i] == '?' {
			break
		}
		nameStart := i
		for i < len(tag) && tag[i] != '=' && !isXMLSpace(tag[i]) && tag[i] != '>' {
			i++
		}
		attrName := string(tag[nameStart:i])
		for i < len(tag) && isXMLSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			return 0, 0, false
		}
		i++
		for i < len(tag) && isXMLSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || (tag[i] != '"' && tag[i] != '\'') {
			return 0, 0, false
		}
		quote := tag[i]
		i++
		valStart := i
		for i < len(tag) && tag[i] != quote {
			i++
		}
		if i >= len(tag) {
			return 0, 0, false
		}
		if attrName == name {
			return valStart, i, true
		}
		i++
	}
	return 0, 0, false
}

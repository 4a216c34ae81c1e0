package telemetry

import (
	"strconv"
	"strings"
)

// ScalarKind tags the dynamic type of a telemetry leaf.
type ScalarKind int

const (
	KindNumber ScalarKind = iota + 1
	KindText
	KindBool
	// KindComposite marks an object or array below the single supported
	// nesting level. It is carried so it can be reported, never materialized.
	KindComposite
)

func (k ScalarKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Scalar is a tagged telemetry value produced at the fetch boundary.
type Scalar struct {
	kind ScalarKind
	raw  string
	b    bool
}

// Number builds a numeric scalar from its textual JSON form.
func Number(raw string) Scalar {
	return Scalar{kind: KindNumber, raw: raw}
}

func Text(s string) Scalar {
	return Scalar{kind: KindText, raw: s}
}

func Bool(b bool) Scalar {
	return Scalar{kind: KindBool, raw: strconv.FormatBool(b), b: b}
}

// Composite wraps the raw JSON of a value nested too deep to flatten.
func Composite(raw string) Scalar {
	return Scalar{kind: KindComposite, raw: raw}
}

func (s Scalar) Kind() ScalarKind { return s.kind }

func (s Scalar) Bool() bool { return s.b }

// String returns the value as it appeared in the source document.
func (s Scalar) String() string { return s.raw }

// Member is one entry of a nested group.
type Member struct {
	Key   string
	Value Scalar
}

// Entry is a top-level document entry: a scalar, or a group when Group is
// non-nil.
type Entry struct {
	Key   string
	Value Scalar
	Group []Member
}

func (e Entry) IsGroup() bool { return e.Group != nil }

// Document is one parsed telemetry response, in source order. Nesting is
// limited to one level: entries may hold groups, group members may not.
type Document []Entry

// Field is a flattened document leaf.
type Field struct {
	// Name is the sanitized series name.
	Name string
	// Raw is the unsanitized label path, e.g. "Physical media units written/lo".
	Raw   string
	Value Scalar
}

// Kind is the series kind a field resolves to.
type Kind int

const (
	KindNumeric Kind = iota + 1
	KindInfo
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Resolved is a field classified for the registry.
type Resolved struct {
	Name   string
	Raw    string
	Kind   Kind
	Number float64
	Text   string
}

// Identity is the label source for every numeric series of a device.
type Identity struct {
	SerialNumber     string
	ModelName        string
	FirmwareRevision string
}

// NewIdentity trims the padding nvme-cli leaves on fixed-width id fields.
func NewIdentity(serial, model, firmware string) Identity {
	return Identity{
		SerialNumber:     ValidText(strings.TrimSpace(serial)),
		ModelName:        ValidText(strings.TrimSpace(model)),
		FirmwareRevision: ValidText(strings.TrimSpace(firmware)),
	}
}

// ValidText replaces invalid UTF-8 sequences with U+FFFD so s can be used as
// a label value.
func ValidText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// Empty reports whether the identity lacks a serial number.
func (i Identity) Empty() bool {
	return i.SerialNumber == ""
}

package nvme

import (
	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
	"github.com/tidwall/gjson"
)

// Decode parses an nvme-cli JSON response into a telemetry document.
// Top-level objects become groups; anything nested below them, and arrays
// at any level, are kept as composite scalars.
func Decode(data []byte) (telemetry.Document, error) {
	errFactory := errors.New()

	if !gjson.ValidBytes(data) {
		return nil, errFactory.WithData(ErrPayloadParse, "invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errFactory.WithData(ErrPayloadParse, "document root is not an object")
	}

	doc := telemetry.Document{}
	root.ForEach(func(key, value gjson.Result) bool {
		entry := telemetry.Entry{Key: key.String()}

		if value.IsObject() {
			entry.Group = []telemetry.Member{}
			value.ForEach(func(k, v gjson.Result) bool {
				entry.Group = append(entry.Group, telemetry.Member{Key: k.String(), Value: scalarOf(v)})
				return true
			})
		} else {
			entry.Value = scalarOf(value)
		}

		doc = append(doc, entry)
		return true
	})

	return doc, nil
}

func scalarOf(v gjson.Result) telemetry.Scalar {
	switch v.Type {
	case gjson.Number:
		return telemetry.Number(v.Raw)
	case gjson.String:
		return telemetry.Text(v.Str)
	case gjson.True:
		return telemetry.Bool(true)
	case gjson.False:
		return telemetry.Bool(false)
	case gjson.JSON:
		return telemetry.Composite(v.Raw)
	default:
		// null
		return telemetry.Text("")
	}
}

// decodeIdentity reads the id-ctrl fields used as device labels.
func decodeIdentity(data []byte) (telemetry.Identity, error) {
	if !gjson.ValidBytes(data) {
		return telemetry.Identity{}, errors.New().WithData(ErrPayloadParse, "invalid JSON")
	}

	fields := gjson.GetManyBytes(data, "sn", "mn", "fr")

	return telemetry.NewIdentity(fields[0].String(), fields[1].String(), fields[2].String()), nil
}

package telemetry

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
)

// InfoSeries is the one field exposed as an info record instead of a gauge.
const InfoSeries = "nvme_log_page_guid"

type mismatch struct {
	Field string
	Kind  string
	Value string
}

// Resolve classifies a field as numeric or info. Fields that are neither
// return an error coded ErrFieldTypeMismatch or ErrNestingTooDeep; callers
// skip them.
func Resolve(f Field) (Resolved, error) {
	errFactory := errors.New()
	res := Resolved{Name: f.Name, Raw: f.Raw}

	if f.Value.Kind() == KindComposite {
		return res, errFactory.WithData(ErrNestingTooDeep, mismatch{
			Field: f.Name,
			Kind:  f.Value.Kind().String(),
			Value: f.Value.String(),
		})
	}

	if f.Name == InfoSeries {
		res.Kind = KindInfo
		res.Text = ValidText(f.Value.String())
		return res, nil
	}

	switch f.Value.Kind() {
	case KindNumber, KindText:
		v, err := parseNumber(f.Value.String())
		if err != nil {
			return res, errFactory.WithData(ErrFieldTypeMismatch, mismatch{
				Field: f.Name,
				Kind:  f.Value.Kind().String(),
				Value: f.Value.String(),
			})
		}
		res.Kind = KindNumeric
		res.Number = v
	case KindBool:
		res.Kind = KindNumeric
		if f.Value.Bool() {
			res.Number = 1
		}
	default:
		return res, errFactory.WithData(ErrUnknownScalar, mismatch{
			Field: f.Name,
			Kind:  f.Value.Kind().String(),
			Value: f.Value.String(),
		})
	}

	return res, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

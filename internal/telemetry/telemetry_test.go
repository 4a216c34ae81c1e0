package telemetry_test

import (
	"regexp"
	"testing"
	"testing/quick"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var legalName = regexp.MustCompile(`^[a-zA-Z0-9_:]*$`)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"nvme_temperature", "nvme_temperature"},
		{"nvme_power_on_hours", "nvme_power_on_hours"},
		{"Temp (C)", "Temp__C_"},
		{"Temp [C]", "Temp__C_"},
		{"a:b-c.d", "a:b_c_d"},
		{"°C", "_C"},
		{"温度", "__"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, telemetry.Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	f := func(s string) bool {
		once := telemetry.Sanitize(s)
		return telemetry.Sanitize(once) == once
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestSanitizeRange(t *testing.T) {
	f := func(s string) bool {
		return legalName.MatchString(telemetry.Sanitize(s))
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestSeriesName(t *testing.T) {
	assert.Equal(t, "nvme_temperature", telemetry.SeriesName("Temperature"))
	assert.Equal(t, "nvme_power_on_hours", telemetry.SeriesName("Power On Hours"))
	assert.Equal(t, "nvme_log_page_guid", telemetry.SeriesName("Log page GUID"))
	assert.Equal(t, "nvme_critical_warning", telemetry.SeriesName("critical_warning"))
	assert.Equal(t, "nvme_thermal_management_t1_trans_count",
		telemetry.SeriesName("Thermal Management T1 Trans Count"))
	assert.Equal(t, "nvme_percent_used_", telemetry.SeriesName("Percent Used%"))
	assert.Equal(t, "nvme_physical_media_units_written_Hi",
		telemetry.MemberName(telemetry.SeriesName("Physical media units written"), "Hi"))
}

func TestValidSeriesName(t *testing.T) {
	assert.True(t, telemetry.ValidSeriesName("nvme_temperature"))
	assert.True(t, telemetry.ValidSeriesName("nvme_a:b"))
	assert.False(t, telemetry.ValidSeriesName("nvme_"))
	assert.False(t, telemetry.ValidSeriesName("temperature"))
	assert.False(t, telemetry.ValidSeriesName("nvme_temp-c"))
}

func TestFlattenScalars(t *testing.T) {
	doc := telemetry.Document{
		{Key: "Temperature", Value: telemetry.Number("35")},
		{Key: "Power On Hours", Value: telemetry.Number("1200")},
		{Key: "critical_warning", Value: telemetry.Number("0")},
	}

	fields := telemetry.Flatten(doc)

	require.Len(t, fields, 3)
	assert.Equal(t, "nvme_temperature", fields[0].Name)
	assert.Equal(t, "Temperature", fields[0].Raw)
	assert.Equal(t, "nvme_power_on_hours", fields[1].Name)
	assert.Equal(t, "nvme_critical_warning", fields[2].Name)
}

func TestFlattenGroupReplacesParent(t *testing.T) {
	doc := telemetry.Document{
		{Key: "Physical media units written", Group: []telemetry.Member{
			{Key: "hi", Value: telemetry.Number("0")},
			{Key: "lo", Value: telemetry.Number("42")},
		}},
	}

	fields := telemetry.Flatten(doc)

	require.Len(t, fields, 2)
	assert.Equal(t, "nvme_physical_media_units_written_hi", fields[0].Name)
	assert.Equal(t, "nvme_physical_media_units_written_lo", fields[1].Name)
	assert.Equal(t, "Physical media units written/lo", fields[1].Raw)
	assert.Equal(t, "42", fields[1].Value.String())
}

func TestFlattenEmptyGroup(t *testing.T) {
	doc := telemetry.Document{
		{Key: "Empty", Group: []telemetry.Member{}},
		{Key: "Temperature", Value: telemetry.Number("35")},
	}

	fields := telemetry.Flatten(doc)

	require.Len(t, fields, 1)
	assert.Equal(t, "nvme_temperature", fields[0].Name)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		field    telemetry.Field
		wantKind telemetry.Kind
		wantNum  float64
		wantText string
		wantCode errors.ErrorCode
	}{
		{
			name:     "integer",
			field:    telemetry.Field{Name: "nvme_temperature", Value: telemetry.Number("35")},
			wantKind: telemetry.KindNumeric,
			wantNum:  35,
		},
		{
			name:     "float",
			field:    telemetry.Field{Name: "nvme_avail_spare", Value: telemetry.Number("0.5")},
			wantKind: telemetry.KindNumeric,
			wantNum:  0.5,
		},
		{
			name:     "numeric text",
			field:    telemetry.Field{Name: "nvme_data_units_read", Value: telemetry.Text(" 1.2e3 ")},
			wantKind: telemetry.KindNumeric,
			wantNum:  1200,
		},
		{
			name:     "bool true",
			field:    telemetry.Field{Name: "nvme_flag", Value: telemetry.Bool(true)},
			wantKind: telemetry.KindNumeric,
			wantNum:  1,
		},
		{
			name:     "bool false",
			field:    telemetry.Field{Name: "nvme_flag", Value: telemetry.Bool(false)},
			wantKind: telemetry.KindNumeric,
			wantNum:  0,
		},
		{
			name:     "guid",
			field:    telemetry.Field{Name: "nvme_log_page_guid", Value: telemetry.Text("abc-123")},
			wantKind: telemetry.KindInfo,
			wantText: "abc-123",
		},
		{
			name:     "numeric guid stays info",
			field:    telemetry.Field{Name: "nvme_log_page_guid", Value: telemetry.Number("12345")},
			wantKind: telemetry.KindInfo,
			wantText: "12345",
		},
		{
			name:     "free text",
			field:    telemetry.Field{Name: "nvme_state", Value: telemetry.Text("unsupported")},
			wantCode: telemetry.ErrFieldTypeMismatch,
		},
		{
			name:     "boolean text",
			field:    telemetry.Field{Name: "nvme_state", Value: telemetry.Text("true")},
			wantCode: telemetry.ErrFieldTypeMismatch,
		},
		{
			name:     "composite",
			field:    telemetry.Field{Name: "nvme_group_deep", Value: telemetry.Composite(`{"x":1}`)},
			wantCode: telemetry.ErrNestingTooDeep,
		},
		{
			name:     "zero value scalar",
			field:    telemetry.Field{Name: "nvme_empty"},
			wantCode: telemetry.ErrUnknownScalar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := telemetry.Resolve(tt.field)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.field.Name, got.Name)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.InDelta(t, tt.wantNum, got.Number, 1e-9)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestIdentity(t *testing.T) {
	id := telemetry.NewIdentity("  S1 ", "M1   ", "F1")
	assert.Equal(t, telemetry.Identity{SerialNumber: "S1", ModelName: "M1", FirmwareRevision: "F1"}, id)
	assert.False(t, id.Empty())
	assert.True(t, telemetry.NewIdentity("   ", "M1", "F1").Empty())

	id = telemetry.NewIdentity("S\xff1", "M1", "F\xfe")
	assert.Equal(t, "S\uFFFD1", id.SerialNumber)
	assert.Equal(t, "F\uFFFD", id.FirmwareRevision)
}

package metrics

import (
	"time"

	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	LabelSerialNumber = "serial_number"
	LabelModel        = "model"
	LabelFirmware     = "firmware"
)

var deviceLabelNames = []string{LabelSerialNumber, LabelModel, LabelFirmware}

// Handle is a live series. Its kind never changes after creation.
type Handle interface {
	prometheus.Collector
	Name() string
	Kind() telemetry.Kind
}

// Observer is told about every series the registry creates.
type Observer interface {
	SeriesCreated(def Definition)
}

// Definition describes a series at the time it was first created.
type Definition struct {
	Name      string
	Kind      telemetry.Kind
	Raw       string
	Source    string
	FirstSeen time.Time
}

// Labels is the device label triple attached to numeric series.
type Labels struct {
	SerialNumber string
	Model        string
	Firmware     string
}

// LabelsFor derives the label triple from a device identity.
func LabelsFor(id telemetry.Identity) Labels {
	return Labels{
		SerialNumber: id.SerialNumber,
		Model:        id.ModelName,
		Firmware:     id.FirmwareRevision,
	}
}

func (l Labels) values() []string {
	return []string{
		telemetry.ValidText(l.SerialNumber),
		telemetry.ValidText(l.Model),
		telemetry.ValidText(l.Firmware),
	}
}

// Facts is the label set of an info record.
type Facts map[string]string

// Facts returns the identity facts an info record carries for a device.
func (l Labels) Facts() Facts {
	return Facts{
		LabelSerialNumber: l.SerialNumber,
		LabelModel:        l.Model,
		LabelFirmware:     l.Firmware,
	}
}

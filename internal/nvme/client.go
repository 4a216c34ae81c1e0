package nvme

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"codeberg.org/mutker/nvme-exporter/internal/errors"
	"codeberg.org/mutker/nvme-exporter/internal/logger"
	"codeberg.org/mutker/nvme-exporter/internal/telemetry"
	"github.com/spf13/afero"
)

const (
	defaultBinary        = "nvme"
	defaultDeviceDir     = "/dev"
	defaultDevicePattern = `^nvme[0-9]+n1$`

	// Source names for the queries every exporter issues by default.
	SourceSmartLog       = "smart-log"
	SourceOCPSmartAddLog = "ocp smart-add-log"
)

// DefaultSources are queried for every device unless configured otherwise.
var DefaultSources = []string{SourceSmartLog, SourceOCPSmartAddLog}

type Config struct {
	Binary        string
	Sudo          bool
	DeviceDir     string
	DevicePattern string
}

func DefaultConfig() Config {
	return Config{
		Binary:        defaultBinary,
		Sudo:          true,
		DeviceDir:     defaultDeviceDir,
		DevicePattern: defaultDevicePattern,
	}
}

// Client talks to NVMe devices through nvme-cli.
type Client struct {
	cfg     Config
	pattern *regexp.Regexp
	runner  Runner
	fs      afero.Fs
	log     logger.Logger
}

type ClientOption func(*Client)

// WithFs replaces the filesystem used for device enumeration.
func WithFs(fs afero.Fs) ClientOption {
	return func(c *Client) {
		c.fs = fs
	}
}

func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func NewClient(cfg Config, runner Runner, opts ...ClientOption) (*Client, error) {
	errFactory := errors.New()

	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.DeviceDir == "" {
		cfg.DeviceDir = defaultDeviceDir
	}
	if cfg.DevicePattern == "" {
		cfg.DevicePattern = defaultDevicePattern
	}

	pattern, err := regexp.Compile(cfg.DevicePattern)
	if err != nil {
		return nil, errFactory.Wrap(ErrInvalidPattern, err)
	}

	if runner == nil {
		runner = ExecRunner{}
	}

	c := &Client{
		cfg:     cfg,
		pattern: pattern,
		runner:  runner,
		fs:      afero.NewOsFs(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Devices lists device names in the device directory that match the
// configured pattern, in name order.
func (c *Client) Devices(_ context.Context) ([]string, error) {
	entries, err := afero.ReadDir(c.fs, c.cfg.DeviceDir)
	if err != nil {
		return nil, errors.New().Wrap(ErrDeviceEnumeration, err)
	}

	var devices []string
	for _, entry := range entries {
		if c.pattern.MatchString(entry.Name()) {
			devices = append(devices, entry.Name())
		}
	}

	c.log.Debug().Strs("devices", devices).Msg("Enumerated devices")

	return devices, nil
}

// Identity returns the serial number, model and firmware of a device.
func (c *Client) Identity(ctx context.Context, device string) (telemetry.Identity, error) {
	errFactory := errors.New()

	out, err := c.run(ctx, []string{"id-ctrl"}, device)
	if err != nil {
		return telemetry.Identity{}, errFactory.Wrap(ErrIdentityFetch, err)
	}

	id, err := decodeIdentity(out)
	if err != nil {
		return telemetry.Identity{}, errFactory.Wrap(ErrIdentityFetch, err)
	}

	return id, nil
}

// Telemetry runs one source query against a device and decodes the result.
// The source name is split on spaces into the nvme-cli subcommand, so
// "ocp smart-add-log" runs `nvme ocp smart-add-log <dev> -o json`.
func (c *Client) Telemetry(ctx context.Context, device, source string) (telemetry.Document, error) {
	errFactory := errors.New()

	subcommand := strings.Fields(source)
	if len(subcommand) == 0 {
		return nil, errFactory.WithData(ErrUnknownSource, source)
	}

	out, err := c.run(ctx, subcommand, device)
	if err != nil {
		return nil, errFactory.Wrap(ErrTelemetryFetch, err)
	}

	doc, err := Decode(out)
	if err != nil {
		return nil, errFactory.Wrap(ErrTelemetryFetch, err)
	}

	return doc, nil
}

func (c *Client) run(ctx context.Context, subcommand []string, device string) ([]byte, error) {
	args := append(append([]string{}, subcommand...), filepath.Join(c.cfg.DeviceDir, device), "-o", "json")

	name := c.cfg.Binary
	if c.cfg.Sudo {
		args = append([]string{name}, args...)
		name = "sudo"
	}

	c.log.Debug().Str("command", name).Strs("args", args).Msg("Running command")

	return c.runner.Run(ctx, name, args...)
}

//go:build !linux

package capture

import (
	"encoding/hex"
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/Dadangdut33/speech-translate/pkg/audio"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

// NewContext connects to the default malgo (miniaudio) backend.
func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("malgo init: %w", err)
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices(kind Kind) ([]DeviceInfo, error) {
	deviceType := malgo.Capture
	if kind == Loopback {
		// Loopback records a playback device's output.
		deviceType = malgo.Playback
	}
	devices, err := m.ctx.Devices(deviceType)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	result := make([]DeviceInfo, 0, len(devices))
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:      hex.EncodeToString(d.ID.Pointer()[:]),
			Name:    d.Name(),
			Kind:    kind,
			Default: d.IsDefault != 0,
		})
	}
	return result, nil
}

func (m *malgoContext) NewStream(cfg Config, fn DataFunc) (Stream, error) {
	deviceType := malgo.Capture
	if cfg.Kind == Loopback {
		deviceType = malgo.Loopback
	}
	deviceConfig := malgo.DefaultDeviceConfig(deviceType)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = cfg.Channels
	deviceConfig.SampleRate = cfg.SampleRate

	if cfg.DeviceID != "" {
		idBytes, err := hex.DecodeString(cfg.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid device ID %q", audio.ErrDeviceUnavailable, cfg.DeviceID)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		if cfg.Kind == Loopback {
			// For loopback the playback device to monitor goes in the
			// playback slot of the config.
			deviceConfig.Playback.DeviceID = devID.Pointer()
		} else {
			deviceConfig.Capture.DeviceID = devID.Pointer()
		}
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			fn(data)
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", audio.ErrDeviceOpenFailed, err)
	}
	return &malgoStream{device: dev}, nil
}

func (m *malgoContext) Close() error {
	if err := m.ctx.Uninit(); err != nil {
		return fmt.Errorf("malgo uninit: %w", err)
	}
	m.ctx.Free()
	return nil
}

type malgoStream struct {
	device *malgo.Device
}

func (s *malgoStream) Start() error {
	if err := s.device.Start(); err != nil {
		return fmt.Errorf("%w: %v", audio.ErrDeviceOpenFailed, err)
	}
	return nil
}

func (s *malgoStream) Stop() {
	s.device.Stop()
}

func (s *malgoStream) Close() {
	s.device.Uninit()
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. gogpu.App) owns the device and passes a handle in;
// the renderer never creates one. Shared ownership keeps batch output
// drawing into the same device the rest of the application uses.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, giving the
// integration point a local name while staying compatible with the
// gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// halFromHandle extracts the HAL device and queue from a host handle.
// The handle must additionally expose HalDevice() any and HalQueue()
// any returning hal.Device and hal.Queue, the way gogpu's context
// does.
func halFromHandle(handle DeviceHandle) (hal.Device, hal.Queue, error) {
	if handle == nil {
		return nil, nil, fmt.Errorf("render: device handle is nil")
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := handle.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("render: device handle does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, fmt.Errorf("render: handle HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, fmt.Errorf("render: handle HalQueue is not hal.Queue")
	}
	return device, queue, nil
}

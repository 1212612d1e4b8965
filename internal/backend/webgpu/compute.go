//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// compileShader compiles WGSL code into a cached ShaderModule.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, ok := b.shaders[name]; ok {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()
	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates one with
// an auto layout.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, ok := b.pipelines[name]; ok {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()
	return pipeline
}

// createBuffer creates a GPU buffer holding data.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // zero-copy view of the mapped range
	copy(unsafe.Slice((*byte)(mappedPtr), size), data)
	buffer.Unmap()
	return buffer
}

// createParams creates the 16-byte aligned uniform holding the element count.
func (b *Backend) createParams(n int) *wgpu.Buffer {
	params := make([]byte, 16)
	//nolint:gosec // G115: element counts are non-negative
	binary.LittleEndian.PutUint32(params[0:4], uint32(n))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             16,
		MappedAtCreation: wgpu.True,
	})
	mappedPtr := buffer.GetMappedRange(0, 16)
	//nolint:gosec // zero-copy view of the mapped range
	copy(unsafe.Slice((*byte)(mappedPtr), 16), params)
	buffer.Unmap()
	return buffer
}

// readBuffer copies a storage buffer back to host memory through a staging
// buffer.
func (b *Backend) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	mappedPtr := staging.GetMappedRange(0, size)
	result := make([]byte, size)
	//nolint:gosec // zero-copy view of the mapped range
	copy(result, unsafe.Slice((*byte)(mappedPtr), size))
	staging.Unmap()
	return result, nil
}

// dispatch binds inputs, a result buffer and the params uniform in that
// order, runs the kernel and reads the result back.
func (b *Backend) dispatch(name, code string, n int, inputs ...[]byte) ([]byte, error) {
	if n == 0 {
		return []byte{}, nil
	}
	pipeline := b.getOrCreatePipeline(name, b.compileShader(name, code))
	size := uint64(len(inputs[0]))

	entries := make([]wgpu.BindGroupEntry, 0, len(inputs)+2)
	for i, data := range inputs {
		buf := b.createBuffer(data, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		defer buf.Release()
		//nolint:gosec // G115: binding index is small
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf, 0, size))
	}
	result := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer result.Release()
	params := b.createParams(n)
	defer params.Release()

	//nolint:gosec // G115: binding index is small
	next := uint32(len(inputs))
	entries = append(entries,
		wgpu.BufferBindingEntry(next, result, 0, size),
		wgpu.BufferBindingEntry(next+1, params, 0, 16),
	)
	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	//nolint:gosec // G115: workgroup count is non-negative
	pass.DispatchWorkgroups(uint32((n+workgroupSize-1)/workgroupSize), 1, 1)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))

	return b.readBuffer(result, size)
}

func (b *Backend) runBinary(name, code string, x, y []byte, n int) ([]byte, error) {
	return b.dispatch(name, code, n, x, y)
}

func (b *Backend) runUnary(name, code string, in []byte, n int) ([]byte, error) {
	return b.dispatch(name, code, n, in)
}

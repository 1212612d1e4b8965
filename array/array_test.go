// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"

	"github.com/born-ml/elementwise/array"
)

func TestFromSlice(t *testing.T) {
	r, err := array.FromSlice([]float32{1, 2, 3, 4}, array.Shape{2, 2})
	require.NoError(t, err)

	assert.Equal(t, array.Float32, r.DType())
	assert.Equal(t, array.Host, r.Device())
	assert.Equal(t, array.Shape{2, 2}, r.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, array.ToSlice[float32](r))

	_, err = array.FromSlice([]float32{1, 2, 3}, array.Shape{2, 2})
	assert.Error(t, err)
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, []int16{0, 0, 0}, array.ToSlice[int16](array.Zeros[int16](array.Shape{3})))
	assert.Equal(t, []bool{true, true}, array.ToSlice[bool](array.Full(array.Shape{2}, true)))

	r, err := array.New(array.Shape{0}, array.Complex64)
	require.NoError(t, err)
	assert.Equal(t, 0, r.NumElements())

	h := array.Vector(float16.Fromfloat32(1.5))
	assert.Equal(t, array.Float16, h.DType())
	assert.Equal(t, array.Float16, array.TypeOf[array.Half]())
}

func TestDataTypes(t *testing.T) {
	all := array.AllDataTypes()
	require.Len(t, all, 12)
	for _, dt := range all {
		parsed, err := array.ParseDataType(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, parsed)
	}
}

func TestDataIsView(t *testing.T) {
	r := array.Vector[int64](1, 2)
	array.Data[int64](r)[0] = 7
	assert.Equal(t, []int64{7, 2}, array.ToSlice[int64](r))
}

package pak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_EnumValues(t *testing.T) {
	// The numeric API values are fixed by the format's history.
	assert.Equal(t, Version(1), V1)
	assert.Equal(t, Version(8), V8A)
	assert.Equal(t, Version(9), V8B)
	assert.Equal(t, Version(10), V9)
	assert.Equal(t, Version(11), V10)
	assert.Equal(t, Version(12), V11)
	assert.Equal(t, V11, VersionLatest)
}

func TestVersion_MajorMapping(t *testing.T) {
	majors := map[Version]uint32{
		V1: 1, V2: 2, V3: 3, V4: 4, V5: 5, V6: 6, V7: 7,
		V8A: 8, V8B: 8, V9: 9, V10: 10, V11: 11,
	}
	for v, major := range majors {
		assert.Equal(t, major, v.Major(), "version %s", v)
	}
}

func TestVersion_Supported(t *testing.T) {
	assert.False(t, Version(0).Supported())
	assert.True(t, V1.Supported())
	assert.True(t, V11.Supported())
	assert.False(t, Version(13).Supported())
}

func TestVersion_String(t *testing.T) {
	assert.Equal(t, "V1", V1.String())
	assert.Equal(t, "V8A", V8A.String())
	assert.Equal(t, "V8B", V8B.String())
	assert.Equal(t, "V10", V10.String())
	assert.Equal(t, "unknown", Version(99).String())
}

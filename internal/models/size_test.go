package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeListNormalize(t *testing.T) {
	t.Parallel()

	got, err := SizeList{SizeOneSize, SizeLarge, SizeSmall, SizeLarge, SizeMedium}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, SizeList{SizeSmall, SizeMedium, SizeLarge, SizeOneSize}, got)

	_, err = SizeList{"XXL"}.Normalize()
	require.Error(t, err)
}

func TestParseSize(t *testing.T) {
	t.Parallel()

	s, err := ParseSize("Medium")
	require.NoError(t, err)
	assert.Equal(t, SizeMedium, s)

	_, err = ParseSize("medium")
	require.Error(t, err)
}

func TestEnumsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
	assert.True(t, StatusDelivering.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}

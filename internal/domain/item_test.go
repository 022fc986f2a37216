package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusAvailable))
	assert.True(t, ValidStatus(StatusClaimed))
	assert.True(t, ValidStatus(StatusDonated))
	assert.False(t, ValidStatus("pending"))
	assert.False(t, ValidStatus(""))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{StatusAvailable, StatusClaimed, true},
		{StatusClaimed, StatusDonated, true},
		{StatusAvailable, StatusDonated, false}, // 不许跳级
		{StatusClaimed, StatusAvailable, false}, // 不许回退
		{StatusDonated, StatusClaimed, false},
		{StatusDonated, StatusDonated, false}, // 原地不算迁移
		{"pending", StatusClaimed, false},
		{StatusAvailable, "gone", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHashrate(t *testing.T) {
	assert.Equal(t, "600.00 EH/s", formatHashrate(6e20))
	assert.Equal(t, "1.50 PH/s", formatHashrate(1.5e15))
	assert.Equal(t, "50.00 TH/s", formatHashrate(5e13))
	assert.Equal(t, "2.50 KH/s", formatHashrate(2500))
	assert.Equal(t, "0 H/s", formatHashrate(0))
}

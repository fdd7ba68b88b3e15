/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanReadableSize(t *testing.T) {
	tests := map[int64]string{
		0:             "0 B",
		999:           "999 B",
		1000:          "1.0 kB",
		1536:          "1.5 kB",
		2_500_000:     "2.5 MB",
		7_000_000_000: "7.0 GB",
	}

	for in, want := range tests {
		assert.Equal(t, want, humanReadableSize(in), "size %d", in)
	}
}

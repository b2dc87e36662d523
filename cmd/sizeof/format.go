// ABOUTME: Byte count formatting for command output
// ABOUTME: Renders sizes raw or with binary unit suffixes

package main

import (
	"fmt"
	"strconv"
)

// humanSize formats n using a binary unit suffix
func humanSize(n uint64) string {
	const (
		_            = iota
		kilo float64 = 1 << (10 * iota)
		mega
		giga
	)
	value := float64(n)
	switch {
	case value >= giga:
		return fmt.Sprintf("%.2f GiB", value/giga)
	case value >= mega:
		return fmt.Sprintf("%.2f MiB", value/mega)
	case value >= kilo:
		return fmt.Sprintf("%.2f KiB", value/kilo)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatSize(n uint64, human bool) string {
	if human {
		return humanSize(n)
	}
	return strconv.FormatUint(n, 10)
}

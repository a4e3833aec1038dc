package util

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ExpandRange expands a range specification into individual values
// Supports formats like:
//   - "1-5" -> [1, 2, 3, 4, 5]
//   - "1,3,5" -> [1, 3, 5]
//   - "1-3,5,7-9" -> [1, 2, 3, 5, 7, 8, 9]
func ExpandRange(spec string) ([]int, error) {
	return expandRange(spec, -1)
}

// ExpandRangeMax is ExpandRange with every value required to lie in
// [0, limit). Range bounds are checked before the range is expanded.
func ExpandRangeMax(spec string, limit int) ([]int, error) {
	return expandRange(spec, limit)
}

func expandRange(spec string, limit int) ([]int, error) {
	if spec == "" {
		return nil, nil
	}

	var result []int
	parts := strings.Split(spec, ",")

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			// Range: "1-5"
			rangeParts := strings.SplitN(part, "-", 2)
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", part)
			}

			start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid start value in range %s: %v", part, err)
			}

			end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid end value in range %s: %v", part, err)
			}

			if start > end {
				return nil, fmt.Errorf("start value %d greater than end value %d in range %s", start, end, part)
			}
			if limit >= 0 {
				if err := CheckRange("value", start, limit); err != nil {
					return nil, err
				}
				if err := CheckRange("value", end, limit); err != nil {
					return nil, err
				}
			}

			for i := start; i <= end; i++ {
				result = append(result, i)
			}
		} else {
			// Single value
			val, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid value: %s", part)
			}
			if limit >= 0 {
				if err := CheckRange("value", val, limit); err != nil {
					return nil, err
				}
			}
			result = append(result, val)
		}
	}

	// Sort and deduplicate
	sort.Ints(result)
	return dedupInts(result), nil
}

// ExpandPipePortRange expands a pipe:port range specification
// Format: "pipe-range:local-port-range" e.g., "0-1:0-3"
// Returns pairs of (pipe, localPort)
func ExpandPipePortRange(spec string) ([][2]int, error) {
	return expandPipePortRange(spec, -1, -1)
}

// ExpandPipePortRangeMax is ExpandPipePortRange with pipes bounded by
// pipeLimit and local ports by portLimit, checked before expansion.
func ExpandPipePortRangeMax(spec string, pipeLimit, portLimit int) ([][2]int, error) {
	return expandPipePortRange(spec, pipeLimit, portLimit)
}

func expandPipePortRange(spec string, pipeLimit, portLimit int) ([][2]int, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid pipe:port format: %s (expected 'pipe-range:port-range')", spec)
	}

	pipes, err := expandRange(parts[0], pipeLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid pipe range: %w", err)
	}

	ports, err := expandRange(parts[1], portLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid port range: %w", err)
	}

	var result [][2]int
	for _, pipe := range pipes {
		for _, port := range ports {
			result = append(result, [2]int{pipe, port})
		}
	}

	return result, nil
}

// CompactRange compacts a list of integers into range notation
// [1, 2, 3, 5, 7, 8, 9] -> "1-3,5,7-9"
func CompactRange(values []int) string {
	if len(values) == 0 {
		return ""
	}

	// Sort and deduplicate
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	sorted = dedupInts(sorted)

	var parts []string
	start := sorted[0]
	end := sorted[0]

	for i := 1; i < len(sorted); i++ {
		if sorted[i] == end+1 {
			end = sorted[i]
		} else {
			parts = append(parts, formatRange(start, end))
			start = sorted[i]
			end = sorted[i]
		}
	}
	parts = append(parts, formatRange(start, end))

	return strings.Join(parts, ",")
}

func formatRange(start, end int) string {
	if start == end {
		return strconv.Itoa(start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}

func dedupInts(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	result := []int{sorted[0]}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			result = append(result, sorted[i])
		}
	}
	return result
}

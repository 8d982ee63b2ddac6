package block

import "fmt"

// encode appends the run-length encoding of data to runs.
// Runs longer than limit are split into consecutive entries.
func encode[Value comparable](runs []Run[Value], data []Value, limit uint32) []Run[Value] {
	if len(data) == 0 {
		return runs
	}
	var (
		current = data[0]
		length  uint64
	)
	for _, value := range data {
		if value == current {
			length++
			continue
		}
		runs = appendRuns(runs, current, length, limit)
		current, length = value, 1
	}
	return appendRuns(runs, current, length, limit)
}

// appendRuns appends as many runs of value as are needed
// to represent length elements without exceeding limit.
func appendRuns[Value comparable](runs []Run[Value], value Value, length uint64, limit uint32) []Run[Value] {
	for length > uint64(limit) {
		runs = append(runs, Run[Value]{Length: limit, Value: value})
		length -= uint64(limit)
	}
	if length != 0 {
		runs = append(runs, Run[Value]{Length: uint32(length), Value: value})
	}
	return runs
}

func decode[Value comparable](runs []Run[Value], count int) ([]Value, error) {
	var (
		data = make([]Value, count)
		next int
	)
	for _, run := range runs {
		end := next + int(run.Length)
		if end > count {
			return nil, fmt.Errorf(
				"%w: runs exceed %d elements",
				ErrCorruptRuns, count)
		}
		for i := next; i < end; i++ {
			data[i] = run.Value
		}
		next = end
	}
	if next != count {
		return nil, fmt.Errorf(
			"%w: runs cover %d of %d elements",
			ErrCorruptRuns, next, count)
	}
	return data, nil
}

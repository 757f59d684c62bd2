package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedLine is returned when a line of an access trace cannot be
// parsed.
var ErrMalformedLine = errors.New("malformed access trace line")

// AccessKind tells if an access reads or writes memory.
type AccessKind int

// A list of all the access kinds.
const (
	AccessRead AccessKind = iota
	AccessWrite
)

func (k AccessKind) String() string {
	switch k {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return fmt.Sprintf("AccessKind(%d)", int(k))
	}
}

// An Access is one memory access replayed against an MMU. Reads and writes
// move one word.
type Access struct {
	Kind  AccessKind
	VAddr uint64
	Value uint64
}

// ParseAccesses reads an access trace. Each line is either "R <vaddr>" or
// "W <vaddr> <value>". Numbers take the Go literal syntax, so both 4096 and
// 0x1000 are accepted. Text after a '#' is ignored, as are blank lines.
func ParseAccesses(r io.Reader) ([]Access, error) {
	var accesses []Access

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		access, err := parseAccess(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		accesses = append(accesses, access)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return accesses, nil
}

func parseAccess(fields []string) (Access, error) {
	var access Access

	switch strings.ToUpper(fields[0]) {
	case "R":
		if len(fields) != 2 {
			return access, fmt.Errorf("%w: read takes one address",
				ErrMalformedLine)
		}

		access.Kind = AccessRead
	case "W":
		if len(fields) != 3 {
			return access, fmt.Errorf("%w: write takes an address and a value",
				ErrMalformedLine)
		}

		access.Kind = AccessWrite
	default:
		return access, fmt.Errorf("%w: unknown operation %q",
			ErrMalformedLine, fields[0])
	}

	vAddr, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return access, fmt.Errorf("%w: %v", ErrMalformedLine, err)
	}

	access.VAddr = vAddr

	if access.Kind == AccessWrite {
		access.Value, err = strconv.ParseUint(fields[2], 0, 64)
		if err != nil {
			return access, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
	}

	return access, nil
}

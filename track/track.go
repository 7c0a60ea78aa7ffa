package track

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Fix is a single GPS fix.
type Fix struct {
	// Lat is latitude in degrees
	Lat float64
	// Lon is longitude in degrees
	Lon float64
}

// Reader reads GPS fixes from a textual stream of comma separated
// "latitude,longitude" lines. Lines whose first two comma separated
// fields do not parse as floating point numbers are skipped; fields
// beyond the second one are ignored.
type Reader struct {
	s   *bufio.Scanner
	fix Fix
}

// NewReader creates a new Reader which scans r line by line and returns it.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		s: bufio.NewScanner(r),
	}
}

// Scan advances the Reader to the next valid fix, which is then available
// through the Fix method. It returns false when the end of the stream is
// reached or reading fails.
func (r *Reader) Scan() bool {
	for r.s.Scan() {
		fields := strings.SplitN(r.s.Text(), ",", 3)
		if len(fields) < 2 {
			continue
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			continue
		}

		lon, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}

		r.fix = Fix{Lat: lat, Lon: lon}

		return true
	}

	return false
}

// Fix returns the most recently scanned fix.
func (r *Reader) Fix() Fix {
	return r.fix
}

// Err returns the first error encountered by the underlying scanner.
func (r *Reader) Err() error {
	return r.s.Err()
}

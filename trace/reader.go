// Package trace reads access traces for replaying against a replacement
// engine. A trace is a CSV file with one access per line:
//
//	pc,address,type
//
// where pc and address are hex (with or without the 0x prefix) and type is
// one of load, rfo, prefetch, or writeback.
package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/llcpolicy/replacement"
)

// A Record is one access in a trace.
type Record struct {
	PC      uint64
	Address uint64
	Type    replacement.AccessType
}

var accessTypeNames = map[string]replacement.AccessType{
	"load":      replacement.AccessLoad,
	"rfo":       replacement.AccessRFO,
	"prefetch":  replacement.AccessPrefetch,
	"writeback": replacement.AccessWriteback,
}

// A Reader streams records out of a trace file.
type Reader struct {
	file *os.File
	csv  *csv.Reader
	line int
}

// NewReader opens a trace file.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}

	c := csv.NewReader(file)
	c.FieldsPerRecord = 3
	c.TrimLeadingSpace = true

	return &Reader{file: file, csv: c}, nil
}

// Next returns the next record. It returns io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	fields, err := r.csv.Read()
	if err != nil {
		return Record{}, err
	}

	r.line++

	pc, err := parseHex(fields[0])
	if err != nil {
		return Record{}, fmt.Errorf("trace line %d: pc: %w", r.line, err)
	}

	addr, err := parseHex(fields[1])
	if err != nil {
		return Record{}, fmt.Errorf("trace line %d: address: %w", r.line, err)
	}

	accessType, ok := accessTypeNames[strings.ToLower(fields[2])]
	if !ok {
		return Record{}, fmt.Errorf("trace line %d: unknown access type %q",
			r.line, fields[2])
	}

	return Record{PC: pc, Address: addr, Type: accessType}, nil
}

// ReadAll drains the rest of the trace.
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record

	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}

		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	return strconv.ParseUint(s, 16, 64)
}

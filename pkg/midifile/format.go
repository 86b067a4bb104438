// Package midifile decodes Standard MIDI Files into note events and writes
// note events back out as SMF data.
package midifile

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format represents a file format
type Format string

const (
	FormatMIDI    Format = "midi"
	FormatUnknown Format = "unknown"
)

const (
	headerChunk = "MThd"
	trackChunk  = "MTrk"
)

var midiExtensions = []string{".mid", ".midi", ".smf", ".kar"}

// Extensions lists the file extensions recognized as MIDI
func Extensions() []string {
	return append([]string(nil), midiExtensions...)
}

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range midiExtensions {
		if ext == e {
			return FormatMIDI
		}
	}
	return FormatUnknown
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) >= 4 && string(data[:4]) == headerChunk {
		return FormatMIDI
	}
	return FormatUnknown
}

// ReadFile reads and decodes a MIDI file from disk
func ReadFile(filename string) (*Result, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Decode(data)
}

// validate walks the chunk structure so truncated files are rejected before
// they reach the track parser.
func validate(data []byte) error {
	if DetectFormatFromContent(data) != FormatMIDI {
		return decodeErr(ErrBadSignature, "not a Standard MIDI File")
	}
	if len(data) < 14 {
		return decodeErr(ErrTruncated, "header is %d bytes", len(data))
	}

	headerLen := binary.BigEndian.Uint32(data[4:8])
	if headerLen < 6 {
		return decodeErr(ErrMalformed, "header length %d", headerLen)
	}
	format := binary.BigEndian.Uint16(data[8:10])
	if format > 2 {
		return decodeErr(ErrUnsupportedFormat, "SMF format %d", format)
	}
	tracks := int(binary.BigEndian.Uint16(data[10:12]))

	offset := uint64(8) + uint64(headerLen)
	if offset > uint64(len(data)) {
		return decodeErr(ErrTruncated, "header extends past end of data")
	}

	found := 0
	for offset < uint64(len(data)) && found < tracks {
		if uint64(len(data))-offset < 8 {
			return decodeErr(ErrTruncated, "incomplete chunk header at byte %d", offset)
		}
		chunkLen := uint64(binary.BigEndian.Uint32(data[offset+4 : offset+8]))
		if offset+8+chunkLen > uint64(len(data)) {
			return decodeErr(ErrTruncated, "chunk at byte %d needs %d bytes", offset, chunkLen)
		}
		if string(data[offset:offset+4]) == trackChunk {
			found++
		}
		offset += 8 + chunkLen
	}
	if found < tracks {
		return decodeErr(ErrTruncated, "found %d of %d tracks", found, tracks)
	}
	return nil
}

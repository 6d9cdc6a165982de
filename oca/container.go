// Package oca reads and modifies the filter arrays of calibration container
// files. A container is a JSON document with a top-level "channels" array in
// which each element carries a "filter" field (a flat array of doubles) and
// optionally a "filterLV" low-volume variant of the same shape. Only those
// two fields are interpreted; everything else in the document is preserved
// verbatim through a load/modify/save cycle.
package oca

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// Errors raised while loading or modifying containers.
var (
	// ErrInvalidContainer indicates the document is not a container with a
	// channels array.
	ErrInvalidContainer = errors.New("oca: invalid container document")

	// ErrLengthMismatch indicates an injected filter's length differs from
	// the channel's existing filter length.
	ErrLengthMismatch = errors.New("oca: filter length mismatch")

	// ErrNonFinite indicates a NaN or infinite coefficient in a filter
	// destined for injection.
	ErrNonFinite = errors.New("oca: non-finite coefficient")
)

// Advisory bounds for a filter's first coefficient, which typically encodes
// direct-path gain. Values outside this range are suspicious but not fatal.
const (
	advisoryFirstCoeffMin = 0.01
	advisoryFirstCoeffMax = 5.0
)

const containerIndent = "  "

// Container is a loaded calibration document. Fields of the document other
// than the per-channel filter arrays are retained untouched.
type Container struct {
	doc      map[string]json.RawMessage
	channels []channel
}

// channel keeps a channel object's raw fields alongside its decoded filters.
type channel struct {
	fields   map[string]json.RawMessage
	filter   []float64
	filterLV []float64
	hasLV    bool
}

// Load parses a container document from r.
func Load(r io.Reader) (*Container, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContainer, err)
	}

	rawChannels, ok := doc["channels"]
	if !ok {
		return nil, fmt.Errorf("%w: missing channels array", ErrInvalidContainer)
	}

	var rawList []json.RawMessage
	if err := json.Unmarshal(rawChannels, &rawList); err != nil {
		return nil, fmt.Errorf("%w: channels is not an array: %v", ErrInvalidContainer, err)
	}

	channels := make([]channel, len(rawList))
	for i, raw := range rawList {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%w: channel %d is not an object: %v", ErrInvalidContainer, i, err)
		}

		ch := channel{fields: fields}
		if rawFilter, ok := fields["filter"]; ok {
			if err := json.Unmarshal(rawFilter, &ch.filter); err != nil {
				return nil, fmt.Errorf("%w: channel %d filter: %v", ErrInvalidContainer, i, err)
			}
		}
		if rawLV, ok := fields["filterLV"]; ok {
			ch.hasLV = true
			if err := json.Unmarshal(rawLV, &ch.filterLV); err != nil {
				return nil, fmt.Errorf("%w: channel %d filterLV: %v", ErrInvalidContainer, i, err)
			}
		}
		channels[i] = ch
	}

	return &Container{doc: doc, channels: channels}, nil
}

// LoadFile opens and parses a container file. See Load.
func LoadFile(path string) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("oca: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// NumChannels returns the number of channels in the container.
func (c *Container) NumChannels() int {
	return len(c.channels)
}

// Filter returns a copy of the filter array of the given channel.
func (c *Container) Filter(ch int) ([]float64, error) {
	if ch < 0 || ch >= len(c.channels) {
		return nil, fmt.Errorf("%w: channel %d out of range", ErrInvalidContainer, ch)
	}
	return append([]float64(nil), c.channels[ch].filter...), nil
}

// FilterLength returns the length of the given channel's filter array, the
// length any injected replacement must match.
func (c *Container) FilterLength(ch int) (int, error) {
	if ch < 0 || ch >= len(c.channels) {
		return 0, fmt.Errorf("%w: channel %d out of range", ErrInvalidContainer, ch)
	}
	return len(c.channels[ch].filter), nil
}

// HasLowVolume reports whether the channel carries a filterLV variant.
func (c *Container) HasLowVolume(ch int) bool {
	if ch < 0 || ch >= len(c.channels) {
		return false
	}
	return c.channels[ch].hasLV
}

// Inject replaces the filter array of the given channel. The replacement must
// match the existing filter's length exactly and contain only finite values.
// When copyLV is set and the channel carries a filterLV field, the same
// coefficients are written there as well.
func (c *Container) Inject(ch int, coeffs []float64, copyLV bool) error {
	if ch < 0 || ch >= len(c.channels) {
		return fmt.Errorf("%w: channel %d out of range", ErrInvalidContainer, ch)
	}

	expected := len(c.channels[ch].filter)
	if len(coeffs) != expected {
		return fmt.Errorf("%w: channel %d expects %d taps, got %d", ErrLengthMismatch, ch, expected, len(coeffs))
	}

	if err := CheckFinite(coeffs); err != nil {
		return err
	}

	c.channels[ch].filter = append([]float64(nil), coeffs...)
	if copyLV && c.channels[ch].hasLV {
		c.channels[ch].filterLV = append([]float64(nil), coeffs...)
	}
	return nil
}

// CheckFinite returns ErrNonFinite if any coefficient is NaN or infinite.
func CheckFinite(coeffs []float64) error {
	for i, v := range coeffs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: index %d", ErrNonFinite, i)
		}
	}
	return nil
}

// AdvisoryCheck returns a human-readable warning when the filter's first
// coefficient falls outside the range typical for the format, or an empty
// string when it looks plausible. It never fails the injection.
func AdvisoryCheck(coeffs []float64) string {
	if len(coeffs) == 0 {
		return "filter is empty"
	}
	first := math.Abs(coeffs[0])
	if first < advisoryFirstCoeffMin || first > advisoryFirstCoeffMax {
		return fmt.Sprintf("unusual first coefficient %.6f (expected magnitude %.2f to %.2f)",
			coeffs[0], advisoryFirstCoeffMin, advisoryFirstCoeffMax)
	}
	return ""
}

// Save writes the container document to w, re-serializing the channel filter
// arrays and leaving all other fields as loaded.
func (c *Container) Save(w io.Writer) error {
	rawList := make([]json.RawMessage, len(c.channels))
	for i := range c.channels {
		ch := &c.channels[i]

		rawFilter, err := json.Marshal(ch.filter)
		if err != nil {
			return fmt.Errorf("oca: channel %d filter: %w", i, err)
		}
		ch.fields["filter"] = rawFilter

		if ch.hasLV {
			rawLV, err := json.Marshal(ch.filterLV)
			if err != nil {
				return fmt.Errorf("oca: channel %d filterLV: %w", i, err)
			}
			ch.fields["filterLV"] = rawLV
		}

		raw, err := json.Marshal(ch.fields)
		if err != nil {
			return fmt.Errorf("oca: channel %d: %w", i, err)
		}
		rawList[i] = raw
	}

	rawChannels, err := json.Marshal(rawList)
	if err != nil {
		return fmt.Errorf("oca: channels: %w", err)
	}
	c.doc["channels"] = rawChannels

	enc := json.NewEncoder(w)
	enc.SetIndent("", containerIndent)
	if err := enc.Encode(c.doc); err != nil {
		return fmt.Errorf("oca: encoding container: %w", err)
	}
	return nil
}

// SaveFile writes the container document to a file. See Save.
func (c *Container) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("oca: %w", err)
	}
	if err := c.Save(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

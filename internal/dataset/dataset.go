// Package dataset loads the facility records used to seed the directory.
//
// A dataset is an ordered list of facilities in JSON or YAML. The bundled
// dataset is embedded in the binary and used when no file is configured.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"gopkg.in/yaml.v3"
)

//go:embed facilities.json
var bundled []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid dataset")

// Format identifies a dataset encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// idNamespace scopes generated facility ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/leapstack-labs/facilitydir"))

// Default returns the bundled dataset.
func Default() ([]core.Facility, error) {
	facilities, err := Parse(bundled, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("bundled dataset: %w", err)
	}
	return facilities, nil
}

// Load reads a dataset from path. The format follows the file extension.
// An empty path returns the bundled dataset.
func Load(path string) ([]core.Facility, error) {
	if path == "" {
		return Default()
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	facilities, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return facilities, nil
}

// FormatFromPath maps a file extension to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported dataset extension %q (expected .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Parse decodes data and normalizes the result.
func Parse(data []byte, format Format) ([]core.Facility, error) {
	var facilities []core.Facility

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &facilities); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&facilities); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}

	return Normalize(facilities)
}

// Normalize fills in missing ids, removes repeated amenity names within a
// facility and validates every record. The input slice is not modified.
func Normalize(facilities []core.Facility) ([]core.Facility, error) {
	out := make([]core.Facility, 0, len(facilities))
	seen := make(map[string]int, len(facilities))

	for i, f := range facilities {
		f.Name = strings.TrimSpace(f.Name)
		f.ID = strings.TrimSpace(f.ID)
		if f.ID == "" {
			f.ID = FacilityID(f.Name, f.Address)
		}
		f.Facilities = uniqueAmenities(f.Facilities)

		if err := validate(f); err != nil {
			return nil, fmt.Errorf("%w: facility %d (%q): %v", ErrInvalid, i, f.Name, err)
		}
		if first, dup := seen[f.ID]; dup {
			return nil, fmt.Errorf("%w: facility %d (%q): duplicate id %q (first at %d)", ErrInvalid, i, f.Name, f.ID, first)
		}
		seen[f.ID] = i

		out = append(out, f)
	}

	return out, nil
}

// FacilityID derives a stable id from name and address.
func FacilityID(name, address string) string {
	return uuid.NewSHA1(idNamespace, []byte(name+"\n"+address)).String()
}

func validate(f core.Facility) error {
	if f.Name == "" {
		return errors.New("name is required")
	}
	if f.Location.Latitude < -90 || f.Location.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", f.Location.Latitude)
	}
	if f.Location.Longitude < -180 || f.Location.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", f.Location.Longitude)
	}
	for _, a := range f.Facilities {
		if strings.TrimSpace(a) == "" {
			return errors.New("amenity names must not be blank")
		}
	}
	return nil
}

// uniqueAmenities drops repeated names, keeping the first occurrence.
// Always returns a non-nil slice.
func uniqueAmenities(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

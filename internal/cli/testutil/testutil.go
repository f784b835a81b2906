// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/spf13/cobra"
)

// Project is a temporary working directory with a dataset file.
type Project struct {
	Dir         string
	DatasetPath string
	Database    string
	Facilities  []core.Facility
}

// SetupTestProject creates a temporary project whose dataset holds n
// facilities named "Facility 000".."Facility n-1". Every facility has WiFi;
// every third also has Parking.
func SetupTestProject(t *testing.T, n int) *Project {
	t.Helper()

	tmpDir := t.TempDir()
	facilities := make([]core.Facility, 0, n)
	for i := 0; i < n; i++ {
		amenities := []string{"WiFi"}
		if i%3 == 0 {
			amenities = append(amenities, "Parking")
		}
		facilities = append(facilities, core.Facility{
			ID:         fmt.Sprintf("fac-%03d", i),
			Name:       fmt.Sprintf("Facility %03d", i),
			Address:    fmt.Sprintf("%d Test Street", i),
			Location:   core.Location{Latitude: 51.5, Longitude: -0.1},
			Facilities: amenities,
		})
	}

	data, err := json.MarshalIndent(facilities, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode dataset: %v", err)
	}
	datasetPath := filepath.Join(tmpDir, "facilities.json")
	if err := os.WriteFile(datasetPath, data, 0600); err != nil {
		t.Fatalf("failed to create facilities.json: %v", err)
	}

	return &Project{
		Dir:         tmpDir,
		DatasetPath: datasetPath,
		Database:    filepath.Join(tmpDir, "facilitydir.db"),
		Facilities:  facilities,
	}
}

// RunCommand executes cmd with args and returns what it wrote.
func RunCommand(ctx context.Context, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// CountLines returns the number of lines containing substr.
func CountLines(s, substr string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

// Package validate checks an AWOC installation after install and restore
// operations: required payload files present, settings JSON well-formed, hook
// scripts executable. It returns structured reports; callers only consume the
// overall boolean and the message list, never re-derive checks.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/awoc-dev/awoc/internal/payload"
)

// CheckResult represents the result of a single validation check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// Report contains all validation check results for a target root.
type Report struct {
	Checks []CheckResult
	Passed bool
}

// Messages returns the messages of all failed checks.
func (r *Report) Messages() []string {
	var msgs []string
	for _, c := range r.Checks {
		if !c.Passed {
			msgs = append(msgs, fmt.Sprintf("%s: %s", c.Name, c.Message))
		}
	}
	return msgs
}

// Run validates the installation at targetRoot and returns a report.
func Run(targetRoot string) (*Report, error) {
	files, err := payload.Files()
	if err != nil {
		return nil, fmt.Errorf("enumerating payload files: %w", err)
	}

	report := &Report{Passed: true}
	add := func(c CheckResult) {
		report.Checks = append(report.Checks, c)
		if !c.Passed {
			report.Passed = false
		}
	}

	for _, rel := range files {
		add(checkFileExists(targetRoot, rel))
	}
	add(checkSettingsJSON(targetRoot))
	add(checkEntryPointExecutable(targetRoot))

	return report, nil
}

// checkFileExists verifies a required payload file is present.
func checkFileExists(targetRoot, rel string) CheckResult {
	path := filepath.Join(targetRoot, filepath.FromSlash(rel))
	if _, err := os.Stat(path); err != nil {
		return CheckResult{
			Name:    rel,
			Passed:  false,
			Message: "missing",
		}
	}
	return CheckResult{Name: rel, Passed: true, Message: "present"}
}

// checkSettingsJSON verifies the settings file parses as JSON. The contents
// are treated as an opaque blob.
func checkSettingsJSON(targetRoot string) CheckResult {
	name := "settings JSON syntax"
	path := filepath.Join(targetRoot, payload.SettingsFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return CheckResult{Name: name, Passed: false, Message: "settings.json unreadable"}
	}

	var blob any
	if err := json.Unmarshal(data, &blob); err != nil {
		return CheckResult{Name: name, Passed: false, Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return CheckResult{Name: name, Passed: true, Message: "valid JSON"}
}

// checkEntryPointExecutable verifies the session hook carries the executable
// bit. Skipped on Windows where the bit has no meaning.
func checkEntryPointExecutable(targetRoot string) CheckResult {
	name := "entry point executable"
	path := filepath.Join(targetRoot, filepath.FromSlash(payload.EntryPoint))

	info, err := os.Stat(path)
	if err != nil {
		return CheckResult{Name: name, Passed: false, Message: "hook script missing"}
	}

	if runtime.GOOS == "windows" {
		return CheckResult{Name: name, Passed: true, Message: "skipped on windows"}
	}

	if info.Mode().Perm()&0o111 == 0 {
		return CheckResult{
			Name:   name,
			Passed: false,
			Message: fmt.Sprintf("%s is not executable (mode %s)",
				strings.TrimPrefix(payload.EntryPoint, "hooks/"), info.Mode().Perm()),
		}
	}
	return CheckResult{Name: name, Passed: true, Message: "executable"}
}

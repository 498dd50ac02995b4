// Command validate checks the JSON files the game loads at runtime: option
// presets under configs/ and any imported problem sets passed as extra
// arguments. It prints a per-file report and exits non-zero if anything is
// invalid, which makes it usable as a pre-commit or CI gate.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mathquest/mathquest/game/engine"
)

// ValidationResult holds the outcome for a single file. Errors doubles as an
// info list when the file is valid (entries prefixed with "✓").
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validatePreset checks one preset file against the option ranges the engine
// accepts. It mirrors the checks the config manager applies at load time so
// a file that passes here will also load in the server.
func validatePreset(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var preset engine.Options
	if err := json.Unmarshal(data, &preset); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if preset.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: name")
	}

	if preset.BoardSize != engine.DefaultBoardSize {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("board_size must be %d, got %d", engine.DefaultBoardSize, preset.BoardSize))
	}

	if preset.MaxRounds <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("max_rounds must be positive, got %d", preset.MaxRounds))
	}

	if preset.TimerEnabled && preset.TimerDuration <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("timer_duration must be positive when the timer is enabled, got %d", preset.TimerDuration))
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", preset.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %d tiles, %d rounds", preset.BoardSize, preset.MaxRounds))
		timer := "off"
		if preset.TimerEnabled {
			timer = fmt.Sprintf("%ds", preset.TimerDuration)
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Timer: %s", timer))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Negative points: %t", preset.NegativePointsEnabled))
	}

	return result
}

// validateProblemSet checks an imported problem set file: the structural
// rules the engine enforces plus answer parseability, which the engine does
// not enforce (an unparseable answer silently becomes 0 in play, so it is
// almost always an authoring mistake).
func validateProblemSet(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var imported engine.ImportedProblems
	if err := json.Unmarshal(data, &imported); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateImportedProblems(&imported); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	unparseable := 0
	for _, p := range imported.Problems {
		cleaned := strings.Join(strings.Fields(p.Answer), "")
		if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
			unparseable++
			result.Errors = append(result.Errors, fmt.Sprintf("Problem %d answer %q is not numeric", p.ID, p.Answer))
		}
	}
	if unparseable > 0 {
		result.Valid = false
		return result
	}

	if imported.ProblemCount != "" {
		if declared, err := strconv.Atoi(imported.ProblemCount); err != nil || declared != len(imported.Problems) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("problem_count is %q but the file has %d problems", imported.ProblemCount, len(imported.Problems)))
			return result
		}
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Problems: %d", len(imported.Problems)))
	return result
}

// isProblemSet distinguishes a problem set file from a preset by shape: only
// problem sets carry a "problems" key.
func isProblemSet(filePath string) bool {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, ok := probe["problems"]
	return ok
}

func validateFile(filePath string) ValidationResult {
	if isProblemSet(filePath) {
		return validateProblemSet(filePath)
	}
	return validatePreset(filePath)
}

// main validates every *.json under ../configs plus any files given as
// arguments, printing a report per file and exiting 1 if any are invalid.
func main() {
	files, err := filepath.Glob(filepath.Join("../configs", "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}
	files = append(files, os.Args[1:]...)

	if len(files) == 0 {
		fmt.Println("No files to validate")
		return
	}

	allValid := true
	for _, file := range files {
		result := validateFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All files are valid!")
	} else {
		fmt.Println("❌ Some files have errors")
		os.Exit(1)
	}
}

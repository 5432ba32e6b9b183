// cmd/tools/registry-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	apperrors "venture-risk-workers/internal/common/errors"
	assessmentworkers "venture-risk-workers/internal/workers/assessment"
	"venture-risk-workers/pkg/registry"
)

func main() {
	path := flag.String("path", "configs/activity-registry.json", "Path to registry file")
	input := flag.String("input", "", "Optional JSON file of job variables to check against -task's input schema")
	task := flag.String("task", "", "Task type used with -input")
	flag.Parse()

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		fmt.Printf("Error loading registry: %v\n", err)
		os.Exit(1)
	}

	known := registry.Known{TaskTypes: assessmentworkers.TaskTypes}
	for code := range apperrors.BPMNErrorMapping {
		known.ErrorCodes = append(known.ErrorCodes, string(code))
	}
	if err := registry.Validate(reg, known); err != nil {
		fmt.Printf("Registry validation failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	if *input == "" {
		return
	}
	activity, ok := reg.Find(*task)
	if !ok {
		fmt.Printf("Task type %q is not registered\n", *task)
		os.Exit(1)
	}
	raw, err := os.ReadFile(*input)
	if err != nil {
		fmt.Printf("Error reading input: %v\n", err)
		os.Exit(1)
	}
	var vars map[string]interface{}
	if err := json.Unmarshal(raw, &vars); err != nil {
		fmt.Printf("Input is not a JSON object: %v\n", err)
		os.Exit(1)
	}
	if err := activity.ValidateInput(vars); err != nil {
		fmt.Printf("Input rejected: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Input accepted by %s.\n", activity.ID)
}

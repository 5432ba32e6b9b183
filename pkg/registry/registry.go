// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("decode registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Known is what the running binary actually serves.
type Known struct {
	TaskTypes  []string
	ErrorCodes []string
}

// Validate checks the registry for internal consistency and against the
// task types and error codes the binary knows. All problems are reported.
func Validate(reg *ActivityRegistry, known Known) error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	codes := make(map[string]bool, len(known.ErrorCodes))
	for _, c := range known.ErrorCodes {
		codes[c] = true
	}

	seen := make(map[string]bool)
	for _, a := range reg.Activities {
		switch {
		case a.ID == "":
			add("activity with task type %q has no id", a.TaskType)
			continue
		case seen[a.ID]:
			add("duplicate activity id %s", a.ID)
		}
		seen[a.ID] = true

		if a.DisplayName == "" {
			add("%s: displayName is required", a.ID)
		}
		if a.TaskType == "" {
			add("%s: taskType is required", a.ID)
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				add("%s: timeout %q: %v", a.ID, a.Timeout, err)
			}
		}
		if a.Retries < 0 {
			add("%s: retries must not be negative", a.ID)
		}
		for _, c := range a.ErrorCodes {
			if len(codes) > 0 && !codes[c] {
				add("%s: unknown error code %s", a.ID, c)
			}
		}
		for name, schema := range map[string]map[string]interface{}{"inputSchema": a.InputSchema, "outputSchema": a.OutputSchema} {
			if len(schema) == 0 {
				continue
			}
			if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
				add("%s: %s is not a valid JSON schema: %v", a.ID, name, err)
			}
		}
	}

	for _, tt := range known.TaskTypes {
		if _, ok := reg.Find(tt); !ok {
			add("task type %s is served but not registered", tt)
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("registry has %d problem(s):\n  %s", len(problems), strings.Join(problems, "\n  "))
}

// ValidateInput checks job variables against an activity's input schema.
func (a Activity) ValidateInput(vars map[string]interface{}) error {
	if len(a.InputSchema) == 0 {
		return nil
	}
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(a.InputSchema), gojsonschema.NewGoLoader(vars))
	if err != nil {
		return fmt.Errorf("%s: input schema: %w", a.ID, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, len(result.Errors()))
	for i, e := range result.Errors() {
		msgs[i] = e.String()
	}
	return fmt.Errorf("%s: %s", a.ID, strings.Join(msgs, "; "))
}

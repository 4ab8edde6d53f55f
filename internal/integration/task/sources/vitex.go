package sources

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/vitex-editor/vitex/internal/integration/task"
)

// VitexSource discovers tasks from .vitex/tasks.json files.
type VitexSource struct{}

// NewVitexSource creates a new Vitex tasks source.
func NewVitexSource() *VitexSource {
	return &VitexSource{}
}

// Name returns the source name.
func (s *VitexSource) Name() string {
	return "vitex"
}

// Patterns returns the file patterns this source handles.
func (s *VitexSource) Patterns() []string {
	return []string{
		"tasks.json",
	}
}

// Priority returns the source priority (highest for vitex tasks).
func (s *VitexSource) Priority() int {
	return 200
}

// VitexTasksFile represents the structure of a tasks.json file.
type VitexTasksFile struct {
	Version string          `json:"version"`
	Tasks   []VitexTask  `json:"tasks"`
	Groups  []VitexGroup `json:"groups,omitempty"`
	Inputs  []VitexInput `json:"inputs,omitempty"`
}

// VitexTask represents a task definition in tasks.json.
type VitexTask struct {
	Label          string           `json:"label"`
	Type           string           `json:"type"`
	Command        string           `json:"command"`
	Args           []string         `json:"args,omitempty"`
	Options        VitexOptions  `json:"options,omitempty"`
	Group          VitexGroupRef `json:"group,omitempty"`
	ProblemMatcher interface{}      `json:"problemMatcher,omitempty"`
	DependsOn      []string         `json:"dependsOn,omitempty"`
	DependsOrder   string           `json:"dependsOrder,omitempty"`
	Detail         string           `json:"detail,omitempty"`
	Presentation   VitexPresent  `json:"presentation,omitempty"`
	RunOptions     VitexRunOpts  `json:"runOptions,omitempty"`
	IsBackground   bool             `json:"isBackground,omitempty"`
}

// VitexOptions contains task execution options.
type VitexOptions struct {
	Cwd   string            `json:"cwd,omitempty"`
	Env   map[string]string `json:"env,omitempty"`
	Shell VitexShell     `json:"shell,omitempty"`
}

// VitexShell configures the shell for task execution.
type VitexShell struct {
	Executable string   `json:"executable,omitempty"`
	Args       []string `json:"args,omitempty"`
}

// VitexGroupRef is a reference to a task group.
type VitexGroupRef struct {
	Kind      string `json:"kind,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// VitexPresent configures task presentation.
type VitexPresent struct {
	Reveal           string `json:"reveal,omitempty"`
	Echo             bool   `json:"echo,omitempty"`
	Focus            bool   `json:"focus,omitempty"`
	Panel            string `json:"panel,omitempty"`
	ShowReuseMessage bool   `json:"showReuseMessage,omitempty"`
	Clear            bool   `json:"clear,omitempty"`
}

// VitexRunOpts configures run behavior.
type VitexRunOpts struct {
	InstanceLimit     int    `json:"instanceLimit,omitempty"`
	RunOn             string `json:"runOn,omitempty"`
	ReevaluateOnRerun bool   `json:"reevaluateOnRerun,omitempty"`
}

// VitexGroup defines a task group.
type VitexGroup struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// VitexInput defines an input variable.
type VitexInput struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Default     string   `json:"default,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// Discover finds tasks in a tasks.json file.
func (s *VitexSource) Discover(ctx context.Context, path string) ([]*task.Task, error) {
	// Only process files in .vitex directories
	dir := filepath.Dir(path)
	if filepath.Base(dir) != ".vitex" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tf VitexTasksFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, err
	}

	if len(tf.Tasks) == 0 {
		return nil, nil
	}

	var tasks []*task.Task
	for _, kt := range tf.Tasks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t := &task.Task{
			Name:        kt.Label,
			Description: kt.Detail,
			Type:        s.mapTaskType(kt.Type),
			Group:       s.mapGroup(kt.Group.Kind),
			Command:     kt.Command,
			Args:        kt.Args,
			Cwd:         kt.Options.Cwd,
			Env:         kt.Options.Env,
			DependsOn:   kt.DependsOn,
			IsDefault:   kt.Group.IsDefault,
		}

		// Set problem matcher
		if pm := s.extractProblemMatcher(kt.ProblemMatcher); pm != "" {
			t.ProblemMatcher = pm
		}

		// Set run options
		if kt.RunOptions.InstanceLimit > 0 || kt.RunOptions.RunOn != "" {
			t.RunOptions = &task.RunOptions{
				InstanceLimit:     kt.RunOptions.InstanceLimit,
				RunOn:             kt.RunOptions.RunOn,
				ReevaluateOnRerun: kt.RunOptions.ReevaluateOnRerun,
			}
		}

		tasks = append(tasks, t)
	}

	return tasks, nil
}

// mapTaskType maps a vitex task type to our TaskType.
func (s *VitexSource) mapTaskType(t string) task.TaskType {
	switch t {
	case "shell":
		return task.TaskTypeShell
	case "process":
		return task.TaskTypeProcess
	case "npm":
		return task.TaskTypeNPM
	default:
		return task.TaskTypeShell
	}
}

// mapGroup maps a vitex group kind to our TaskGroup.
func (s *VitexSource) mapGroup(kind string) task.TaskGroup {
	switch kind {
	case "build":
		return task.TaskGroupBuild
	case "test":
		return task.TaskGroupTest
	case "run":
		return task.TaskGroupRun
	case "clean":
		return task.TaskGroupClean
	case "lint":
		return task.TaskGroupLint
	default:
		return task.TaskGroupOther
	}
}

// extractProblemMatcher extracts the problem matcher name.
func (s *VitexSource) extractProblemMatcher(pm interface{}) string {
	switch v := pm.(type) {
	case string:
		return v
	case []interface{}:
		if len(v) > 0 {
			if str, ok := v[0].(string); ok {
				return str
			}
		}
	}
	return ""
}

// CreateVitexTasksFile creates a new tasks.json file with sample tasks.
func CreateVitexTasksFile(dir string) error {
	tasksDir := filepath.Join(dir, ".vitex")
	if err := os.MkdirAll(tasksDir, 0755); err != nil {
		return err
	}

	tf := VitexTasksFile{
		Version: "1.0.0",
		Tasks: []VitexTask{
			{
				Label:   "Build",
				Type:    "shell",
				Command: "go",
				Args:    []string{"build", "./..."},
				Group: VitexGroupRef{
					Kind:      "build",
					IsDefault: true,
				},
				ProblemMatcher: "$go",
			},
			{
				Label:   "Test",
				Type:    "shell",
				Command: "go",
				Args:    []string{"test", "./..."},
				Group: VitexGroupRef{
					Kind: "test",
				},
				ProblemMatcher: "$go",
			},
		},
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(tasksDir, "tasks.json"), data, 0644)
}

// LoadVitexTasks loads the tasks.json file from a directory.
func LoadVitexTasks(dir string) (*VitexTasksFile, error) {
	path := filepath.Join(dir, ".vitex", "tasks.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tf VitexTasksFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, err
	}

	return &tf, nil
}

// SaveVitexTasks saves the tasks.json file to a directory.
func SaveVitexTasks(dir string, tf *VitexTasksFile) error {
	tasksDir := filepath.Join(dir, ".vitex")
	if err := os.MkdirAll(tasksDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(tasksDir, "tasks.json"), data, 0644)
}

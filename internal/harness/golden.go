package harness

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the deterministic record of a scenario run compared against
// golden files. Launch ids are left out.
type Snapshot struct {
	Scenario  string   `json:"scenario"`
	Task      string   `json:"task"`
	TaskID    uint32   `json:"task_id"`
	Processor string   `json:"processor,omitempty"`
	DType     string   `json:"dtype,omitempty"`
	Shape     []int    `json:"shape,omitempty"`
	Values    []string `json:"values,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Snapshot builds the snapshot of a result.
func (res *Result) Snapshot() Snapshot {
	s := Snapshot{
		Scenario: res.Scenario,
		Task:     res.Task,
		TaskID:   uint32(res.TaskID),
	}
	if res.Err != nil {
		s.Error = string(res.ErrorCode)
		return s
	}
	s.Processor = res.Proc.String()
	s.DType = res.DType.String()
	s.Shape = res.Shape
	s.Values = res.Values
	return s
}

// MarshalSnapshot renders a snapshot as indented JSON with a trailing newline.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden runs a scenario, checks its expectation and compares its
// snapshot with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, r *Runner, sc *Scenario) error {
	t.Helper()

	res, err := r.Run(context.Background(), sc)
	if err != nil {
		return err
	}
	if err := Check(sc, res); err != nil {
		return err
	}
	data, err := MarshalSnapshot(res.Snapshot())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, data)
	return nil
}

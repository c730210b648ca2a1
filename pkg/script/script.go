// Package script replays recorded editor events against a Builder.
//
// A script is a YAML (or JSON) document:
//
//	name: nest a text
//	continue_on_error: false
//	steps:
//	  - op: add
//	    type: container
//	  - op: add
//	    type: text
//	    props: {text: Hello}
//	  - op: drag
//	    active_id: t1
//	    over_id: c1
//	    expect_outcome: noop
//	  - op: move
//	    id: c1
//	    parent_id: t1
//	    expect_error: invalid_target
//
// expect_error names the error code (see domain.Code) a step must fail with;
// expect_outcome names the outcome a drag must resolve to.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Op names a replayable editor event.
type Op string

const (
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpSelect  Op = "select"
	OpClear   Op = "clear"
	OpDrag    Op = "drag"
	OpRemove  Op = "remove"
	OpMove    Op = "move"
	OpReorder Op = "reorder"
	OpReset   Op = "reset"
)

// ErrInvalidScript is returned when a script cannot be decoded or names an unknown op.
var ErrInvalidScript = errors.New("invalid script")

// ErrExpectation is returned when a step does not behave as its expect_* fields say.
var ErrExpectation = errors.New("expectation not met")

// Step is one editor event. Which fields apply depends on Op.
type Step struct {
	Op       Op           `mapstructure:"op"`
	Type     string       `mapstructure:"type"`
	ID       string       `mapstructure:"id"`
	Props    domain.Patch `mapstructure:"props"`
	ParentID string       `mapstructure:"parent_id"`
	BeforeID string       `mapstructure:"before_id"`
	ActiveID string       `mapstructure:"active_id"`
	OverID   string       `mapstructure:"over_id"`

	ExpectError   string `mapstructure:"expect_error"`
	ExpectOutcome string `mapstructure:"expect_outcome"`
}

// Script is an ordered list of steps.
type Script struct {
	Name            string `mapstructure:"name"`
	ContinueOnError bool   `mapstructure:"continue_on_error"`
	Steps           []Step `mapstructure:"steps"`
}

// StepResult records what happened to one step.
type StepResult struct {
	Index int
	Step  Step
	Err   error
	Drag  *domain.DragResult
}

// Report is the outcome of a replay.
type Report struct {
	Results  []StepResult
	Snapshot *domain.Snapshot
}

// Failed returns the results of the steps that failed.
func (r *Report) Failed() []StepResult {
	var out []StepResult
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Parse decodes a YAML or JSON script.
func Parse(data []byte) (*Script, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	var s Script
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}

	for i, step := range s.Steps {
		if !step.Op.valid() {
			return nil, fmt.Errorf("%w: step %d: unknown op %q", ErrInvalidScript, i+1, step.Op)
		}
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Run replays s against b in order. Unless ContinueOnError is set, the first failing
// step stops the replay and its error is returned. The report is returned either way.
func Run(ctx context.Context, b ports.Builder, s *Script) (*Report, error) {
	report := &Report{}
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			report.Snapshot = b.Snapshot()
			return report, err
		}

		res := StepResult{Index: i + 1, Step: step}
		err := apply(ctx, b, step, &res)
		res.Err = check(step, res.Drag, err)
		report.Results = append(report.Results, res)

		if res.Err != nil && !s.ContinueOnError {
			report.Snapshot = b.Snapshot()
			return report, fmt.Errorf("step %d (%s): %w", res.Index, step.Op, res.Err)
		}
	}
	report.Snapshot = b.Snapshot()
	return report, nil
}

func apply(ctx context.Context, b ports.Builder, step Step, res *StepResult) error {
	switch step.Op {
	case OpAdd:
		t, err := domain.ParseElementType(step.Type)
		if err != nil {
			return err
		}
		_, err = b.AddElement(ctx, t, step.Props)
		return err
	case OpUpdate:
		_, err := b.UpdateElement(ctx, step.ID, step.Props)
		return err
	case OpSelect:
		return b.SelectElement(ctx, step.ID)
	case OpClear:
		return b.SelectElement(ctx, "")
	case OpDrag:
		result := b.HandleDrag(ctx, domain.Gesture{
			ActiveID: step.ActiveID,
			OverID:   step.OverID,
			ParentID: step.ParentID,
		})
		res.Drag = &result
		return nil
	case OpRemove:
		return b.RemoveElement(ctx, step.ID)
	case OpMove:
		return b.MoveElement(ctx, step.ID, step.ParentID, step.BeforeID)
	case OpReorder:
		return b.ReorderElements(ctx, step.ParentID, step.ActiveID, step.OverID)
	case OpReset:
		b.Reset(ctx)
		return nil
	}
	return fmt.Errorf("%w: unknown op %q", ErrInvalidScript, step.Op)
}

// check turns an expected failure into success and an unexpected result into an error.
func check(step Step, drag *domain.DragResult, err error) error {
	if step.ExpectError != "" {
		if err == nil {
			return fmt.Errorf("%w: wanted error %q, step succeeded", ErrExpectation, step.ExpectError)
		}
		if code := domain.Code(err); code != step.ExpectError {
			return fmt.Errorf("%w: wanted error %q, got %q (%v)", ErrExpectation, step.ExpectError, code, err)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if step.ExpectOutcome != "" && drag != nil && string(drag.Outcome) != step.ExpectOutcome {
		return fmt.Errorf("%w: wanted drag outcome %q, got %q", ErrExpectation, step.ExpectOutcome, drag.Outcome)
	}
	return nil
}

func (o Op) valid() bool {
	switch o {
	case OpAdd, OpUpdate, OpSelect, OpClear, OpDrag, OpRemove, OpMove, OpReorder, OpReset:
		return true
	}
	return false
}

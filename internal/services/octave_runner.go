package services

import (
	"bananaprep/internal/logger"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecRequest carries one execution unit. Code and TestCall stay separate,
// the runner assembles the final script so callers never concatenate code.
type ExecRequest struct {
	UserID   int
	Code     string
	TestCall string
	Input    string
}

type ExecResult struct {
	Success   bool   `json:"success"`
	Output    string `json:"output"`
	HasImage  bool   `json:"has_image,omitempty"`
	ImageData string `json:"image_data,omitempty"`
}

// Executor runs a snippet in the external interpreter.
type Executor interface {
	Execute(ctx context.Context, req ExecRequest) (*ExecResult, error)
}

// OctaveRunner executes scripts with a local Octave interpreter. Each run
// gets its own script and plot file so concurrent submissions never collide.
type OctaveRunner struct {
	octavePath string
	workDir    string
	timeout    time.Duration
}

func NewOctaveRunner(octavePath, workDir string, timeout time.Duration) (*OctaveRunner, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	return &OctaveRunner{
		octavePath: octavePath,
		workDir:    workDir,
		timeout:    timeout,
	}, nil
}

// plotPrintRe matches the fixed plot path problems use in their starter
// code; it gets rewritten to a per-run path before execution.
var plotPrintRe = regexp.MustCompile(`print\(['"]/tmp/plot\.png['"]`)

func (r *OctaveRunner) Execute(ctx context.Context, req ExecRequest) (*ExecResult, error) {
	runID := fmt.Sprintf("%d_%s", req.UserID, uuid.NewString())
	scriptPath := filepath.Join(r.workDir, "octave_"+runID+".m")
	plotPath := filepath.Join(r.workDir, "plot_"+runID+".png")

	script := assembleScript(req.Code, req.TestCall, req.Input, plotPath)
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return nil, fmt.Errorf("failed to write script file: %w", err)
	}
	defer os.Remove(scriptPath)

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.octavePath, "--no-gui", "--quiet", scriptPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Log.Debug("Executing octave script",
		zap.Int("user_id", req.UserID),
		zap.String("script", scriptPath))

	err := cmd.Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			msg = fmt.Sprintf("execution timed out after %s", r.timeout)
		} else if msg == "" {
			msg = err.Error()
		}
		return &ExecResult{Success: false, Output: msg}, nil
	}

	result := &ExecResult{
		Success: true,
		Output:  stdout.String(),
	}

	if data, readErr := os.ReadFile(plotPath); readErr == nil {
		_ = os.Remove(plotPath)
		result.HasImage = true
		result.ImageData = "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	}

	return result, nil
}

// assembleScript builds the final script: optional input prelude, then the
// user's code, then the verification call.
func assembleScript(code, testCall, input, plotPath string) string {
	code = plotPrintRe.ReplaceAllString(code, fmt.Sprintf("print('%s'", plotPath))

	var b strings.Builder
	if input != "" {
		fmt.Fprintf(&b, "input_value = %s;\n", input)
	}
	b.WriteString(code)
	if testCall != "" {
		b.WriteString("\n\n% verification call\n")
		b.WriteString(testCall)
		b.WriteString("\n")
	}
	return b.String()
}

package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/vroidbones/vroidbones/internal/cli/ui"
	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
	"github.com/vroidbones/vroidbones/internal/pipeline"
	"github.com/vroidbones/vroidbones/internal/skeleton"
	"github.com/vroidbones/vroidbones/internal/utils"
)

const cliPhase = "cli"

// fileJob is one rig document pushed through an action
type fileJob struct {
	action pipeline.Action
	input  string
	output string          // defaults to input
	format skeleton.Format // defaults to the output file's format
	opts   pipeline.Options
	dryRun bool
}

// fileOutcome reports what happened to one document
type fileOutcome struct {
	Result  pipeline.Result
	Written bool
	Diff    *ui.DiffResult // set on dry runs
}

// process loads, transforms and writes back a rig document. The file is
// only rewritten when its bytes change, so running an idempotent action on
// a normalized rig leaves it untouched. A dry run diffs the rewritten
// document against the input instead of writing it.
func process(runner *pipeline.Runner, job fileJob, log *zap.Logger) (fileOutcome, error) {
	inFormat, err := skeleton.FormatFromPath(job.input)
	if err != nil {
		return fileOutcome{}, err
	}
	original, err := os.ReadFile(job.input)
	if err != nil {
		return fileOutcome{}, rigerrors.Newf(cliPhase, rigerrors.ErrUnreadableDocument, "failed to read %s: %v", job.input, err)
	}
	rig, err := skeleton.Decode(bytes.NewReader(original), inFormat)
	if err != nil {
		return fileOutcome{}, err
	}

	result, err := runner.Run(job.action, rig, job.opts)
	if err != nil {
		return fileOutcome{Result: result}, err
	}

	output := job.output
	if output == "" {
		output = job.input
	}
	format := job.format
	if format == "" {
		if format, err = skeleton.FormatFromPath(output); err != nil {
			return fileOutcome{Result: result}, err
		}
	}

	var buf bytes.Buffer
	if err := skeleton.Encode(&buf, rig, format); err != nil {
		return fileOutcome{Result: result}, err
	}

	if job.dryRun {
		return fileOutcome{Result: result, Diff: ui.Diff(string(original), buf.String())}, nil
	}
	if output == job.input && bytes.Equal(buf.Bytes(), original) {
		log.Debug("Document unchanged", zap.String("file", job.input))
		return fileOutcome{Result: result}, nil
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return fileOutcome{Result: result}, fmt.Errorf("failed to write %s: %w", output, err)
	}
	log.Debug("Document written", zap.String("file", output), zap.Int("bytes", buf.Len()))
	return fileOutcome{Result: result, Written: true}, nil
}

// expandInputs replaces every directory argument with the rig documents
// found under it
func expandInputs(args []string, patterns []string) ([]string, error) {
	files := make([]string, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := utils.FindRigFiles(arg, patterns)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// asRigError turns any failure into a RigError for the JSON report
func asRigError(file string, err error) rigerrors.RigError {
	if re, ok := rigerrors.As(err); ok {
		return re.WithDocument(file)
	}
	return rigerrors.New(cliPhase, rigerrors.ErrUnreadableDocument, err.Error()).WithDocument(file)
}

// writeJSONReport prints the batch failures as a JSON error report
func writeJSONReport(w io.Writer, failures []rigerrors.RigError) error {
	out, err := rigerrors.FormatErrorsAsJSON(failures)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

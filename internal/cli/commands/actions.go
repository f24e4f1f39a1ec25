package commands

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vroidbones/vroidbones/internal/cli/ui"
	rigerrors "github.com/vroidbones/vroidbones/internal/errors"
	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/pipeline"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

// ioFlags are the document flags shared by every action command
type ioFlags struct {
	output string
	format string
	json   bool
	dryRun bool
}

func (f *ioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the result here instead of in place (single file only)")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format: yaml or json (default: from the file extension)")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print failures as a JSON report")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Show the changes as a diff without writing anything")
}

// Interactive fix choices, in menu order
const (
	choiceSymmetrize = "Symmetrize names (J_Bip_L_UpperArm -> UpperArm_L)"
	choiceSimplify   = "Simplify names (J_Bip_C_Hips -> Hips)"
	choiceLeaves     = "Remove unused leaf bones"
	choiceChains     = "Connect bone chains"
)

var fixChoices = []string{choiceSymmetrize, choiceSimplify, choiceLeaves, choiceChains}

func newFixCommand(g *globals) *cobra.Command {
	var (
		doc         ioFlags
		symmetrize  bool
		simplify    bool
		leafBones   bool
		boneChains  bool
		collision   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "fix FILE...",
		Short: "Fix bone names and structure",
		Long: `Rename bones to the host convention, connect bone chains and remove
unused leaf bones. Documents are rewritten in place unless --output is given;
a directory argument stands for every rig document under it.

Stage defaults come from vroidbones.yml; flags override them.

Examples:
  # Fix a rig in place
  vroidbones fix avatar.rig.yml

  # Keep unsided names like J_Bip_C_Hips and write a JSON copy
  vroidbones fix avatar.rig.yml --simplify=false -o avatar.rig.json

  # Preview the renames for a whole export folder
  vroidbones fix exports/ --dry-run

  # Pick the stages from a menu
  vroidbones fix avatar.rig.yml --interactive`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := g.cfg.Options()

			flags := cmd.Flags()
			if flags.Changed("symmetrize") {
				opts.Symmetrize = symmetrize
			}
			if flags.Changed("simplify") {
				opts.Simplify = simplify
				if !g.configSetsRenumbering() {
					opts.RenumberHairJoints = simplify
				}
			}
			if flags.Changed("leaf-bones") {
				opts.RemoveLeaves = leafBones
			}
			if flags.Changed("bone-chains") {
				opts.ConnectChains = boneChains
			}
			if flags.Changed("collision") {
				policy, err := naming.ParseCollisionPolicy(collision)
				if err != nil {
					return err
				}
				opts.Collision = policy
			}

			if interactive {
				if err := askFixStages(&opts); err != nil {
					return err
				}
			}

			return runBatch(cmd, g, pipeline.ActionFix, args, doc, opts)
		},
	}

	doc.register(cmd)
	cmd.Flags().BoolVar(&symmetrize, "symmetrize", true, "Rename sided bones to Leaf_Side, e.g. UpperArm_L")
	cmd.Flags().BoolVar(&simplify, "simplify", true, "Collapse unsided bone names to their last token")
	cmd.Flags().BoolVar(&leafBones, "leaf-bones", true, "Remove _end and hair joint leaves that move nothing")
	cmd.Flags().BoolVar(&boneChains, "bone-chains", true, "Connect each bone to its main child")
	cmd.Flags().StringVar(&collision, "collision", "", "What to do when two bones resolve to one name: reject or suffix")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Choose the fix stages from a menu")

	return cmd
}

// configSetsRenumbering reports whether hair joint renumbering was decoupled
// from simplify in the loaded configuration
func (g *globals) configSetsRenumbering() bool {
	return g.cfg.Naming.RenumberHairJoints != g.cfg.Naming.Simplify
}

// askFixStages lets the user toggle the fix stages, preselecting opts
func askFixStages(opts *pipeline.Options) error {
	enabled := []bool{opts.Symmetrize, opts.Simplify, opts.RemoveLeaves, opts.ConnectChains}
	defaults := []string{}
	for i, choice := range fixChoices {
		if enabled[i] {
			defaults = append(defaults, choice)
		}
	}

	prompt := &survey.MultiSelect{
		Message: "Select the fixes to apply:",
		Options: fixChoices,
		Default: defaults,
	}
	var picked []string
	if err := survey.AskOne(prompt, &picked); err != nil {
		return err
	}

	applyFixChoices(opts, picked)
	return nil
}

// applyFixChoices switches on exactly the picked stages
func applyFixChoices(opts *pipeline.Options, picked []string) {
	selected := make(map[string]bool, len(picked))
	for _, p := range picked {
		selected[p] = true
	}
	opts.Symmetrize = selected[choiceSymmetrize]
	opts.Simplify = selected[choiceSimplify]
	opts.RenumberHairJoints = opts.Simplify
	opts.RemoveLeaves = selected[choiceLeaves]
	opts.ConnectChains = selected[choiceChains]
}

var setupDescriptions = map[pipeline.Action]struct{ short, long string }{
	pipeline.ActionIK: {
		"Set up limb IK",
		"Attach two-bone IK to the lower arms and lower legs, with the elbows and\nknees hinged on one axis.",
	},
	pipeline.ActionFingers: {
		"Couple finger segments",
		"Make the second and third segment of every finger copy the rotation of\nthe segment before it, so curling the first segment curls the finger.",
	},
	pipeline.ActionLimits: {
		"Set up rotation limits",
		"Clamp the rotation of the spine, head, limbs and first finger segments\nto natural ranges.",
	},
	pipeline.ActionCleanup: {
		"Remove bones that move nothing",
		"Delete every bone whose whole subtree has no vertex group on any mesh.\nSubtrees holding even one weighted bone are kept whole.",
	},
}

// newSetupCommand creates one of the constraint and cleanup commands
func newSetupCommand(g *globals, action pipeline.Action) *cobra.Command {
	var doc ioFlags
	desc := setupDescriptions[action]

	cmd := &cobra.Command{
		Use:   string(action) + " FILE...",
		Short: desc.short,
		Long:  desc.long + "\n\nRun 'vroidbones fix' first so bones carry the host's names.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, g, action, args, doc, g.cfg.Options())
		},
	}
	doc.register(cmd)
	return cmd
}

// runBatch pushes every file through action, reporting each one
func runBatch(cmd *cobra.Command, g *globals, action pipeline.Action, args []string, doc ioFlags, opts pipeline.Options) error {
	files, err := expandInputs(args, g.cfg.Watch.Patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no rig documents matching %v in %v", g.cfg.Watch.Patterns, args)
	}
	if doc.output != "" && len(files) > 1 {
		return fmt.Errorf("--output needs exactly one input file, got %d", len(files))
	}

	formatName := doc.format
	if formatName == "" {
		formatName = g.cfg.Output.Format
	}
	var format skeleton.Format
	if formatName != "" {
		f, err := skeleton.ParseFormat(formatName)
		if err != nil {
			return err
		}
		format = f
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	runner := g.runner()

	var bar *ui.ProgressBar
	if len(files) > 1 && !doc.json {
		bar = ui.NewProgressBar(errOut, ui.ProgressBarOptions{Total: len(files), NoColor: g.noColor})
	}

	failures := []rigerrors.RigError{}
	for _, file := range files {
		outcome, err := process(runner, fileJob{
			action: action,
			input:  file,
			output: doc.output,
			format: format,
			opts:   opts,
			dryRun: doc.dryRun,
		}, g.logger)
		if bar != nil {
			bar.Step(file)
		}

		if err != nil {
			re := asRigError(file, err)
			failures = append(failures, re)
			if !doc.json {
				fmt.Fprint(errOut, ui.RigFailure(re, g.noColor))
			}
			continue
		}
		if doc.json {
			continue
		}

		if outcome.Diff != nil {
			fmt.Fprint(out, outcome.Diff.UnifiedDiff(file))
			fmt.Fprintf(out, "%s: %s, %s\n", file, outcome.Result.Summary, outcome.Diff.Stats())
			continue
		}

		msg := fmt.Sprintf("%s: %s", file, outcome.Result.Summary)
		if !outcome.Written {
			msg += color.HiBlackString(" (unchanged)")
		}
		ui.WriteSuccess(out, msg, g.noColor)
	}

	if bar != nil {
		bar.Finish(fmt.Sprintf("%d of %d documents processed", len(files)-len(failures), len(files)))
	}

	if doc.json {
		if err := writeJSONReport(out, failures); err != nil {
			return err
		}
	} else if len(files) > 1 && len(failures) > 0 {
		fmt.Fprint(errOut, rigerrors.FormatSummary(len(failures), 0, g.noColor))
	}

	if len(failures) > 0 {
		return errReported
	}
	return nil
}

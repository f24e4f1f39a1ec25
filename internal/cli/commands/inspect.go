package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vroidbones/vroidbones/internal/cli/ui"
	"github.com/vroidbones/vroidbones/internal/effect"
	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/skeleton"
)

func newInspectCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the bone tree of a rig",
		Long: `Print every bone with its parent, connection, vertex weight and
constraints, plus the name 'vroidbones fix' would give it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rig, err := skeleton.Load(args[0])
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.RigFailure(asRigError(args[0], err), g.noColor))
				return errReported
			}
			renderRig(cmd, g, args[0], rig)
			return nil
		},
	}
	return cmd
}

// renderRig prints the bone table and a summary of rig
func renderRig(cmd *cobra.Command, g *globals, file string, rig *skeleton.Rig) {
	out := cmd.OutOrStdout()
	sk := rig.Skeleton()
	analyzer := effect.New(rig)

	renamed := map[skeleton.BoneID]string{}
	if sk != nil {
		if plan, err := naming.Plan(sk, g.cfg.Options().NamingPolicy(), naming.CollisionSuffix); err == nil {
			for _, r := range plan {
				renamed[r.ID] = r.To
			}
		}
	}

	ui.Header(out, file, g.noColor)

	table := ui.NewTable(out, []string{"Bone", "Parent", "Children", "Connected", "Weighted", "Constraints", "Fixed name"},
		&ui.TableOptions{NoColor: g.noColor})

	weighted, constrained := 0, 0
	if sk != nil {
		var visit func(b *skeleton.Bone, depth int)
		visit = func(b *skeleton.Bone, depth int) {
			parent := "-"
			if p := sk.Parent(b); p != nil {
				parent = p.Name
			}

			effectCell := "-"
			if influence := analyzer.Influence(b); len(influence) > 0 {
				weighted++
				total := 0
				for _, n := range influence {
					total += n
				}
				effectCell = fmt.Sprintf("%d verts", total)
			}

			kinds := make([]string, 0, len(b.Constraints))
			for _, c := range b.Constraints {
				kinds = append(kinds, string(c.Kind()))
			}
			sort.Strings(kinds)
			if len(kinds) > 0 {
				constrained++
			}

			table.AddRow(
				strings.Repeat("  ", depth)+b.Name,
				parent,
				fmt.Sprintf("%d", len(b.Children)),
				yesNo(b.Connected),
				effectCell,
				strings.Join(kinds, ","),
				renamed[b.ID],
			)
			for _, c := range sk.Children(b) {
				visit(c, depth+1)
			}
		}
		for _, root := range sk.Roots() {
			visit(root, 0)
		}
	}
	table.Render()
	fmt.Fprintln(out)

	summary := ui.NewKeyValueTable(out, g.noColor)
	summary.AddRow("Armature", rig.ArmatureName())
	summary.AddRow("Mode", rig.Mode())
	summary.AddRow("Bones", table.Len())
	summary.AddRow("Weighted bones", weighted)
	summary.AddRow("Constrained bones", constrained)
	summary.AddRow("Bones to rename", len(renamed))
	summary.AddRow("Deform targets", len(rig.ChildObjects()))
	summary.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

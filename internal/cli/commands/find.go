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

func newFindCommand(g *globals) *cobra.Command {
	var unique bool

	cmd := &cobra.Command{
		Use:   "find FILE QUERY",
		Short: "Look up a bone by canonical or source name",
		Long: `Look up a bone the way the constraint setup does. QUERY is an exact bone
name, or a canonical "Leaf_Side" name such as UpperArm_L that also matches
the source spelling J_Bip_L_UpperArm.

Examples:
  vroidbones find avatar.rig.yml UpperArm_L
  vroidbones find avatar.rig.yml Index1_R --unique`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, query := args[0], args[1]
			rig, err := skeleton.Load(file)
			if err != nil {
				fmt.Fprint(cmd.ErrOrStderr(), ui.RigFailure(asRigError(file, err), g.noColor))
				return errReported
			}
			sk := rig.Skeleton()
			if sk == nil {
				sk = skeleton.New()
			}

			var bone *skeleton.Bone
			if unique {
				bone, err = naming.FindUnique(sk, query)
				if err != nil {
					fmt.Fprint(cmd.ErrOrStderr(), ui.RigFailure(asRigError(file, err), g.noColor))
					return errReported
				}
			} else {
				bone = naming.Find(sk, query)
			}

			if bone == nil {
				suggestions := ui.FindSimilarCandidates(query, boneCandidates(sk), nil)
				fmt.Fprint(cmd.ErrOrStderr(), ui.BoneNotFound(query, file, suggestions, g.noColor))
				return errReported
			}

			describeBone(cmd, g, rig, bone)
			return nil
		},
	}

	cmd.Flags().BoolVar(&unique, "unique", false, "Fail when a canonical name matches several bones")
	return cmd
}

// boneCandidates offers every bone under its own name and its canonical one
func boneCandidates(sk *skeleton.Skeleton) []ui.Candidate {
	resolver := naming.NewResolver(naming.Policy{Symmetrize: true, Simplify: true}, sk.Names())
	out := make([]ui.Candidate, 0, sk.Len())
	for _, b := range sk.Bones() {
		c := ui.Candidate{Name: b.Name}
		if canonical, ok := resolver.Resolve(b.Name); ok {
			c.Aliases = []string{canonical}
		}
		out = append(out, c)
	}
	return out
}

func describeBone(cmd *cobra.Command, g *globals, rig *skeleton.Rig, b *skeleton.Bone) {
	sk := rig.Skeleton()
	kv := ui.NewKeyValueTable(cmd.OutOrStdout(), g.noColor)
	kv.AddRow("Name", b.Name)
	kv.AddRow("ID", b.ID.String())
	if p := sk.Parent(b); p != nil {
		kv.AddRow("Parent", p.Name)
	} else {
		kv.AddRow("Parent", "-")
	}
	kv.AddRow("Head", formatVec(b.Head.X, b.Head.Y, b.Head.Z))
	kv.AddRow("Tail", formatVec(b.Tail.X, b.Tail.Y, b.Tail.Z))
	kv.AddRow("Length", fmt.Sprintf("%.4f", b.Length()))
	kv.AddRow("Connected", yesNo(b.Connected))

	influence := effect.New(rig).Influence(b)
	objects := make([]string, 0, len(influence))
	for name, n := range influence {
		objects = append(objects, fmt.Sprintf("%s (%d)", name, n))
	}
	sort.Strings(objects)
	if len(objects) == 0 {
		kv.AddRow("Weighted on", "-")
	} else {
		kv.AddRow("Weighted on", strings.Join(objects, ", "))
	}

	kinds := make([]string, 0, len(b.Constraints))
	for _, c := range b.Constraints {
		kinds = append(kinds, string(c.Kind()))
	}
	if len(kinds) == 0 {
		kv.AddRow("Constraints", "-")
	} else {
		kv.AddRow("Constraints", strings.Join(kinds, ", "))
	}
	kv.Render()
}

func formatVec(x, y, z float64) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", x, y, z)
}

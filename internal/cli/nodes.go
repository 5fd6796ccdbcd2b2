package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoobzio/cubeql/internal/sqlnodes"
)

// NodesOptions holds flags for the nodes command.
type NodesOptions struct {
	*RootOptions
	References bool
}

// NodeInfo describes one processor node reached from the root.
type NodeInfo struct {
	Ref      int    `json:"ref"`
	Kind     string `json:"kind"`
	Depth    int    `json:"depth"`
	Children []int  `json:"children,omitempty"`
}

// NewNodesCommand creates the nodes command.
func NewNodesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NodesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Print the processor tree",
		Long: `Print the processor nodes reachable from the root dispatcher.

The tree follows each node's children, so processors the root does not
list as children (time dimension, cube table) are not shown.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNodes(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.References, "references", false, "show the post-aggregate reference graph")

	return cmd
}

func runNodes(opts *NodesOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	arena := sqlnodes.NewArena()
	nodes := sqlnodes.NewDefaultNodes(arena)
	if opts.References {
		nodes = sqlnodes.NewReferenceNodes(arena)
	}
	arena.Freeze()

	var infos []NodeInfo
	err := arena.Walk(nodes.Root, func(ref sqlnodes.Ref, n sqlnodes.Node, depth int) error {
		info := NodeInfo{Ref: int(ref), Kind: n.Kind().String(), Depth: depth}
		for _, child := range n.Children() {
			info.Children = append(info.Children, int(child))
		}
		infos = append(infos, info)
		return nil
	})
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, err)
	}
	f.VerboseLog("Arena holds %d node(s), %d reachable", arena.Len(), len(infos))

	if f.JSON() {
		return f.Success(infos)
	}
	for _, info := range infos {
		fmt.Fprintf(f.Writer, "%s%s #%d\n", strings.Repeat("  ", info.Depth), info.Kind, info.Ref)
	}
	return nil
}

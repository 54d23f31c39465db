package optimize

import "github.com/eventscript-lang/evc/pkg/types"

// optimizeBlock implements spec §4.4 rule 6: a child that is itself a Block
// is inlined. Children were already optimized (and so already flattened)
// bottom-up before this runs, so a single splice pass is enough — no nested
// Block can survive one level down.
func optimizeBlock(n *types.Node) (*types.Node, error) {
	flat := make([]*types.Node, 0, len(n.Children))
	for _, c := range n.Children {
		opt, err := node(c)
		if err != nil {
			return nil, err
		}
		if opt.Kind == types.KindBlock {
			flat = append(flat, opt.ReleaseChildren()...)
			continue
		}
		flat = append(flat, opt)
	}
	n.Children = flat
	return n, nil
}

package wigglang

// Desugar rewrites `pin = INPUT|OUTPUT` assignments into SetPinDir nodes in place.
// It returns the number of rewritten nodes; a second run rewrites nothing.
func Desugar(n *Node) int {
	if n == nil {
		return 0
	}

	count := 0
	if n.Kind == NodeAssign &&
		len(n.Children) == 1 &&
		n.Children[0].Kind == NodeIoDirection {
		n.Kind = NodeSetPinDir
		n.Direction = n.Children[0].Direction
		n.Children = nil
		count++
	}

	for _, child := range n.Children {
		count += Desugar(child)
	}
	return count
}

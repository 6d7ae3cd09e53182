package heaptree

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Render writes one line per node, pre-order. The first line is the root,
// "0) 0x1f..", and the rest hang below it:
//
//	├─ 1) 0xa0..
//	│  ├─ 3) 0x..
//	│  └─ 4) 0x..
//	└─ 2) 0x..
func Render(w io.Writer, nodes []Node) error {
	type frame struct {
		i    int
		path []bool // true while more siblings follow at that depth
	}
	if len(nodes) == 0 {
		return ErrEmptyInput
	}

	stack := []frame{{i: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var b strings.Builder
		for k, more := range f.path {
			last := k == len(f.path)-1
			switch {
			case last && more:
				b.WriteString("├─ ")
			case last:
				b.WriteString("└─ ")
			case more:
				b.WriteString("│  ")
			default:
				b.WriteString("   ")
			}
		}
		if _, err := fmt.Fprintf(w, "%s%d) 0x%s\n", b.String(), f.i, hex.EncodeToString(nodes[f.i][:])); err != nil {
			return err
		}

		if RightChild(f.i) < len(nodes) {
			stack = append(stack,
				frame{i: RightChild(f.i), path: appendPath(f.path, false)},
				frame{i: LeftChild(f.i), path: appendPath(f.path, true)},
			)
		}
	}
	return nil
}

func appendPath(path []bool, more bool) []bool {
	out := make([]bool, len(path), len(path)+1)
	copy(out, path)
	return append(out, more)
}

// debug utilities

// String renders the siblings as hex, leaf first
func (p Proof) String() string {
	return "[" + proofPathStringer(p.Siblings, ", ") + "]"
}

func proofPathStringer(path []Node, sep string) string {
	var spath []string

	for _, it := range path {
		spath = append(spath, hex.EncodeToString(it[:]))
	}
	return strings.Join(spath, sep)
}

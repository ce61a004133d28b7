package loader

import (
	"bufio"
	"io"
	"strconv"

	"github.com/graph-metrics/pkg/graph"
)

// WriteEdgeList writes g as "source target" lines using original ids. With
// undirected set, each relationship is written once from its lower dense id.
// It returns the number of lines written.
func WriteEdgeList(w io.Writer, g graph.Graph, undirected bool) (int64, error) {
	bw := bufio.NewWriterSize(w, 1<<16)
	var lines int64
	var buf []byte
	var werr error

	for u := int64(0); u < g.NodeCount() && werr == nil; u++ {
		src := g.ToOriginalNodeID(u)
		g.ForEachNeighbor(u, func(v int64) bool {
			if undirected && v < u {
				return true
			}
			buf = strconv.AppendInt(buf[:0], src, 10)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, g.ToOriginalNodeID(v), 10)
			buf = append(buf, '\n')
			if _, werr = bw.Write(buf); werr != nil {
				return false
			}
			lines++
			return true
		})
	}
	if werr != nil {
		return lines, werr
	}
	return lines, bw.Flush()
}

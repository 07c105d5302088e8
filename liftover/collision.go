package liftover

import (
	"github.com/biogo/store/llrb"
)

// posCount records how many lifted variants landed on one target
// position.
type posCount struct {
	chrom string
	pos   int
	n     int
}

// Compare orders posCounts by (chrom, pos) for use in llrb.
func (p *posCount) Compare(c2 llrb.Comparable) int {
	p2 := c2.(*posCount)
	if p.chrom != p2.chrom {
		if p.chrom < p2.chrom {
			return -1
		}
		return 1
	}
	return p.pos - p2.pos
}

// collisionIndex is an ordered index of lifted target positions. The
// tree keeps positions sorted by (chrom, pos) so collision reporting is
// deterministic regardless of input order.
type collisionIndex struct {
	tree llrb.Tree
}

func newCollisionIndex() *collisionIndex {
	return &collisionIndex{}
}

func (ci *collisionIndex) add(chrom string, pos int) {
	key := &posCount{chrom: chrom, pos: pos}
	if e := ci.tree.Get(key); e != nil {
		e.(*posCount).n++
		return
	}
	key.n = 1
	ci.tree.Insert(key)
}

// collisions returns the number of target positions with more than one
// lifted variant.
func (ci *collisionIndex) collisions() int {
	n := 0
	ci.tree.Do(func(e llrb.Comparable) bool {
		if e.(*posCount).n > 1 {
			n++
		}
		return false
	})
	return n
}

package optimize

import (
	"encoding/binary"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"

	"github.com/wudi/pagxkit/scene"
)

// contentKey buckets candidates before exact comparison. Equal nodes always
// share a key; unequal nodes usually do not.
type contentKey [blake2b.Size256]byte

type keyHasher struct {
	h   hash.Hash
	buf [8]byte
}

func newKeyHasher() *keyHasher {
	// New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	return &keyHasher{h: h}
}

func (k *keyHasher) float(v float32) {
	if v == 0 {
		v = 0 // fold -0 into +0 so the key agrees with ==
	}
	binary.LittleEndian.PutUint32(k.buf[:4], math.Float32bits(v))
	k.h.Write(k.buf[:4])
}

func (k *keyHasher) int(v int) {
	binary.LittleEndian.PutUint64(k.buf[:], uint64(v))
	k.h.Write(k.buf[:])
}

func (k *keyHasher) point(p scene.Point) {
	k.float(p.X)
	k.float(p.Y)
}

func (k *keyHasher) color(c scene.Color) {
	k.float(c.R)
	k.float(c.G)
	k.float(c.B)
	k.float(c.A)
}

func (k *keyHasher) matrix(m scene.Matrix) {
	m = m.Normalize()
	for _, v := range [...]float32{m.A, m.B, m.C, m.D, m.Tx, m.Ty} {
		k.float(v)
	}
}

func (k *keyHasher) sum() contentKey {
	var key contentKey
	k.h.Sum(key[:0])
	return key
}

func pathDataKey(p *scene.PathData) contentKey {
	k := newKeyHasher()
	k.int(len(p.Verbs))
	verbs := make([]byte, len(p.Verbs))
	for i, v := range p.Verbs {
		verbs[i] = byte(v)
	}
	k.h.Write(verbs)
	k.int(len(p.Points))
	for _, v := range p.Points {
		k.float(v)
	}
	return k.sum()
}

func gradientKey(g scene.Gradient) contentKey {
	k := newKeyHasher()
	k.int(int(g.NodeType()))
	switch n := g.(type) {
	case *scene.LinearGradient:
		k.point(n.StartPoint)
		k.point(n.EndPoint)
	case *scene.RadialGradient:
		k.point(n.Center)
		k.float(n.Radius)
	case *scene.ConicGradient:
		k.point(n.Center)
		k.float(n.StartAngle)
		k.float(n.EndAngle)
	case *scene.DiamondGradient:
		k.point(n.Center)
		k.float(n.Radius)
	}
	k.matrix(g.Transform())
	stops := g.Stops()
	k.int(len(stops))
	for _, s := range stops {
		k.float(s.Offset)
		k.color(s.Color)
	}
	return k.sum()
}

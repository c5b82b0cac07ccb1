package optimize

import "github.com/wudi/pagxkit/scene"

// removeFullCanvasClipMasks detaches masks that clip nothing: a single
// Rectangle covering the whole canvas.
func removeFullCanvasClipMasks(doc *scene.Document, layers []*scene.Layer) int {
	count := 0
	for _, l := range layers {
		if l.Mask != nil && isFullCanvasClip(l.Mask, doc.Width, doc.Height) {
			l.Mask = nil
			count++
		}
		if l.Composition != nil {
			count += removeFullCanvasClipMasks(doc, l.Composition.Layers)
		}
		count += removeFullCanvasClipMasks(doc, l.Children)
	}
	return count
}

func isFullCanvasClip(mask *scene.Layer, width, height float32) bool {
	if len(mask.Contents) != 1 {
		return false
	}
	rect, ok := mask.Contents[0].(*scene.Rectangle)
	if !ok {
		return false
	}
	b := rect.Bounds()
	return b.Left <= 0 && b.Top <= 0 && rect.Size.Width >= width && rect.Size.Height >= height
}

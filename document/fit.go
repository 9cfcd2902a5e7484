package document

// Fit is the content-fit transform that adapts a document of one size to
// another: a uniform scale plus centering offsets.
type Fit struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// ContentFit computes the transform mapping a (fromW x fromH) canvas into a
// (toW x toH) box. The scale is the smaller of the two axis ratios; the
// scaled content is centered along the other axis. Matching aspect ratios
// yield zero offsets.
func ContentFit(fromW, fromH, toW, toH float64) Fit {
	if fromW <= 0 || fromH <= 0 {
		return Fit{Scale: 1}
	}
	scale := min(toW/fromW, toH/fromH)
	if fromW*toH == fromH*toW {
		return Fit{Scale: scale}
	}
	return Fit{
		Scale:   scale,
		OffsetX: (toW - fromW*scale) / 2,
		OffsetY: (toH - fromH*scale) / 2,
	}
}

// Apply maps a top-level transform through the fit. Group children are
// local to their group and need no adjustment.
func (f Fit) Apply(t Transform) Transform {
	t.X = t.X*f.Scale + f.OffsetX
	t.Y = t.Y*f.Scale + f.OffsetY
	t.ScaleX *= f.Scale
	t.ScaleY *= f.Scale
	return t
}

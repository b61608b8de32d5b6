// Package classifier sorts wallpapers that cannot be used as they are into
// the edits they need: a resize, a crop, or both.
package classifier

// Category is the edit an image needs
type Category int

const (
	None Category = iota
	NeedResize
	NeedCrop
	NeedCropResize
)

// Categories lists the categories that lead to a move, in processing order
var Categories = []Category{NeedResize, NeedCrop, NeedCropResize}

func (c Category) String() string {
	switch c {
	case NeedResize:
		return "need resize"
	case NeedCrop:
		return "need crop"
	case NeedCropResize:
		return "need crop and resize"
	default:
		return "none"
	}
}

// Label returns the folder name images of this category are moved to
func (c Category) Label() string {
	switch c {
	case NeedResize:
		return "Need_resize"
	case NeedCrop:
		return "Need_crop"
	case NeedCropResize:
		return "Need_crop_resize"
	default:
		return ""
	}
}

// Policy holds the target resolution and aspect ratio
type Policy struct {
	MinWidth              int
	MinHeight             int
	RatioWidth            int
	RatioHeight           int
	RatioTolerancePercent float64
}

// DefaultPolicy targets 1920x1080 at 16:9 with a 2% tolerance
func DefaultPolicy() Policy {
	return Policy{
		MinWidth:              1920,
		MinHeight:             1080,
		RatioWidth:            16,
		RatioHeight:           9,
		RatioTolerancePercent: 2,
	}
}

// WithinRatio reports whether width/height is within tolerance of the target
// ratio
func (p Policy) WithinRatio(width, height int) bool {
	if height <= 0 || p.RatioHeight <= 0 {
		return false
	}
	ratio := float64(width) / float64(height)
	target := float64(p.RatioWidth) / float64(p.RatioHeight)
	low := target * (100 - p.RatioTolerancePercent) / 100
	high := target * (100 + p.RatioTolerancePercent) / 100
	return low <= ratio && ratio <= high
}

// Classify returns the edit an image of the given size needs. Images that are
// large in one dimension only are left alone.
func (p Policy) Classify(width, height int) Category {
	if width <= 0 || height <= 0 {
		return None
	}

	within := p.WithinRatio(width, height)
	small := height < p.MinHeight && width < p.MinWidth
	large := height >= p.MinHeight && width >= p.MinWidth

	switch {
	case small && within:
		return NeedResize
	case large && !within:
		return NeedCrop
	case small && !within:
		return NeedCropResize
	default:
		return None
	}
}

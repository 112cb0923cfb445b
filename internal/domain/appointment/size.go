package appointment

type Size string

const (
	SizeSmall  Size = "S"
	SizeMedium Size = "M"
	SizeLarge  Size = "L"
)

// SizeForDuration buckets an estimated unload duration into a size
// class: S up to 45 minutes, M up to 90, L beyond.
func SizeForDuration(minutes float64) Size {
	switch {
	case minutes <= 45:
		return SizeSmall
	case minutes <= 90:
		return SizeMedium
	default:
		return SizeLarge
	}
}

// Points are the unit of slot capacity.
func (s Size) Points() int {
	switch s {
	case SizeSmall:
		return 1
	case SizeMedium:
		return 2
	case SizeLarge:
		return 3
	}
	return 0
}

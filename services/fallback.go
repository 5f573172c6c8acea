package services

// 演示图片，按风格选取；风格未知时按尺寸，再不行用 digital
var styleFallbacks = map[string]string{
	"digital":   "https://images.unsplash.com/photo-1546182990-dffeafbe841d?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
	"chinese":   "https://images.unsplash.com/photo-1545569341-9eb8b30979d9?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
	"cyberpunk": "https://images.unsplash.com/photo-1518709268805-4e9042af2176?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
	"fantasy":   "https://images.unsplash.com/photo-1506905925346-21bda4d32df4?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
}

var sizeFallbacks = map[string]string{
	"1K": "https://images.unsplash.com/photo-1546182990-dffeafbe841d?ixlib=rb-4.0.3&auto=format&fit=crop&w=1024&q=80",
	"2K": "https://images.unsplash.com/photo-1545569341-9eb8b30979d9?ixlib=rb-4.0.3&auto=format&fit=crop&w=1024&q=80",
	"4K": "https://images.unsplash.com/photo-1518709268805-4e9042af2176?ixlib=rb-4.0.3&auto=format&fit=crop&w=1024&q=80",
}

// FallbackSelector 确定性选择占位图，同样的输入永远得到同样的图片
type FallbackSelector struct {
	byStyle map[string]string
	bySize  map[string]string
}

func NewFallbackSelector() *FallbackSelector {
	return &FallbackSelector{byStyle: styleFallbacks, bySize: sizeFallbacks}
}

func (s *FallbackSelector) Select(style, size string) string {
	if url, ok := s.byStyle[style]; ok {
		return url
	}
	if style == "" {
		if url, ok := s.bySize[size]; ok {
			return url
		}
	}
	return s.byStyle[DefaultStyle]
}

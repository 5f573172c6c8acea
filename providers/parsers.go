package providers

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/antonholmquist/jason"
)

// responseBody 原始响应体，obj 在非 JSON 时为 nil
type responseBody struct {
	raw []byte
	obj *jason.Object
}

// ResponseParser 从响应中提取图片，纯函数
type ResponseParser func(body responseBody) (*Image, bool)

// defaultParsers 固定优先级：内联 base64 > URL 字段 > 文本中的图片链接
var defaultParsers = []ResponseParser{
	parseGeminiInline,
	parseOpenAIB64,
	parseArtifactsB64,
	parseURLFields,
	parseFreeTextURL,
}

var imageURLRe = regexp.MustCompile(`(?i)https?://[^\s"'<>\\]+\.(?:jpg|jpeg|png|gif|webp)`)

// ParseImage 依次尝试各解析器，第一个命中的结果胜出
func ParseImage(raw []byte) (*Image, error) {
	return parseWith(defaultParsers, raw)
}

func parseWith(parsers []ResponseParser, raw []byte) (*Image, error) {
	body := responseBody{raw: raw}
	if obj, err := jason.NewObjectFromBytes(raw); err == nil {
		body.obj = obj
	}
	for _, p := range parsers {
		if img, ok := p(body); ok {
			return img, nil
		}
	}
	return nil, ErrNoImageInResponse
}

// candidates[].content.parts[].inlineData.data
func parseGeminiInline(body responseBody) (*Image, bool) {
	if body.obj == nil {
		return nil, false
	}
	candidates, err := body.obj.GetObjectArray("candidates")
	if err != nil {
		return nil, false
	}
	for _, c := range candidates {
		parts, err := c.GetObjectArray("content", "parts")
		if err != nil {
			continue
		}
		for _, part := range parts {
			for _, key := range []string{"inlineData", "inline_data"} {
				data, err := part.GetString(key, "data")
				if err != nil || data == "" {
					continue
				}
				mime, _ := part.GetString(key, "mimeType")
				if mime == "" {
					mime, _ = part.GetString(key, "mime_type")
				}
				if img, ok := imageFromEncoded(data, mime); ok {
					return img, true
				}
			}
		}
	}
	return nil, false
}

// data[].b64_json
func parseOpenAIB64(body responseBody) (*Image, bool) {
	if body.obj == nil {
		return nil, false
	}
	items, err := body.obj.GetObjectArray("data")
	if err != nil {
		return nil, false
	}
	for _, item := range items {
		if data, err := item.GetString("b64_json"); err == nil && data != "" {
			if img, ok := imageFromEncoded(data, ""); ok {
				return img, true
			}
		}
	}
	return nil, false
}

// artifacts[].base64（Stability）与 images[] 中的 base64 字符串
func parseArtifactsB64(body responseBody) (*Image, bool) {
	if body.obj == nil {
		return nil, false
	}
	if artifacts, err := body.obj.GetObjectArray("artifacts"); err == nil {
		for _, a := range artifacts {
			if data, err := a.GetString("base64"); err == nil && data != "" {
				if img, ok := imageFromEncoded(data, ""); ok {
					return img, true
				}
			}
		}
	}
	for _, key := range []string{"images", "image"} {
		for _, s := range stringsAt(body.obj, key) {
			if isHTTPURL(s) {
				continue
			}
			if img, ok := imageFromEncoded(s, ""); ok {
				return img, true
			}
		}
	}
	return nil, false
}

// url 字段可能出现在不同层级
var urlPaths = [][]string{
	{"url"},
	{"image_url"},
	{"imageUrl"},
	{"output"},
	{"images"},
	{"result", "url"},
	{"result", "image_url"},
	{"result", "output"},
	{"data", "url"},
}

var urlArrayPaths = []string{"data", "images", "output", "results"}

func parseURLFields(body responseBody) (*Image, bool) {
	if body.obj == nil {
		return nil, false
	}
	for _, path := range urlPaths {
		for _, s := range stringsAt(body.obj, path...) {
			if isHTTPURL(s) || strings.HasPrefix(s, "data:image/") {
				return &Image{URL: s}, true
			}
		}
	}
	for _, key := range urlArrayPaths {
		items, err := body.obj.GetObjectArray(key)
		if err != nil {
			continue
		}
		for _, item := range items {
			for _, field := range []string{"url", "image_url"} {
				if s, err := item.GetString(field); err == nil && isHTTPURL(s) {
					return &Image{URL: s}, true
				}
			}
		}
	}
	return nil, false
}

// 最后手段：在整个响应文本里找图片链接
func parseFreeTextURL(body responseBody) (*Image, bool) {
	m := imageURLRe.Find(body.raw)
	if m == nil {
		return nil, false
	}
	return &Image{URL: string(m)}, true
}

// stringsAt 取路径上的字符串或字符串数组
func stringsAt(obj *jason.Object, keys ...string) []string {
	if s, err := obj.GetString(keys...); err == nil && s != "" {
		return []string{s}
	}
	if arr, err := obj.GetStringArray(keys...); err == nil {
		return arr
	}
	return nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func imageFromEncoded(data, mime string) (*Image, bool) {
	if strings.HasPrefix(data, "data:image/") {
		return &Image{URL: data}, true
	}
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			return nil, false
		}
	}
	if len(b) == 0 {
		return nil, false
	}
	if mime == "" {
		mime = "image/png"
	}
	return &Image{Data: b, MIMEType: mime}, true
}

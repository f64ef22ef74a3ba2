package director

import (
	"slices"
	"strings"
)

// stylePresets は短い名前で指定できる映像スタイルの定義なのだ。
var stylePresets = map[string]string{
	"anime":      "Japanese anime style, official art, cel-shaded, clean line art, expressive eyes, vibrant colors, cinematic lighting, flat shading, clear character features, no 3D effect, high resolution",
	"cinematic":  "cinematic live-action film still, anamorphic lens, shallow depth of field, natural film grain, dramatic lighting, 35mm",
	"watercolor": "soft watercolor illustration, visible paper texture, gentle color bleeding, muted pastel palette",
	"pixel":      "16-bit pixel art, limited palette, crisp pixels, side-scrolling game aesthetic",
	"3d":         "stylized 3D animation, Pixar-like rendering, soft global illumination, subsurface scattering",
	"noir":       "black and white film noir, high contrast chiaroscuro lighting, venetian blind shadows, 1940s",
}

// ResolveStyle はプリセット名ならその定義文を、それ以外は入力をそのまま返します。
// 大文字小文字は区別しません。
func ResolveStyle(style string) string {
	key := strings.ToLower(strings.TrimSpace(style))
	if preset, ok := stylePresets[key]; ok {
		return preset
	}
	return strings.TrimSpace(style)
}

// StyleNames はプリセット名の一覧を昇順で返します。
func StyleNames() []string {
	names := make([]string, 0, len(stylePresets))
	for name := range stylePresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

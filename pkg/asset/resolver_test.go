package asset

import "testing"

func TestSanitizeKey(t *testing.T) {
	cases := map[string]string{
		"Scene 1":               "scene_1",
		"Scene 1 (00:00-00:08)": "scene_1_00_00_00_08",
		"  IMG_0042.PNG ":       "img_0042_png",
		"シーン":                   "item",
		"Lan & Mochi!!":         "lan_mochi",
	}
	for in, want := range cases {
		if got := SanitizeKey(in); got != want {
			t.Errorf("SanitizeKey(%q): 期待値 '%s', 実際の値 '%s'", in, want, got)
		}
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"image/png":                 ".png",
		"image/jpeg":                ".jpg",
		"text/plain; charset=utf-8": ".txt",
		"":                          ".txt",
		"application/x-unknown":     ".bin",
	}
	for in, want := range cases {
		if got := ExtensionFor(in); got != want {
			t.Errorf("ExtensionFor(%q): 期待値 '%s', 実際の値 '%s'", in, want, got)
		}
	}
}

func TestUniqueNamer(t *testing.T) {
	n := NewUniqueNamer()
	got := []string{
		n.Name("scene_1", ".txt"),
		n.Name("scene_1", ".txt"),
		n.Name("scene_1", ".png"),
		n.Name("scene_1", ".txt"),
		n.Name("scene_1_2", ".txt"),
	}
	want := []string{"scene_1.txt", "scene_1_2.txt", "scene_1.png", "scene_1_3.txt", "scene_1_2_2.txt"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%d 番目: 期待値 '%s', 実際の値 '%s'", i, want[i], got[i])
		}
	}
}

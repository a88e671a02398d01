package classify

import (
	"testing"

	"github.com/starford/ehwaz/internal/models"
)

func fmWith(pairs ...any) *models.Frontmatter {
	fm := models.NewFrontmatter()
	for i := 0; i+1 < len(pairs); i += 2 {
		fm.Set(pairs[i].(string), pairs[i+1])
	}
	return fm
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		fm   *models.Frontmatter
		want models.ContentType
	}{
		{"empty defaults to note", fmWith(), models.TypeNote},
		{"explicit post", fmWith("type", "post"), models.TypePost},
		{"explicit note", fmWith("type", "note"), models.TypeNote},
		{"explicit note beats category", fmWith("type", "note", "categories", "tech"), models.TypeNote},
		{"explicit post beats mood", fmWith("type", "post", "mood", "happy"), models.TypePost},
		{"category name implies post", fmWith("categories", "tech"), models.TypePost},
		{"category id implies post", fmWith("categoryId", "cat1"), models.TypePost},
		{"mood implies note", fmWith("mood", "happy"), models.TypeNote},
		{"weather implies note", fmWith("weather", "rain"), models.TypeNote},
		{"topic implies note", fmWith("topicId", "t1"), models.TypeNote},
		{"category beats mood when both present", fmWith("mood", "happy", "categoryId", "cat1"), models.TypePost},
		{"unknown type falls through to signals", fmWith("type", "draft", "categories", "tech"), models.TypePost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.fm); got != tc.want {
				t.Errorf("Classify = %v, want %v", got, tc.want)
			}
			// Pure: re-invocation yields the same type.
			if got := Classify(tc.fm); got != tc.want {
				t.Errorf("second Classify = %v, want %v", got, tc.want)
			}
		})
	}
}

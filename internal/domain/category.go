package domain

import "strings"

// Category - грубая классификация содержимого по content type
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryOther    Category = "other"
)

type categoryRule struct {
	match    func(contentType string) bool
	category Category
}

func hasPrefix(prefix string) func(string) bool {
	return func(ct string) bool { return strings.HasPrefix(ct, prefix) }
}

func contains(substrings ...string) func(string) bool {
	return func(ct string) bool {
		for _, s := range substrings {
			if strings.Contains(ct, s) {
				return true
			}
		}
		return false
	}
}

// Порядок важен: первое совпадение выигрывает
var categoryRules = []categoryRule{
	{hasPrefix("image/"), CategoryImage},
	{hasPrefix("video/"), CategoryVideo},
	{hasPrefix("audio/"), CategoryAudio},
	{hasPrefix("text/"), CategoryDocument},
	{contains("pdf", "msword", "wordprocessingml", "spreadsheetml", "presentationml",
		"ms-excel", "ms-powerpoint", "opendocument", "rtf", "json", "xml", "csv"), CategoryDocument},
}

// CategoryFor вычисляет категорию по content type.
// Вызывается один раз при создании записи о файле, результат хранится в БД.
func CategoryFor(contentType string) Category {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	for _, rule := range categoryRules {
		if rule.match(ct) {
			return rule.category
		}
	}
	return CategoryOther
}

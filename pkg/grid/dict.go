package grid

import "golang.org/x/text/language"

// Labels holds the user-visible strings renderers show around the grid.
type Labels struct {
	Lang       string `json:"lang"`
	Loading    string `json:"loading"`
	NoData     string `json:"noData"`
	Search     string `json:"search"`
	RowsOnPage string `json:"rowsOnPage"`
	Page       string `json:"page"`
	All        string `json:"all"`
	Of         string `json:"of"`
}

var (
	dictTags = []language.Tag{language.English, language.Russian}

	dictionaries = []Labels{
		{
			Lang:       "en",
			Loading:    "Loading...",
			NoData:     "No rows",
			Search:     "Search",
			RowsOnPage: "Rows on page",
			Page:       "Pg",
			All:        "All",
			Of:         "of",
		},
		{
			Lang:       "ru",
			Loading:    "Загрузка",
			NoData:     "Нет записей",
			Search:     "Поиск",
			RowsOnPage: "Строк на странице",
			Page:       "Стр",
			All:        "Все",
			Of:         "из",
		},
	}

	dictMatcher = language.NewMatcher(dictTags)
)

// Dictionary returns the label set best matching lang, a BCP 47 tag or
// Accept-Language value. Unsupported languages get English.
func Dictionary(lang string) Labels {
	if lang == "" {
		return dictionaries[0]
	}
	_, i := language.MatchStrings(dictMatcher, lang)
	if i < 0 || i >= len(dictionaries) {
		i = 0
	}
	return dictionaries[i]
}

// Languages lists the supported dictionary languages.
func Languages() []string {
	out := make([]string, len(dictTags))
	for i, t := range dictTags {
		out[i] = t.String()
	}
	return out
}

// Пакет sanitize — очистка значений ячеек перед записью в табличный источник.
// Ответы анализатора размечают правки тегами <change ...>...</change>;
// в ячейку должен попасть только исправленный текст без разметки.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// changeTag — тег правки анализатора, содержимое сохраняется.
	changeTag = regexp.MustCompile(`(?is)<change\b[^>]*>(.*?)</change>`)

	// markupTag — законченный тег: от '<' до ближайшего '>'.
	// Одиночный '<' без закрывающей скобки тегом не считается.
	markupTag = regexp.MustCompile(`<[^>]*>`)

	// tagName — имя элемента в начале тега (<b>, </p>, <br/>).
	tagName = regexp.MustCompile(`^</?([A-Za-z][A-Za-z0-9-]*)`)
)

// strict удаляет разметку вместе с содержимым script/style. Политика потокобезопасна.
var strict = bluemonday.StrictPolicy()

// CellValue возвращает текст без разметки: теги правок раскрываются,
// остальные законченные теги удаляются, серии пробельных символов
// схлопываются в один пробел, края обрезаются. Текст вне тегов
// (включая одиночный '<' и HTML-сущности) сохраняется как есть.
func CellValue(s string) string {
	if s == "" {
		return ""
	}
	s = changeTag.ReplaceAllString(s, "$1")
	s = strict.Sanitize(escapeText(s))
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

// escapeText экранирует текст между законченными тегами, а сами теги
// приводит к виду <name> или </name> без атрибутов. Так политика видит
// только разметку, а экранирование снимается после очистки без потерь.
// Теги без имени (<!-- -->, <3 >) удаляются сразу.
func escapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)

	last := 0
	for _, loc := range markupTag.FindAllStringIndex(s, -1) {
		b.WriteString(html.EscapeString(s[last:loc[0]]))
		tag := s[loc[0]:loc[1]]
		if m := tagName.FindStringSubmatch(tag); m != nil {
			if strings.HasPrefix(tag, "</") {
				b.WriteString("</" + m[1] + ">")
			} else {
				b.WriteString("<" + m[1] + ">")
			}
		}
		last = loc[1]
	}
	b.WriteString(html.EscapeString(s[last:]))
	return b.String()
}

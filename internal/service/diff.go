// diff.go — вычисление правок между версиями текста.
package service

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// Виды правок.
const (
	ChangeReplace = "replace"
	ChangeInsert  = "insert"
	ChangeDelete  = "delete"
)

// diffChanges возвращает правки, превращающие before в after.
// Удаление, за которым сразу следует вставка, считается заменой.
func diffChanges(before, after string) []model.Change {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	changes := []model.Change{}
	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			continue
		case diffmatchpatch.DiffDelete:
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				changes = append(changes, model.Change{
					Type:      ChangeReplace,
					Original:  strings.TrimSpace(d.Text),
					Corrected: strings.TrimSpace(diffs[i+1].Text),
				})
				i++
				continue
			}
			changes = append(changes, model.Change{Type: ChangeDelete, Original: strings.TrimSpace(d.Text)})
		case diffmatchpatch.DiffInsert:
			changes = append(changes, model.Change{Type: ChangeInsert, Corrected: strings.TrimSpace(d.Text)})
		}
	}
	return changes
}

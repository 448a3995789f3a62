// table.go — снимок табличных данных источника.
package model

import "time"

// TableSnapshot — неизменяемый снимок диапазона табличного источника.
// Первая строка источника — заголовок; Rows содержит только строки данных,
// каждая длиной len(Columns). Полностью пустые колонки отброшены.
type TableSnapshot struct {
	// Columns — имена колонок в порядке следования
	Columns []string
	// Rows — строки данных
	Rows [][]string
	// HeaderIndex — позиция колонки по имени (при повторах — первое вхождение)
	HeaderIndex map[string]int
	// Warning — структурное предупреждение (например, нет обязательной колонки)
	Warning string
	// FetchedAt — время загрузки из источника
	FetchedAt time.Time
}

// Len возвращает количество строк данных.
func (s *TableSnapshot) Len() int {
	return len(s.Rows)
}

// Value возвращает значение ячейки строки row в колонке column.
func (s *TableSnapshot) Value(row int, column string) (string, bool) {
	if row < 0 || row >= len(s.Rows) {
		return "", false
	}
	idx, ok := s.HeaderIndex[column]
	if !ok {
		return "", false
	}
	return s.Rows[row][idx], true
}

// Records возвращает строки в виде отображений колонка → значение.
// Для повторяющихся имён колонок побеждает первое вхождение.
func (s *TableSnapshot) Records() []map[string]string {
	records := make([]map[string]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		rec := make(map[string]string, len(s.HeaderIndex))
		for name, idx := range s.HeaderIndex {
			rec[name] = row[idx]
		}
		records = append(records, rec)
	}
	return records
}

// SheetMetadata — сведения о листе табличного источника.
type SheetMetadata struct {
	// Title — название листа (используется в адресах ячеек)
	Title string
	// RowCount — объявленное количество строк листа
	RowCount int
	// ColumnCount — объявленное количество колонок листа
	ColumnCount int
}

// Package ledger реализует файловый журнал обработанных покупок.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/crmsync-system/internal/model"
)

var header = []string{"date", "email", "purchase_type", "amount"}

// Store хранит журнал покупок в CSV-файле с фиксированной схемой
// date,email,purchase_type,amount. Файл читают внешние отчётные скрипты,
// поэтому порядок строк соответствует порядку вставки.
type Store struct {
	path string

	// mu сериализует путь записи: стратегия read-filter-rewrite
	// без блокировки теряет строки при конкурентных добавлениях.
	mu sync.Mutex
}

// NewStore создаёт журнал по указанному пути. Отсутствующий файл
// эквивалентен пустому журналу и создаётся при первой записи.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append дописывает одну строку в журнал. Существующие корректные строки
// сохраняются в исходном порядке, некорректные отбрасываются; файл
// перезаписывается целиком и подменяется атомарно.
func (s *Store) Append(rec model.LedgerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return err
	}

	rows = append(rows, []string{
		rec.Date.UTC().Format(time.RFC3339),
		rec.Email,
		rec.PurchaseType,
		rec.Amount.String(),
	})

	return s.writeRows(rows)
}

// RowCount возвращает число зафиксированных строк без учёта заголовка.
func (s *Store) RowCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Records возвращает все корректные строки журнала в порядке вставки.
func (s *Store) Records() ([]model.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}

	records := make([]model.LedgerRecord, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row[3])
		if err != nil {
			continue
		}
		records = append(records, model.LedgerRecord{
			Date:         parseRowDate(row[0]),
			Email:        row[1],
			PurchaseType: row[2],
			Amount:       amount,
		})
	}
	return records, nil
}

// readRows читает файл и возвращает только корректные строки данных.
func (s *Store) readRows() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	// Унаследованные файлы могут содержать строки произвольной ширины.
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	rows := make([][]string, 0, len(all))
	for _, row := range all {
		if !isValidRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// isValidRow отбраковывает заголовок и унаследованные строки:
// данными считается строка из четырёх полей с email и десятичной суммой.
func isValidRow(row []string) bool {
	if len(row) != len(header) {
		return false
	}
	if row[1] == "" {
		return false
	}
	if _, err := decimal.NewFromString(row[3]); err != nil {
		return false
	}
	return true
}

// writeRows перезаписывает журнал во временный файл и атомарно подменяет им
// основной, чтобы читатели никогда не видели частичную запись.
func (s *Store) writeRows(rows [][]string) error {
	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".ledger-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	w := csv.NewWriter(tmp)

	writeErr := w.Write(header)
	if writeErr == nil {
		writeErr = w.WriteAll(rows)
	}
	if writeErr == nil {
		writeErr = tmp.Sync()
	}

	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", writeErr)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

var rowDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseRowDate(value string) time.Time {
	for _, layout := range rowDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

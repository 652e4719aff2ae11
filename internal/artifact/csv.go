package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Prospector/internal/domain"
)

// DefaultDir — каталог артефактов по умолчанию.
const DefaultDir = "./artifacts"

// CSVWriter пишет CSV-отчёты на диск и регистрирует их в Store.
type CSVWriter struct {
	dir   string
	store *Store
}

// NewCSVWriter создаёт writer и каталог для файлов, если его нет.
func NewCSVWriter(dir string, store *Store) (*CSVWriter, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %q: %w", dir, err)
	}
	return &CSVWriter{dir: dir, store: store}, nil
}

// WriteCSV пишет заголовок columns и строки rows в новый CSV-файл,
// регистрирует артефакт и возвращает его учётную запись. Значения
// берутся из rows по именам колонок; отсутствующие остаются пустыми.
func (w *CSVWriter) WriteCSV(filename string, columns []string, rows []map[string]string, meta map[string]any) (*domain.ArtifactRecord, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("csv report: no columns")
	}

	name := SafeFilename(filename)
	id := uuid.New().String()
	path := filepath.Join(w.dir, id+"-"+name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(columns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	line := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			line[i] = row[col]
		}
		if err := cw.Write(line); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %q: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}

	// meta не мутируется: копия дополняется счётчиками.
	recMeta := make(map[string]any, len(meta)+2)
	for k, v := range meta {
		recMeta[k] = v
	}
	recMeta["rowCount"] = len(rows)
	recMeta["columnCount"] = len(columns)

	rec := domain.ArtifactRecord{
		ID:        id,
		Type:      domain.ArtifactTypeCSV,
		Filename:  name,
		Path:      path,
		Mime:      "text/csv",
		CreatedAt: time.Now().UTC(),
		Bytes:     info.Size(),
		Meta:      recMeta,
	}
	w.store.Put(rec)

	return &rec, nil
}

// SafeFilename приводит имя файла к безопасной форме: отбрасывает
// компоненты пути, заменяет посторонние символы на дефис и
// гарантирует расширение .csv.
func SafeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.TrimLeft(name, ".")
	if name == "" || name == string(filepath.Separator) {
		name = "report"
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	name = b.String()

	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name
}

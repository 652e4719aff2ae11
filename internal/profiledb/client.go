package profiledb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Prospector/internal/domain"
)

// Лимиты выборки.
const (
	// DefaultLimit — строк в выборке, если план не задал свой лимит.
	DefaultLimit = 50

	// MaxLimit — жёсткий потолок: больший лимит урезается с warning.
	MaxLimit = 500
)

// intentSpec — именованный запрос каталога.
type intentSpec struct {
	sql    string
	filter string // имя обязательного фильтра; подставляется как $2
}

// queryIntents — каталог именованных запросов.
var queryIntents = map[string]intentSpec{
	"recent_profiles": {
		sql: `
			SELECT id, current_username, full_name, followers, bio, created_at
			FROM profiles
			ORDER BY created_at DESC
			LIMIT $1
		`,
	},
	"profiles_by_tag": {
		sql: `
			SELECT p.id, p.current_username, p.full_name, p.followers, p.bio, p.created_at
			FROM profiles p
			JOIN profile_tags t ON t.profile_id = p.id
			WHERE t.tag = $2
			ORDER BY p.created_at DESC
			LIMIT $1
		`,
		filter: "tag",
	},
	"profiles_missing_enrichment": {
		sql: `
			SELECT id, current_username, full_name, followers, bio, created_at
			FROM profiles
			WHERE enriched_at IS NULL
			ORDER BY created_at DESC
			LIMIT $1
		`,
	},
	"top_profiles_by_followers": {
		sql: `
			SELECT id, current_username, full_name, followers, bio, created_at
			FROM profiles
			ORDER BY followers DESC
			LIMIT $1
		`,
	},
}

// Intents возвращает имена доступных запросов в алфавитном порядке.
func Intents() []string {
	out := make([]string, 0, len(queryIntents))
	for name := range queryIntents {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// QueryRequest — параметры выборки.
type QueryRequest struct {
	// Intent — именованный запрос из каталога.
	Intent string

	// Limit — максимум строк; 0 — DefaultLimit.
	Limit int

	// Filters — значения фильтров intent (например, tag).
	Filters map[string]any
}

// QueryResult — результат выборки.
type QueryResult struct {
	// Rows — строки выборки как записи поле → значение.
	Rows []domain.Record

	// RowCount — число строк.
	RowCount int

	// Truncated — выборка упёрлась в лимит; строк может быть больше.
	Truncated bool

	// Warning — пояснение для клиента (например, срез лимита).
	Warning string
}

// Client выполняет именованные запросы к базе профилей.
type Client struct {
	pool *pgxpool.Pool
}

// NewClient создаёт клиента поверх пула.
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// Query выполняет intent и возвращает строки в виде записей.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	spec, ok := queryIntents[req.Intent]
	if !ok {
		return nil, fmt.Errorf("intent %q (known: %v): %w", req.Intent, Intents(), ErrUnknownIntent)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	warning := ""
	if limit > MaxLimit {
		warning = fmt.Sprintf("limit reduced from %d to %d", limit, MaxLimit)
		limit = MaxLimit
	}

	args := []any{limit}
	if spec.filter != "" {
		val, ok := req.Filters[spec.filter]
		if !ok || val == nil {
			return nil, fmt.Errorf("intent %q requires filter %q: %w", req.Intent, spec.filter, ErrMissingFilter)
		}
		args = append(args, val)
	}

	rows, err := c.pool.Query(ctx, spec.sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", req.Intent, err)
	}
	defer rows.Close()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", req.Intent, err)
	}

	return &QueryResult{
		Rows:      records,
		RowCount:  len(records),
		Truncated: len(records) == limit,
		Warning:   warning,
	}, nil
}

// collectRecords превращает строки курсора в записи поле → значение.
// Имена полей берутся из описания результата, поэтому каталог запросов
// можно расширять без изменения этого кода.
func collectRecords(rows pgx.Rows) ([]domain.Record, error) {
	fields := rows.FieldDescriptions()

	var out []domain.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		rec := make(domain.Record, len(fields))
		for i, fd := range fields {
			rec[fd.Name] = normalizeValue(values[i])
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// normalizeValue приводит значения драйвера к формам, пригодным
// для JSON и CSV.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case [16]byte:
		id, err := uuid.FromBytes(t[:])
		if err != nil {
			return fmt.Sprintf("%x", t)
		}
		return id.String()
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return v
	}
}

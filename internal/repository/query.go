package repository

import (
	"fmt"
	"strings"

	"github.com/noah-isme/blog-platform-api/internal/models"
)

// orderClause maps the public sortBy name onto a whitelisted column and
// falls back to created_at for anything unknown.
func orderClause(q models.ListQuery, columns map[string]string, fallback string) string {
	column, ok := columns[q.SortBy]
	if !ok {
		column = fallback
	}
	direction := q.SortDirection
	if direction != "ASC" {
		direction = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}

// pageClause renders LIMIT/OFFSET for a normalised query.
func pageClause(q models.ListQuery) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", q.PageSize, q.Offset())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeEscape is appended to every ILIKE using likePattern.
const likeEscape = ` ESCAPE '\'`

// likePattern matches term literally anywhere in the column.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

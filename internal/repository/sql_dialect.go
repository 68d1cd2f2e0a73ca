package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// dbDialectName 获取数据库方言名称，默认按 sqlite 处理。
func dbDialectName(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return dialectSQLite
	}
	switch name := strings.ToLower(strings.TrimSpace(db.Dialector.Name())); name {
	case "":
		return dialectSQLite
	case "postgresql":
		return dialectPostgres
	default:
		return name
	}
}

// jsonTextExpr JSON 字段文本提取表达式
func jsonTextExpr(dialect, column, key string) string {
	if dialect == dialectPostgres {
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	}
	return fmt.Sprintf("json_extract(%s, '$.\"%s\"')", column, key)
}

// searchClause 构建 普通列 + JSON 键 的模糊匹配条件；search 中的通配符按字面匹配
func searchClause(dialect, search string, plainColumns []string, jsonColumn string, jsonKeys []string) (string, []interface{}) {
	operator := "LIKE"
	if dialect == dialectPostgres {
		operator = "ILIKE"
	}
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(search)) + "%"

	var exprs []string
	for _, column := range plainColumns {
		if column = strings.TrimSpace(column); column != "" {
			exprs = append(exprs, column)
		}
	}
	if column := strings.TrimSpace(jsonColumn); column != "" {
		for _, key := range jsonKeys {
			if key = strings.TrimSpace(key); key != "" {
				exprs = append(exprs, jsonTextExpr(dialect, column, key))
			}
		}
	}

	parts := make([]string, 0, len(exprs))
	args := make([]interface{}, 0, len(exprs))
	for _, expr := range exprs {
		parts = append(parts, fmt.Sprintf(`%s %s ? ESCAPE '\'`, expr, operator))
		args = append(args, pattern)
	}
	return strings.Join(parts, " OR "), args
}

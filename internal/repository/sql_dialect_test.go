package repository

import (
	"strings"
	"testing"
)

func TestJSONTextExpr(t *testing.T) {
	if got := jsonTextExpr(dialectSQLite, "custom_fields", "brand"); got != `json_extract(custom_fields, '$."brand"')` {
		t.Fatalf("unexpected sqlite json expr: %s", got)
	}
	if got := jsonTextExpr(dialectPostgres, "custom_fields", "brand"); got != "(custom_fields::jsonb ->> 'brand')" {
		t.Fatalf("unexpected postgres json expr: %s", got)
	}
}

func TestSearchClauseSQLite(t *testing.T) {
	condition, args := searchClause(dbDialectName(nil), " oak ", []string{"name", "sku", " "}, "custom_fields", []string{"brand"})
	if len(args) != 3 {
		t.Fatalf("arg count want 3 got %d", len(args))
	}
	if !strings.Contains(condition, `name LIKE ? ESCAPE '\'`) || !strings.Contains(condition, `sku LIKE ?`) {
		t.Fatalf("condition should contain plain LIKE columns, got %s", condition)
	}
	if !strings.Contains(condition, `json_extract(custom_fields, '$."brand"') LIKE ?`) {
		t.Fatalf("condition should contain custom field LIKE, got %s", condition)
	}
	if args[0] != "%oak%" {
		t.Fatalf("unexpected pattern: %v", args[0])
	}
}

func TestSearchClausePostgresEscapesWildcards(t *testing.T) {
	condition, args := searchClause(dialectPostgres, "50%_off", []string{"barcode"}, "", nil)
	if condition != `barcode ILIKE ? ESCAPE '\'` {
		t.Fatalf("unexpected postgres condition: %s", condition)
	}
	if len(args) != 1 || args[0] != `%50\%\_off%` {
		t.Fatalf("wildcards should be escaped, got %v", args)
	}
}

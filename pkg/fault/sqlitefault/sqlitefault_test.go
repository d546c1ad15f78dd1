package sqlitefault

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/wayneeseguin/logspool/pkg/fault"
)

func TestClassifySqliteError(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	_, err = db.Exec("INSERT INTO missing_table VALUES (1)")
	if err == nil {
		t.Fatal("expected error inserting into a missing table")
	}

	var serr *sqlite3.Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *sqlite3.Error in chain, got %T", err)
	}

	node := fault.FromError(fmt.Errorf("save order: %w", err))
	da := node.Find(fault.KindDataAccess)
	if da == nil {
		t.Fatalf("expected data access node, tree root kind %s", node.Kind)
	}
	if da.DataAccess.Code != int(serr.ExtendedCode()) {
		t.Errorf("code = %d, want %d", da.DataAccess.Code, serr.ExtendedCode())
	}
	if da.DataAccess.Server != "" {
		t.Errorf("server should be empty for sqlite, got %q", da.DataAccess.Server)
	}
}

func TestClassifyIgnoresOtherErrors(t *testing.T) {
	if _, ok := Classify(errors.New("plain")); ok {
		t.Error("plain errors must not be classified")
	}
	var nilErr *sqlite3.Error
	if _, ok := Classify(nilErr); ok {
		t.Error("nil *sqlite3.Error must not be classified")
	}
}

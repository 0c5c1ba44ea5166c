package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/gripvest/internal/common"
	tcommon "github.com/bobmcallan/gripvest/tests/common"
	surreal "github.com/surrealdb/surrealdb.go"
)

// testStore starts the shared SurrealDB container and returns a Store on a
// database unique to the test.
func testStore(t *testing.T) *Store {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)
	ctx := context.Background()

	db, err := surreal.New(sc.Address())
	if err != nil {
		t.Fatalf("connect to SurrealDB: %v", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": "root",
		"pass": "root",
	}); err != nil {
		t.Fatalf("sign in to SurrealDB: %v", err)
	}

	// Subtests produce names like "Test/subtest" and SurrealDB rejects "/"
	// in database names.
	sanitized := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dbName := fmt.Sprintf("t_%s_%d", sanitized, time.Now().UnixNano()%100000)
	if err := db.Use(ctx, "gripvest_test", dbName); err != nil {
		t.Fatalf("select namespace/database: %v", err)
	}

	s, err := newStore(ctx, db, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

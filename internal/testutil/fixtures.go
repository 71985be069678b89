package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/gridview/pkg/grid"
)

// Roles cycles through the rol field of Users.
var Roles = []string{"admin", "editor", "viewer"}

// Users returns n records with ids "1".."n". Each has a zero-padded name
// ("user 01"), an age of 20+i and a role from Roles. Every fifth record is
// disabled.
func Users(n int) []grid.Record {
	out := make([]grid.Record, 0, n)
	for i := 1; i <= n; i++ {
		r := grid.NewRecord(fmt.Sprint(i), map[string]any{
			"name": fmt.Sprintf("user %02d", i),
			"age":  20 + i,
			"rol":  Roles[(i-1)%len(Roles)],
		})
		r.Disabled = i%5 == 0
		out = append(out, r)
	}
	return out
}

// UserColumns is a column model over Users.
func UserColumns() []grid.Column {
	return []grid.Column{
		{Name: "name", Title: "Name", Sortable: true, Filter: grid.FilterText},
		{Name: "age", Title: "Age", Sortable: true, SortType: grid.SortNumber},
		{Name: "rol", Title: "Role", Sortable: true, Filter: grid.FilterEnumerated},
	}
}

// WriteFile writes content to name under dir, creating parent directories,
// and returns the full path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

package db

import (
	"strings"
	"testing"

	"github.com/shinyyama/realestate-backend/internal/config"
)

func TestBuildDSN(t *testing.T) {
	base := config.Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBName: "estate", DBPort: "3306"}
	tests := []struct {
		name     string
		mutate   func(c *config.Config)
		contains string
	}{
		{"host and port", func(c *config.Config) { c.DBHost = "db.local" }, "@tcp(db.local:3306)/estate"},
		{"explicit tcp", func(c *config.Config) { c.DBHost = "tcp(10.0.0.1:3307)" }, "@tcp(10.0.0.1:3307)/estate"},
		{"socket path", func(c *config.Config) { c.DBHost = "/var/run/mysqld.sock" }, "@unix(/var/run/mysqld.sock)/estate"},
		{"cloud sql", func(c *config.Config) { c.DBHost = "ignored"; c.InstanceConnectionName = "proj:region:inst" }, "@unix(/cloudsql/proj:region:inst)/estate"},
		{"postgres", func(c *config.Config) { c.DBDriver = "postgres"; c.DBHost = "pg"; c.DBSSLMode = "disable" }, "host=pg user=u password=p dbname=estate port=5432"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			got := BuildDSN(&cfg)
			if !strings.Contains(got, tt.contains) {
				t.Fatalf("dsn=%q want substring %q", got, tt.contains)
			}
		})
	}
}

func TestBuildDSNMySQLFoundRows(t *testing.T) {
	cfg := config.Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "h", DBName: "n", DBPort: "3306"}
	if got := BuildDSN(&cfg); !strings.Contains(got, "clientFoundRows=true") {
		t.Fatalf("dsn=%q missing clientFoundRows", got)
	}
}

// Package datarecording stores experiment results in a SQLite database.
// Heartbeat snapshots of a running policy engine are batched and flushed to
// one table per engine, so finished runs can be inspected with any SQLite
// client.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that can record and store experiment data.
type DataRecorder interface {
	// CreateTable creates a table whose columns are the fields of the
	// sample entry struct.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers one entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all tables created so far.
	ListTables() []string

	// Flush writes all buffered entries to the database.
	Flush()
}

// New creates a DataRecorder backed by a fresh SQLite database at path. An
// empty path picks a unique generated name. Buffered entries are flushed
// at process exit.
func New(path string) DataRecorder {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	w.init()

	atexit.Register(func() { w.Flush() })

	return w
}

// NewWithDB creates a DataRecorder on an already opened database.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &sqliteWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	insertStmt *sql.Stmt
	entries    []any
}

type sqliteWriter struct {
	*sql.DB

	dbName    string
	tables    map[string]*table
	batchSize int
}

func (w *sqliteWriter) init() {
	if w.dbName == "" {
		w.dbName = "llcpolicy_run_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	t := reflect.TypeOf(sampleEntry)
	if t.Kind() != reflect.Struct {
		panic(fmt.Errorf("table entries must be structs, got %s", t.Kind()))
	}

	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		mustBeStorableKind(field)
		columns = append(columns,
			fmt.Sprintf("%s %s", field.Name, sqlTypeFor(field.Type.Kind())))
	}

	w.mustExecute(fmt.Sprintf("CREATE TABLE %s (%s);",
		tableName, strings.Join(columns, ", ")))

	w.tables[tableName] = &table{
		structType: t,
		insertStmt: w.prepareInsert(tableName, t),
	}
}

func mustBeStorableKind(field reflect.StructField) {
	switch field.Type.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.String:
	default:
		panic(fmt.Errorf("field %s has unstorable kind %s",
			field.Name, field.Type.Kind()))
	}
}

func sqlTypeFor(kind reflect.Kind) string {
	switch kind {
	case reflect.Float32, reflect.Float64:
		return "REAL"
	case reflect.String:
		return "TEXT"
	default:
		return "INTEGER"
	}
}

func (w *sqliteWriter) prepareInsert(
	tableName string,
	t reflect.Type,
) *sql.Stmt {
	placeholders := strings.TrimSuffix(
		strings.Repeat("?, ", t.NumField()), ", ")

	stmt, err := w.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		tableName, placeholders))
	if err != nil {
		panic(err)
	}

	return stmt
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	t, ok := w.tables[tableName]
	if !ok {
		panic(fmt.Errorf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		panic(fmt.Errorf("entry type %T does not match table %s",
			entry, tableName))
	}

	t.entries = append(t.entries, entry)
	if len(t.entries) >= w.batchSize {
		w.flushTable(tableName, t)
	}
}

func (w *sqliteWriter) ListTables() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	return names
}

func (w *sqliteWriter) Flush() {
	for name, t := range w.tables {
		w.flushTable(name, t)
	}
}

func (w *sqliteWriter) flushTable(name string, t *table) {
	if len(t.entries) == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")

	for _, entry := range t.entries {
		v := reflect.ValueOf(entry)
		values := make([]any, v.NumField())
		for i := range values {
			values[i] = v.Field(i).Interface()
		}

		_, err := t.insertStmt.Exec(values...)
		if err != nil {
			panic(fmt.Errorf("inserting into %s: %w", name, err))
		}
	}

	w.mustExecute("COMMIT TRANSACTION")

	t.entries = nil
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		panic(fmt.Errorf("failed to execute %q: %w", query, err))
	}

	return res
}

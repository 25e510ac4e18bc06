// Package datarecording provides a buffered sink that records structured
// entries into a SQLite database, one table per entry type.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder is a backend that records and stores structured entries.
type DataRecorder interface {
	// CreateTable creates a table for entries shaped like sampleEntry.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all created tables.
	ListTables() []string

	// Flush writes all buffered entries into the database.
	Flush()
}

const defaultBatchSize = 100000

// New creates a DataRecorder writing to the given path. An empty path picks a
// unique file name. The file must not already exist.
func New(path string) DataRecorder {
	r := &sqliteRecorder{
		dbName:    path,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*recorderTable),
	}

	r.openFile()

	atexit.Register(func() { r.Flush() })

	return r
}

// NewWithDB creates a DataRecorder on top of an already opened database.
func NewWithDB(db *sql.DB) DataRecorder {
	r := &sqliteRecorder{
		db:        db,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*recorderTable),
	}

	atexit.Register(func() { r.Flush() })

	return r
}

type recorderTable struct {
	structType reflect.Type
	entries    []any
}

type sqliteRecorder struct {
	db *sql.DB

	dbName     string
	tables     map[string]*recorderTable
	batchSize  int
	entryCount int
}

func (r *sqliteRecorder) openFile() {
	if r.dbName == "" {
		r.dbName = "cohesim_data_recording_" + xid.New().String()
	}

	filename := r.dbName + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	r.db = db
}

func columnKindAllowed(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func entryFieldsMustBeFlat(entry any) error {
	t := reflect.TypeOf(entry)

	for i := 0; i < t.NumField(); i++ {
		if !columnKindAllowed(t.Field(i).Type.Kind()) {
			return errors.New("entry is invalid")
		}
	}

	return nil
}

func (r *sqliteRecorder) CreateTable(tableName string, sampleEntry any) {
	if err := entryFieldsMustBeFlat(sampleEntry); err != nil {
		panic(err)
	}

	columns := strings.Join(structs.Names(sampleEntry), ", \n\t")
	r.mustExecute(
		`CREATE TABLE ` + tableName + ` (` + "\n\t" + columns + "\n" + `);`)

	r.tables[tableName] = &recorderTable{
		structType: reflect.TypeOf(sampleEntry),
		entries:    []any{},
	}
}

func (r *sqliteRecorder) InsertData(tableName string, entry any) {
	table, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	table.entries = append(table.entries, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		r.Flush()
	}
}

func (r *sqliteRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

func (r *sqliteRecorder) Flush() {
	if r.entryCount == 0 {
		return
	}

	r.mustExecute("BEGIN TRANSACTION")
	defer r.mustExecute("COMMIT TRANSACTION")

	for tableName, table := range r.tables {
		if len(table.entries) == 0 {
			continue
		}

		r.flushTable(tableName, table)
	}

	r.entryCount = 0
}

func (r *sqliteRecorder) flushTable(tableName string, table *recorderTable) {
	stmt := r.prepareInsert(tableName, table.entries[0])
	defer stmt.Close()

	for _, entry := range table.entries {
		values := reflect.ValueOf(entry)

		args := make([]any, 0, values.NumField())
		for i := 0; i < values.NumField(); i++ {
			args = append(args, values.Field(i).Interface())
		}

		if _, err := stmt.Exec(args...); err != nil {
			panic(err)
		}
	}

	table.entries = nil
}

func (r *sqliteRecorder) prepareInsert(tableName string, entry any) *sql.Stmt {
	placeholders := structs.Names(entry)
	for i := range placeholders {
		placeholders[i] = "?"
	}

	stmt, err := r.db.Prepare(
		"INSERT INTO " + tableName +
			" VALUES (" + strings.Join(placeholders, ", ") + ")")
	if err != nil {
		panic(err)
	}

	return stmt
}

func (r *sqliteRecorder) mustExecute(query string) sql.Result {
	res, err := r.db.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

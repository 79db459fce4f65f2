package journal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/vizzuality/rwgo/config"
)

// This is the mutation journal, which logs all update and delete activity
// issued against the catalog. The journal is a table of mutation records
// (one per operation).

// a record storing all information relevant to a mutation
type Record struct {
	// UUID associated with the mutation (assigned if zero)
	Id uuid.UUID `json:"id"`
	// the ID and kind of the resource mutated
	ResourceId string `json:"resource_id"`
	Kind       string `json:"kind"`
	// the operation attempted ("update" or "delete")
	Operation string `json:"operation"`
	// outcome of the mutation ("succeeded", "failed", or "aborted")
	Status string `json:"status"`
	// time at which the mutation was attempted
	Time time.Time `json:"time"`
}

// initialize the mutation journal
func Init() error {
	if !IsOpen() {
		go mutationJournalProcess()
		time.Sleep(100 * time.Millisecond)
		if !IsOpen() {
			return &CantOpenError{Message: "the journal process didn't come up (see the log)"}
		}
	}
	return nil
}

// saves and closes the mutation journal (if it's been opened)
func Finalize() error {
	if IsOpen() {
		channels_.Input.Shutdown <- struct{}{}
		closeChannels()
	}
	return nil
}

// returns true if the journal is open for writing, false if not
func IsOpen() bool {
	if channels_.Open { // has Init() been called?
		channels_.Input.CheckIfOpen <- struct{}{}
		select {
		case isOpen := <-channels_.Output.IsOpen:
			return isOpen
		case <-time.After(1 * time.Second): // after a second, we assume the goroutine has crashed
			closeChannels()
			return false
		}
	}
	return false
}

// records an attempted mutation
// record: the record containing all mutation information
func RecordMutation(record Record) error {
	switch record.Status {
	case "succeeded", "failed", "aborted":
		// pass-through (see below)
	default:
		return &NewRecordError{
			Id:      record.Id,
			Message: fmt.Sprintf("Invalid status: %s", record.Status),
		}
	}
	switch record.Operation {
	case "update", "delete":
	default:
		return &NewRecordError{
			Id:      record.Id,
			Message: fmt.Sprintf("Invalid operation: %s", record.Operation),
		}
	}
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}

	if !IsOpen() {
		return &NotOpenError{}
	}

	channels_.Input.CreateRecord <- record
	return <-channels_.Output.Error
}

// retrieves records for mutations attempted within the time range with the
// given (inclusive) bounds
func Records(start, stop time.Time) ([]Record, error) {
	if !IsOpen() {
		return nil, &NotOpenError{}
	}
	channels_.Input.FetchRecords <- TimeRange{Start: start, Stop: stop}
	var records []Record
	var err error
	select {
	case records = <-channels_.Output.Records:
		return records, err
	case err = <-channels_.Output.Error:
		return records, err
	}
}

//-----------
// Internals
//-----------

// The mutation journal gets its own goroutine so it doesn't bring down the
// client if it crashes. Here we define "input" channels (main process ->
// goroutine) and "output" channels (goroutine -> main process) for passing
// data back and forth

type TimeRange struct {
	Start, Stop time.Time
}

var channels_ struct {
	Open  bool // true if channels are open, false if not
	Input struct {
		CreateRecord chan Record    // for creating new records
		CheckIfOpen  chan struct{}  // for checking to see whether the database is open
		FetchRecords chan TimeRange // for fetching records within a time range
		Shutdown     chan struct{}  // for shutting down the database
	}

	Output struct {
		Records chan []Record // for returning records
		Error   chan error    // for returning errors
		IsOpen  chan bool     // for answering queries about whether the database is open
	}
}

func mutationJournalProcess() {

	// open our channels before anything that can fail, so the failure path
	// below never touches a nil channel
	openChannels()

	// open the database, creating the schema if necessary
	dbPath := filepath.Join(config.Service.DataDirectory, "mutation_journal.db")
	conn, err := sqlite.OpenConn(dbPath, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		journalFailed(&CantOpenError{
			Message: err.Error(),
		})
		return
	}

	err = sqlitex.ExecuteTransient(conn,
		`CREATE TABLE IF NOT EXISTS mutations (
			id TEXT PRIMARY KEY,
			resource_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			operation TEXT NOT NULL,
			status TEXT NOT NULL,
			time TEXT NOT NULL
		)`, nil)
	if err != nil {
		conn.Close()
		journalFailed(&CantOpenError{
			Message: err.Error(),
		})
		return
	}

	// handle requests
	running := true
	for running {
		select {

		case <-channels_.Input.CheckIfOpen:
			channels_.Output.IsOpen <- true // always true if this goroutine is running!

		case record := <-channels_.Input.CreateRecord:
			err := createRecord(conn, record)
			channels_.Output.Error <- err

		case timeRange := <-channels_.Input.FetchRecords:
			records, err := fetchRecords(conn, timeRange.Start, timeRange.Stop)
			if err != nil {
				channels_.Output.Error <- err
			} else {
				channels_.Output.Records <- records
			}

		case <-channels_.Input.Shutdown:
			err := conn.Close()
			if err != nil {
				channels_.Output.Error <- &CantCloseError{
					Message: err.Error(),
				}
			}
			running = false
		}
	}
}

// Logs a journal that couldn't open and keeps answering liveness queries
// with false, so no caller ever blocks on a dead journal. Every operation
// checks IsOpen before sending on the other channels, so liveness queries
// are the only traffic that can arrive here.
func journalFailed(err error) {
	slog.Error(err.Error())
	for range channels_.Input.CheckIfOpen {
		channels_.Output.IsOpen <- false
	}
}

func openChannels() {
	channels_.Open = true
	channels_.Input.CreateRecord = make(chan Record)
	channels_.Input.CheckIfOpen = make(chan struct{})
	channels_.Input.FetchRecords = make(chan TimeRange)
	channels_.Input.Shutdown = make(chan struct{})
	channels_.Output.Records = make(chan []Record)
	channels_.Output.Error = make(chan error)
	channels_.Output.IsOpen = make(chan bool)
}

func closeChannels() {
	channels_.Open = false
	close(channels_.Input.CreateRecord)
	close(channels_.Input.CheckIfOpen)
	close(channels_.Input.FetchRecords)
	close(channels_.Input.Shutdown)
	close(channels_.Output.Records)
	close(channels_.Output.Error)
	close(channels_.Output.IsOpen)
}

func createRecord(conn *sqlite.Conn, record Record) error {
	return sqlitex.Execute(conn,
		`INSERT INTO mutations (id, resource_id, kind, operation, status, time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				record.Id.String(),
				record.ResourceId,
				record.Kind,
				record.Operation,
				record.Status,
				record.Time.UTC().Format(time.RFC3339),
			},
		})
}

func fetchRecords(conn *sqlite.Conn, start, stop time.Time) ([]Record, error) {
	records := make([]Record, 0)
	err := sqlitex.Execute(conn,
		`SELECT id, resource_id, kind, operation, status, time FROM mutations
		 WHERE time >= ? AND time <= ? ORDER BY time`,
		&sqlitex.ExecOptions{
			Args: []any{
				start.UTC().Format(time.RFC3339),
				stop.UTC().Format(time.RFC3339),
			},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				id, err := uuid.Parse(stmt.ColumnText(0))
				if err != nil {
					return err
				}
				t, err := time.Parse(time.RFC3339, stmt.ColumnText(5))
				if err != nil {
					return err
				}
				records = append(records, Record{
					Id:         id,
					ResourceId: stmt.ColumnText(1),
					Kind:       stmt.ColumnText(2),
					Operation:  stmt.ColumnText(3),
					Status:     stmt.ColumnText(4),
					Time:       t,
				})
				return nil
			},
		})
	return records, err
}

// Package spoken records the messages the bot has echoed.
package spoken

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Echo is a recorded echo.
type Echo struct {
	// Channel is the channel where the echo was sent.
	Channel string
	// Text is the echoed text.
	Text string
	// Name is the display name of the user who was echoed.
	Name string
	// Time is the time of the echo.
	Time time.Time
}

// Record records an echo.
func Record[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB, e Echo) error {
	conn, put, err := take(ctx, db)
	if err != nil {
		return fmt.Errorf("couldn't get conn to record echo: %w", err)
	}
	defer put()
	const insert = `INSERT INTO echo (channel, msg, name, time) VALUES (:channel, :msg, :name, :time)`
	st, err := conn.Prepare(insert)
	if err != nil {
		return fmt.Errorf("couldn't prepare statement to record echo: %w", err)
	}
	st.SetText(":channel", e.Channel)
	st.SetText(":msg", e.Text)
	st.SetText(":name", e.Name)
	st.SetInt64(":time", e.Time.UnixNano())
	if _, err := st.Step(); err != nil {
		return fmt.Errorf("couldn't insert echo: %w", err)
	}
	return nil
}

// Last obtains the most recent echo in a channel. If there has been none,
// the result is false with a nil error.
func Last[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB, channel string) (Echo, bool, error) {
	conn, put, err := take(ctx, db)
	if err != nil {
		return Echo{}, false, fmt.Errorf("couldn't get conn to find echo: %w", err)
	}
	defer put()
	const sel = `SELECT msg, name, time FROM echo WHERE channel=:channel ORDER BY time DESC LIMIT 1`
	st, err := conn.Prepare(sel)
	if err != nil {
		return Echo{}, false, fmt.Errorf("couldn't prepare statement to find echo: %w", err)
	}
	defer st.Reset()
	st.SetText(":channel", channel)
	ok, err := st.Step()
	if err != nil {
		return Echo{}, false, fmt.Errorf("couldn't find echo: %w", err)
	}
	if !ok {
		return Echo{}, false, nil
	}
	e := Echo{
		Channel: channel,
		Text:    st.ColumnText(0),
		Name:    st.ColumnText(1),
		Time:    time.Unix(0, st.ColumnInt64(2)),
	}
	return e, true, nil
}

//go:embed schema.sql
var schemaSQL string

// Init initializes an SQLite DB to record echoes.
func Init[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB) error {
	conn, put, err := take(ctx, db)
	if err != nil {
		return fmt.Errorf("couldn't get conn to initialize echo history: %w", err)
	}
	defer put()
	err = sqlitex.ExecuteScript(conn, schemaSQL, nil)
	if err != nil {
		return fmt.Errorf("couldn't initialize echo history schema: %w", err)
	}
	return nil
}

func take[DB *sqlitex.Pool | *sqlite.Conn](ctx context.Context, db DB) (*sqlite.Conn, func(), error) {
	switch db := any(db).(type) {
	case *sqlite.Conn:
		return db, func() {}, nil
	case *sqlitex.Pool:
		conn, err := db.Take(ctx)
		if err != nil {
			return nil, nil, err
		}
		return conn, func() { db.Put(conn) }, nil
	}
	panic("unreachable")
}

// History is an echo history backed by a connection pool.
type History struct {
	db *sqlitex.Pool
}

// Open initializes and returns a history using db.
func Open(ctx context.Context, db *sqlitex.Pool) (*History, error) {
	if err := Init(ctx, db); err != nil {
		return nil, err
	}
	return &History{db: db}, nil
}

// Record records an echo.
func (h *History) Record(ctx context.Context, e Echo) error {
	return Record(ctx, h.db, e)
}

// Last obtains the most recent echo in a channel.
func (h *History) Last(ctx context.Context, channel string) (Echo, bool, error) {
	return Last(ctx, h.db, channel)
}

// Close closes the history's database.
func (h *History) Close() error {
	return h.db.Close()
}

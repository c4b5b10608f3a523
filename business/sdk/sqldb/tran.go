package sqldb

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

// CommitRollbacker represents the set of behavior for managing a transaction.
type CommitRollbacker interface {
	Commit() error
	Rollback() error
}

// Beginner represents the set of behavior for starting a transaction.
type Beginner interface {
	Begin() (CommitRollbacker, error)
}

// DBBeginner implements the Beginner interface on top of a sqlx DB.
type DBBeginner struct {
	sqlxDB *sqlx.DB
}

// NewBeginner constructs a value that implements the beginner interface.
func NewBeginner(sqlxDB *sqlx.DB) *DBBeginner {
	return &DBBeginner{
		sqlxDB: sqlxDB,
	}
}

// Begin starts a transaction and returns a value that implements the
// CommitRollbacker interface.
func (db *DBBeginner) Begin() (CommitRollbacker, error) {
	return db.sqlxDB.Beginx()
}

// GetExtContext is a helper function that extracts the sqlx value from the
// domain transactor interface for transactional use.
func GetExtContext(tx CommitRollbacker) (sqlx.ExtContext, error) {
	ec, ok := tx.(sqlx.ExtContext)
	if !ok {
		return nil, errors.New("transactor does not implement sqlx.ExtContext")
	}

	return ec, nil
}

package export

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cleared-dev/aggregate/internal/model"
)

const sqliteBatchSize = 500

// TransactionRow is the sqlite row layout.
type TransactionRow struct {
	ID           uint            `gorm:"primaryKey"`
	Timestamp    time.Time       `gorm:"column:timestamp;index;not null"`
	DateReadable string          `gorm:"column:date_readable;not null"`
	Transaction  string          `gorm:"column:transaction"`
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric;not null"`
	From         string          `gorm:"column:from"`
	To           string          `gorm:"column:to"`
}

// TableName pins the table name.
func (TransactionRow) TableName() string { return "transactions" }

// SQLiteExporter appends transactions to a sqlite database, creating the
// transactions table when missing.
type SQLiteExporter struct{}

// Format returns the exporter name.
func (e *SQLiteExporter) Format() string { return "sqlite" }

// Ext returns the file extension.
func (e *SQLiteExporter) Ext() string { return ".db" }

// Export writes txns into the database at path.
func (e *SQLiteExporter) Export(path string, txns []model.Transaction) error {
	db, err := OpenSQLite(path)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sqlite handle: %w", err)
	}
	defer sqlDB.Close()

	if err := db.AutoMigrate(&TransactionRow{}); err != nil {
		return fmt.Errorf("migrating transactions table: %w", err)
	}

	if len(txns) == 0 {
		return nil
	}

	rows := make([]TransactionRow, len(txns))
	for i, txn := range txns {
		rows[i] = TransactionRow{
			Timestamp:    txn.Timestamp,
			DateReadable: txn.DateReadable,
			Transaction:  txn.Transaction,
			Amount:       txn.Amount,
			From:         txn.From,
			To:           txn.To,
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(rows, sqliteBatchSize).Error; err != nil {
			return fmt.Errorf("inserting transactions: %w", err)
		}
		return nil
	})
}

// OpenSQLite opens the database at path with gorm logging silenced.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	return db, nil
}

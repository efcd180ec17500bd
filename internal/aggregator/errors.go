package aggregator

import (
	"errors"

	"github.com/cleared-dev/aggregate/internal/importer"
	"github.com/cleared-dev/aggregate/internal/model"
)

// Error kinds returned by Aggregate. All are fatal; match with errors.Is.
var (
	ErrPathNotFound        = importer.ErrPathNotFound
	ErrNoMatchingFiles     = importer.ErrNoMatchingFiles
	ErrSingleFileOnly      = importer.ErrSingleFileOnly
	ErrEmptyData           = importer.ErrEmptyData
	ErrUnknownCurrency     = model.ErrUnknownCurrency
	ErrUnparsableTimestamp = errors.New("unparsable timestamp")
	ErrInvalidAmount       = errors.New("invalid amount")
)

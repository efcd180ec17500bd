package export

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/aggregate/internal/model"
)

// record is the field layout shared by the document formats.
type record struct {
	Timestamp    string      `json:"timestamp" xml:"timestamp" yaml:"timestamp"`
	DateReadable string      `json:"date_readable" xml:"date_readable" yaml:"date_readable"`
	Transaction  string      `json:"transaction" xml:"transaction" yaml:"transaction"`
	Amount       json.Number `json:"amount" xml:"amount" yaml:"amount"`
	From         string      `json:"from" xml:"from" yaml:"from"`
	To           string      `json:"to" xml:"to" yaml:"to"`
}

func toRecords(txns []model.Transaction) []record {
	recs := make([]record, len(txns))
	for i, txn := range txns {
		recs[i] = record{
			Timestamp:    FormatTimestamp(txn.Timestamp),
			DateReadable: txn.DateReadable,
			Transaction:  txn.Transaction,
			Amount:       json.Number(txn.Amount.StringFixed(2)),
			From:         txn.From,
			To:           txn.To,
		}
	}
	return recs
}

// JSONExporter writes an indented JSON array of objects.
type JSONExporter struct{}

// Format returns the exporter name.
func (e *JSONExporter) Format() string { return "json" }

// Ext returns the file extension.
func (e *JSONExporter) Ext() string { return ".json" }

// Export writes txns to path.
func (e *JSONExporter) Export(path string, txns []model.Transaction) error {
	return writeFile(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(toRecords(txns)); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	})
}

// xmlDocument is the root element of an XML export.
type xmlDocument struct {
	XMLName      xml.Name `xml:"transactions"`
	Transactions []record `xml:"transaction"`
}

// XMLExporter writes <transactions><transaction>...</transaction></transactions>.
type XMLExporter struct{}

// Format returns the exporter name.
func (e *XMLExporter) Format() string { return "xml" }

// Ext returns the file extension.
func (e *XMLExporter) Ext() string { return ".xml" }

// Export writes txns to path.
func (e *XMLExporter) Export(path string, txns []model.Transaction) error {
	return writeFile(path, func(f *os.File) error {
		if _, err := f.WriteString(xml.Header); err != nil {
			return fmt.Errorf("writing XML header: %w", err)
		}
		enc := xml.NewEncoder(f)
		enc.Indent("", "  ")
		if err := enc.Encode(xmlDocument{Transactions: toRecords(txns)}); err != nil {
			return fmt.Errorf("encoding XML: %w", err)
		}
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("writing XML: %w", err)
		}
		return nil
	})
}

// YAMLExporter writes a YAML sequence of mappings.
type YAMLExporter struct{}

// Format returns the exporter name.
func (e *YAMLExporter) Format() string { return "yaml" }

// Ext returns the file extension.
func (e *YAMLExporter) Ext() string { return ".yaml" }

// Export writes txns to path.
func (e *YAMLExporter) Export(path string, txns []model.Transaction) error {
	return writeFile(path, func(f *os.File) error {
		enc := yaml.NewEncoder(f)
		enc.SetIndent(2)
		if err := enc.Encode(toRecords(txns)); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	})
}

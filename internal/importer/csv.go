// Package importer parses recipient CSV files into issuance rows. It is an
// upstream collaborator of the registry: it only produces tuples, the registry
// owns all validation and authorization.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"time"

	"certledger/internal/registry/models"
)

// Expected CSV header columns, first record.
const (
	columnCertName       = "Name"
	columnFirstName      = "FirstName"
	columnLastName       = "LastName"
	columnEmail          = "Email"
	columnExpirationDate = "ExpirationDate"
)

const dateLayout = "2006-01-02"

// Row is one parsed CSV line: who gets a certificate for what, valid until
// when. The expiration date is converted to a day count at registration time
// because the registry computes expiry from its own issue instant.
type Row struct {
	CertName       string
	FirstName      string
	LastName       string
	Email          string
	ExpirationDate time.Time
}

// Recipient converts the row's person fields into the registry shape.
func (r Row) Recipient() models.Recipient {
	return models.Recipient{Name: r.FirstName, Surname: r.LastName, Email: r.Email}
}

// DaysValid returns the number of whole validity days between now and the
// row's expiration date, rounding partial days up. Past dates yield values
// below one, which the registry pipeline rejects.
func (r Row) DaysValid(now time.Time) int {
	return int(math.Ceil(r.ExpirationDate.Sub(now).Hours() / 24))
}

// Parse reads a CSV document with a header record and returns its rows in file
// order. A malformed row aborts the parse with its line number; partial
// results are never returned.
func Parse(reader io.Reader) ([]Row, error) {
	parser := csv.NewReader(reader)
	parser.TrimLeadingSpace = true

	header, err := parser.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range []string{columnCertName, columnFirstName, columnLastName, columnEmail, columnExpirationDate} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", required)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := parser.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		expiration, err := time.Parse(dateLayout, record[index[columnExpirationDate]])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: invalid expiration date: %w", line, err)
		}
		rows = append(rows, Row{
			CertName:       record[index[columnCertName]],
			FirstName:      record[index[columnFirstName]],
			LastName:       record[index[columnLastName]],
			Email:          record[index[columnEmail]],
			ExpirationDate: expiration,
		})
	}
	return rows, nil
}

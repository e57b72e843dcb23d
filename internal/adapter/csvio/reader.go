// Package csvio decodes transaction records from CSV and encodes account
// snapshots back to CSV.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/txengine/internal/domain"
)

// ErrInvalidHeader is returned when the first row does not name the
// required columns. It ends the stream.
var ErrInvalidHeader = errors.New("invalid csv header")

const (
	columnType   = "type"
	columnClient = "client"
	columnTx     = "tx"
	columnAmount = "amount"
)

// DecodeError describes a single row that could not be turned into a valid
// transaction. The reader stays usable after returning one.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Reader streams transactions from CSV input with a
// "type,client,tx,amount" header. Column order follows the header.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
	width   int
	err     error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	return &Reader{csv: cr}
}

// Next returns the next transaction. Rows that fail to decode or validate
// yield a *DecodeError and may be skipped. io.EOF marks the end of input;
// any other error is fatal and is returned again on later calls.
func (r *Reader) Next() (domain.Transaction, error) {
	if r.err != nil {
		return domain.Transaction{}, r.err
	}

	if r.columns == nil {
		if err := r.readHeader(); err != nil {
			r.err = err
			return domain.Transaction{}, err
		}
	}

	record, err := r.csv.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return domain.Transaction{}, &DecodeError{Line: parseErr.StartLine, Err: parseErr.Err}
		}
		r.err = err
		return domain.Transaction{}, err
	}

	line, _ := r.csv.FieldPos(0)

	tx, err := r.decode(record)
	if err != nil {
		return domain.Transaction{}, &DecodeError{Line: line, Err: err}
	}

	return tx, nil
}

func (r *Reader) readHeader() error {
	header, err := r.csv.Read()
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{columnType, columnClient, columnTx} {
		if _, ok := columns[required]; !ok {
			return fmt.Errorf("%w: missing column %q", ErrInvalidHeader, required)
		}
	}

	r.columns = columns
	r.width = len(header)
	return nil
}

// field returns the trimmed value of the named column, or "" when the row
// stops short of it.
func (r *Reader) field(record []string, name string) string {
	i, ok := r.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (r *Reader) decode(record []string) (domain.Transaction, error) {
	if len(record) > r.width {
		return domain.Transaction{}, fmt.Errorf("expected at most %d fields, got %d", r.width, len(record))
	}

	txType, err := domain.ParseTransactionType(r.field(record, columnType))
	if err != nil {
		return domain.Transaction{}, err
	}

	client, err := strconv.ParseUint(r.field(record, columnClient), 10, 16)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("client: %w", err)
	}

	id, err := strconv.ParseUint(r.field(record, columnTx), 10, 32)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("tx: %w", err)
	}

	tx := domain.Transaction{
		Type:     txType,
		ClientID: domain.ClientID(client),
		TxID:     domain.TxID(id),
	}

	if raw := r.field(record, columnAmount); raw != "" {
		amount, err := domain.ParseMoney(raw)
		if err != nil {
			return domain.Transaction{}, err
		}
		tx.Amount = decimal.NewNullDecimal(amount)
	}

	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, err
	}

	return tx, nil
}

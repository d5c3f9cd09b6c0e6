package customer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/shopkit/internal/entity"
)

var repoTracer = otel.Tracer("github.com/Additional-Code/shopkit/repository/customer")

var (
	// ErrFileMissing is returned when the CSV file does not exist.
	ErrFileMissing = errors.New("file does not exist")
	// ErrNoHeader is returned for an empty CSV file.
	ErrNoHeader = errors.New("missing header row")
	// ErrRowTooLong is returned for a row with more cells than the header.
	ErrRowTooLong = errors.New("row has more fields than the header")
)

const byteOrderMark = "\ufeff"

// Repository reads and writes customer tables as CSV files.
type Repository struct{}

// NewRepository constructs a CSV-backed customer repository.
func NewRepository() *Repository {
	return &Repository{}
}

// Load parses the CSV at path. A leading byte order mark is ignored. Rows
// shorter than the header are padded with empty cells; longer rows fail with
// ErrRowTooLong.
func (r *Repository) Load(ctx context.Context, path string) (*entity.CustomerTable, error) {
	_, span := repoTracer.Start(ctx, "CustomerRepository.Load", trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrFileMissing
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return nil, err
	}
	defer f.Close()

	table, err := decode(f)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("customer.rows", table.Len()))
	return table, nil
}

// Save replaces the file at path with table. The new content is written to a
// temporary sibling and renamed over path, so readers never see a partial file.
func (r *Repository) Save(ctx context.Context, path string, table *entity.CustomerTable) (err error) {
	_, span := repoTracer.Start(ctx, "CustomerRepository.Save", trace.WithAttributes(
		attribute.String("file.path", path),
		attribute.Int("customer.rows", table.Len()),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "save failed")
		}
	}()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := encode(tmp, table); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Copy duplicates the file at src to dst byte for byte and returns the number
// of data rows it holds.
func (r *Repository) Copy(ctx context.Context, src, dst string) (int, error) {
	ctx, span := repoTracer.Start(ctx, "CustomerRepository.Copy", trace.WithAttributes(
		attribute.String("file.src", src),
		attribute.String("file.dst", dst),
	))
	defer span.End()

	table, err := r.Load(ctx, src)
	if err != nil {
		return 0, err
	}

	in, err := os.Open(src)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return 0, err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "copy failed")
		return 0, err
	}
	if err := out.Close(); err != nil {
		span.RecordError(err)
		return 0, err
	}
	return table.Len(), nil
}

func decode(r io.Reader) (*entity.CustomerTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], byteOrderMark)

	table := &entity.CustomerTable{Header: header, Rows: make([]entity.Customer, 0)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+1, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d: %w",
				len(table.Rows)+1, len(record), len(header), ErrRowTooLong)
		}
		table.Rows = append(table.Rows, align(record, len(header)))
	}
	return table, nil
}

func encode(w io.Writer, table *entity.CustomerTable) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Header); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write(align(row, len(table.Header))); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func align(record []string, width int) entity.Customer {
	if len(record) == width {
		return entity.Customer(record)
	}
	row := make(entity.Customer, width)
	copy(row, record)
	return row
}

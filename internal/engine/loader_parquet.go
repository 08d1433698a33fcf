package engine

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"flightdash/internal/models"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// LoadParquet reads the observation table from a Parquet file through an
// Arrow table. Numeric and string physical types are both accepted for every
// column; values go through the same parsing as the text formats.
func LoadParquet(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(path, "open", err)
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, loadErr(path, "parquet reader", err)
	}
	defer pf.Close()

	mem := memory.NewGoAllocator()
	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return nil, loadErr(path, "arrow reader", err)
	}
	table, err := reader.ReadTable(context.Background())
	if err != nil {
		return nil, loadErr(path, "read table", err)
	}
	defer table.Release()

	fields := table.Schema().Fields()
	names := make([]string, len(fields))
	for i, fld := range fields {
		names[i] = fld.Name
	}
	lay, err := newLayout(names)
	if err != nil {
		return nil, loadErr(path, "schema", err)
	}

	// Materialise only the required columns, keyed by schema position.
	cols := make(map[int][]string, len(lay))
	for _, pos := range lay {
		if _, done := cols[pos]; done {
			continue
		}
		vals, err := columnStrings(table.Column(pos).Data())
		if err != nil {
			return nil, loadErr(path, fmt.Sprintf("column %q", names[pos]), err)
		}
		cols[pos] = vals
	}

	n := int(table.NumRows())
	obs := make([]models.Observation, 0, n)
	for i := 0; i < n; i++ {
		o, err := lay.parse(func(pos int) string { return cols[pos][i] })
		if err != nil {
			return nil, loadErr(path, fmt.Sprintf("row %d", i), err)
		}
		obs = append(obs, o)
	}
	return NewDataset(obs), nil
}

// columnStrings flattens a chunked column into its textual values.
// Nulls become empty strings and are rejected by the row parser.
func columnStrings(col *arrow.Chunked) ([]string, error) {
	out := make([]string, 0, col.Len())
	for _, chunk := range col.Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			if chunk.IsNull(i) {
				out = append(out, "")
				continue
			}
			switch a := chunk.(type) {
			case *array.String:
				out = append(out, a.Value(i))
			case *array.LargeString:
				out = append(out, a.Value(i))
			case *array.Binary:
				out = append(out, string(a.Value(i)))
			case *array.Int64:
				out = append(out, strconv.FormatInt(a.Value(i), 10))
			case *array.Int32:
				out = append(out, strconv.FormatInt(int64(a.Value(i)), 10))
			case *array.Int16:
				out = append(out, strconv.FormatInt(int64(a.Value(i)), 10))
			case *array.Uint32:
				out = append(out, strconv.FormatUint(uint64(a.Value(i)), 10))
			case *array.Uint64:
				out = append(out, strconv.FormatUint(a.Value(i), 10))
			case *array.Float64:
				out = append(out, strconv.FormatFloat(a.Value(i), 'f', -1, 64))
			case *array.Float32:
				out = append(out, strconv.FormatFloat(float64(a.Value(i)), 'f', -1, 32))
			default:
				return nil, fmt.Errorf("unsupported arrow type %s", strings.ToLower(chunk.DataType().String()))
			}
		}
	}
	return out, nil
}
